package main

import (
	"os"

	perfumerycmder "github.com/scentshop/perfumery/cmd/perfumery"
)

func main() {
	cmd := perfumerycmder.NewPerfumeryCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
