package servecmder_test

import (
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	servecmder "github.com/scentshop/perfumery/cmd/perfumery/serve"
)

var _ = Describe("NewServeCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Use).To(Equal("serve"))
	})

	It("has --listen flag with default value", func() {
		cmd := servecmder.NewServeCmd()
		flag := cmd.Flags().Lookup("listen")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("l"))
		Expect(flag.DefValue).To(Equal(":4000"))
	})

	It("has --chunk-delay flag with default value", func() {
		cmd := servecmder.NewServeCmd()
		flag := cmd.Flags().Lookup("chunk-delay")
		Expect(flag).NotTo(BeNil())
		Expect(flag.DefValue).To(Equal("25ms"))
	})

	It("has --log-file flag", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Flags().Lookup("log-file")).NotTo(BeNil())
	})

	It("rejects an invalid chunk delay before listening", func() {
		root := &cobra.Command{Use: "perfumery", SilenceUsage: true, SilenceErrors: true}
		root.PersistentFlags().Bool("debug", false, "")
		root.PersistentFlags().String("config-dir", GinkgoT().TempDir(), "")
		root.AddCommand(servecmder.NewServeCmd())
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		root.SetArgs([]string{"serve", "--chunk-delay", "soon"})

		err := root.Execute()
		Expect(err).To(MatchError(ContainSubstring(`invalid chunk delay "soon"`)))
	})
})
