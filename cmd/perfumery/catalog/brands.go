package catalogcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scentshop/perfumery/cmd/perfumery/cmdenv"
)

const brandsShortDesc string = "List perfume brands"

func NewBrandsCmd() *cobra.Command {
	var opts cmdenv.ClientOptions

	listBrands := func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}

		brands, err := client.ListBrands(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing brands: %w", err)
		}

		printBrands(cmd.OutOrStdout(), brands)
		return nil
	}

	cmd := &cobra.Command{
		Use:   "brands",
		Short: brandsShortDesc,
		Args:  cobra.NoArgs,
		RunE:  listBrands,
	}
	cmdenv.AddClientFlags(cmd, &opts)

	list := &cobra.Command{
		Use:   "list",
		Short: brandsShortDesc,
		Args:  cobra.NoArgs,
		RunE:  listBrands,
	}
	cmdenv.AddClientFlags(list, &opts)
	cmd.AddCommand(list)

	return cmd
}
