package authcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scentshop/perfumery/cmd/perfumery/cmdenv"
	"github.com/scentshop/perfumery/pkg/cliui"
)

func NewLogoutCmd() *cobra.Command {
	var opts cmdenv.ClientOptions

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdenv.Load(cmd, cmdenv.ClientFlags...)
			if err != nil {
				return err
			}

			session, err := env.Session()
			if err != nil {
				return err
			}
			if session == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", cliui.DimStyle.Render("Not logged in."))
				return nil
			}

			client, err := env.NewClient()
			if err != nil {
				return err
			}
			// The local session is cleared even if the backend is unreachable.
			client.Logout(cmd.Context())

			if err := env.ClearSession(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "  %s Logged out\n", cliui.SuccessMark)
			return nil
		},
	}

	cmdenv.AddClientFlags(cmd, &opts)
	return cmd
}
