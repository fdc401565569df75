package authcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scentshop/perfumery/cmd/perfumery/cmdenv"
	"github.com/scentshop/perfumery/pkg/cliui"
)

const registerLongDesc string = `Create a storefront account and log in to it.

Examples:
  perfumery register --email jane@example.com --name "Jane Smith"`

type registerCommander struct {
	client cmdenv.ClientOptions
	email  string
	name   string
}

func NewRegisterCmd() *cobra.Command {
	cmder := &registerCommander{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a storefront account",
		Long:  registerLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdenv.Load(cmd, cmdenv.ClientFlags...)
			if err != nil {
				return err
			}

			p := newPrompter(cmd)
			email, name := strings.TrimSpace(cmder.email), strings.TrimSpace(cmder.name)
			if email == "" {
				if email, err = p.line("Email"); err != nil {
					return err
				}
			}
			if name == "" {
				if name, err = p.line("Name"); err != nil {
					return err
				}
			}
			password, err := p.secret("Password")
			if err != nil {
				return err
			}

			client, err := env.NewClient()
			if err != nil {
				return err
			}

			user, err := client.Register(cmd.Context(), email, password, name)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}

			if err := env.SaveSession(client, user); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "  %s Welcome, %s! You are now logged in.\n",
				cliui.SuccessMark,
				cliui.NameStyle.Render(user.Name),
			)
			return nil
		},
	}

	cmdenv.AddClientFlags(cmd, &cmder.client)
	cmd.Flags().StringVarP(&cmder.email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&cmder.name, "name", "n", "", "Display name")

	return cmd
}
