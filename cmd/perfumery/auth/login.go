package authcmder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scentshop/perfumery/cmd/perfumery/cmdenv"
	"github.com/scentshop/perfumery/pkg/cliui"
	"github.com/scentshop/perfumery/pkg/storefront"
)

const loginLongDesc string = `Log in to the storefront.

The password is prompted for with hidden input. When stdin is not a
terminal, the email (unless --email is given) and password are read one
per line.

Examples:
  perfumery login
  perfumery login --email jane@example.com
  printf 'password\n' | perfumery login -e jane@example.com`

const loginShortDesc string = "Log in to the storefront"

type loginCommander struct {
	client cmdenv.ClientOptions
	email  string
}

func NewLoginCmd() *cobra.Command {
	cmder := &loginCommander{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: loginShortDesc,
		Long:  loginLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := cmdenv.Load(cmd, cmdenv.ClientFlags...)
			if err != nil {
				return err
			}

			p := newPrompter(cmd)
			email := strings.TrimSpace(cmder.email)
			if email == "" {
				if email, err = p.line("Email"); err != nil {
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

			user, err := client.Login(cmd.Context(), email, password)
			if err != nil {
				if storefront.IsUnauthorized(err) {
					return errors.New("login failed: invalid email or password")
				}
				return fmt.Errorf("login failed: %w", err)
			}

			if err := env.SaveSession(client, user); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "  %s Logged in as %s %s\n",
				cliui.SuccessMark,
				cliui.NameStyle.Render(user.Name),
				cliui.DimStyle.Render("("+user.Email+")"),
			)
			return nil
		},
	}

	cmdenv.AddClientFlags(cmd, &cmder.client)
	cmd.Flags().StringVarP(&cmder.email, "email", "e", "", "Account email")

	return cmd
}
