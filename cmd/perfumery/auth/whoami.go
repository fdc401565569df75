package authcmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scentshop/perfumery/cmd/perfumery/cmdenv"
	"github.com/scentshop/perfumery/pkg/cliui"
	"github.com/scentshop/perfumery/pkg/storefront"
)

func NewWhoamiCmd() *cobra.Command {
	var opts cmdenv.ClientOptions

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showProfile(cmd)
		},
	}

	cmdenv.AddClientFlags(cmd, &opts)
	return cmd
}

// showProfile fetches the profile, falling back to the user cached at login
// when the storefront cannot be reached.
func showProfile(cmd *cobra.Command) error {
	env, err := cmdenv.Load(cmd, cmdenv.ClientFlags...)
	if err != nil {
		return err
	}

	session, err := env.Session()
	if err != nil {
		return err
	}
	if session == nil {
		return errNotLoggedIn
	}

	client, err := env.NewClient()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	user, err := client.Profile(cmd.Context())
	switch {
	case err == nil:
		printUser(out, user)
		return env.SaveSession(client, user)

	case storefront.IsUnauthorized(err):
		if clearErr := env.ClearSession(); clearErr != nil {
			env.Logger.Warn("clearing expired session", "error", clearErr)
		}
		return errors.New(`session expired, run "perfumery login" again`)

	case session.User != nil:
		env.Logger.Debug("profile unavailable, using cached user", "error", err)
		printUser(out, &storefront.User{
			ID:    session.User.ID,
			Email: session.User.Email,
			Name:  session.User.Name,
			Admin: session.User.IsAdmin,
		})
		fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("(storefront unreachable, showing saved login)"))
		return nil

	default:
		return fmt.Errorf("fetching profile: %w", err)
	}
}
