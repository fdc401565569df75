package authcmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scentshop/perfumery/cmd/perfumery/cmdenv"
	"github.com/scentshop/perfumery/pkg/cliui"
	"github.com/scentshop/perfumery/pkg/storefront"
)

const profileLongDesc string = `Show or change your storefront profile.

Examples:
  perfumery profile
  perfumery profile update --name "Jane S." --yob 1992 --gender female
  perfumery profile password`

func NewProfileCmd() *cobra.Command {
	var opts cmdenv.ClientOptions

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change your profile",
		Long:  profileLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showProfile(cmd)
		},
	}
	cmdenv.AddClientFlags(cmd, &opts)

	cmd.AddCommand(newProfileUpdateCmd())
	cmd.AddCommand(newProfilePasswordCmd())

	return cmd
}

type profileUpdateCommander struct {
	client cmdenv.ClientOptions
	name   string
	yob    int
	gender string
}

func newProfileUpdateCmd() *cobra.Command {
	cmder := &profileUpdateCommander{}

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change name, year of birth or gender",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			update := storefront.ProfileUpdate{}
			if cmd.Flags().Changed("name") {
				update.Name = &cmder.name
			}
			if cmd.Flags().Changed("yob") {
				update.YOB = &cmder.yob
			}
			if cmd.Flags().Changed("gender") {
				update.Gender = &cmder.gender
			}
			if update.Name == nil && update.YOB == nil && update.Gender == nil {
				return errors.New("nothing to update, pass --name, --yob or --gender")
			}

			env, client, err := loggedInClient(cmd)
			if err != nil {
				return err
			}

			user, err := client.UpdateProfile(cmd.Context(), update)
			if err != nil {
				return fmt.Errorf("updating profile: %w", err)
			}
			if err := env.SaveSession(client, user); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "  %s Profile updated\n", cliui.SuccessMark)
			printUser(cmd.OutOrStdout(), user)
			return nil
		},
	}

	cmdenv.AddClientFlags(cmd, &cmder.client)
	cmd.Flags().StringVar(&cmder.name, "name", "", "Display name")
	cmd.Flags().IntVar(&cmder.yob, "yob", 0, "Year of birth")
	cmd.Flags().StringVar(&cmder.gender, "gender", "", "Gender")

	return cmd
}

func newProfilePasswordCmd() *cobra.Command {
	var opts cmdenv.ClientOptions

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := loggedInClient(cmd)
			if err != nil {
				return err
			}

			p := newPrompter(cmd)
			current, err := p.secret("Current password")
			if err != nil {
				return err
			}
			next, err := p.secret("New password")
			if err != nil {
				return err
			}

			if err := client.ChangePassword(cmd.Context(), current, next); err != nil {
				return fmt.Errorf("changing password: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "  %s Password changed\n", cliui.SuccessMark)
			return nil
		},
	}

	cmdenv.AddClientFlags(cmd, &opts)
	return cmd
}

func loggedInClient(cmd *cobra.Command) (*cmdenv.Env, *storefront.Client, error) {
	env, err := cmdenv.Load(cmd, cmdenv.ClientFlags...)
	if err != nil {
		return nil, nil, err
	}

	session, err := env.Session()
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, errNotLoggedIn
	}

	client, err := env.NewClient()
	if err != nil {
		return nil, nil, err
	}
	return env, client, nil
}
