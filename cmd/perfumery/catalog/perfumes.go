// Package catalogcmder provides the catalog commands: browsing perfumes and
// brands, the AI summaries and leaving reviews.
package catalogcmder

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scentshop/perfumery/cmd/perfumery/cmdenv"
	"github.com/scentshop/perfumery/pkg/cliui"
	"github.com/scentshop/perfumery/pkg/storefront"
)

const perfumesLongDesc string = `Browse the perfume catalog.

Examples:
  perfumery perfumes list
  perfumery perfumes list --query vanilla --audience female
  perfumery perfumes show p1
  perfumery perfumes similar p1
  perfumery perfumes summary p1 --refresh`

const perfumesShortDesc string = "Browse the perfume catalog"

type perfumesCommander struct {
	client  cmdenv.ClientOptions
	filter  storefront.PerfumeFilter
	refresh bool
	plain   bool
}

func NewPerfumesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "perfumes",
		Aliases: []string{"perfume"},
		Short:   perfumesShortDesc,
		Long:    perfumesLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newSimilarCmd())
	cmd.AddCommand(newSummaryCmd())

	return cmd
}

func newListCmd() *cobra.Command {
	cmder := &perfumesCommander{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List perfumes, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			perfumes, err := client.ListPerfumes(cmd.Context(), cmder.filter)
			if err != nil {
				return fmt.Errorf("listing perfumes: %w", err)
			}

			printPerfumeList(cmd.OutOrStdout(), perfumes)
			return nil
		},
	}

	cmdenv.AddClientFlags(cmd, &cmder.client)
	cmd.Flags().StringVarP(&cmder.filter.Query, "query", "q", "", "Search names, brands, descriptions and ingredients")
	cmd.Flags().StringVarP(&cmder.filter.Brand, "brand", "b", "", "Only perfumes of this brand id")
	cmd.Flags().StringVar(&cmder.filter.Concentration, "concentration", "", "Only this concentration (Extrait, EDP, EDT, EDC)")
	cmd.Flags().StringVar(&cmder.filter.TargetAudience, "audience", "", "Only this audience (male, female, unisex)")

	return cmd
}

func newShowCmd() *cobra.Command {
	cmder := &perfumesCommander{}

	cmd := &cobra.Command{
		Use:   "show <perfume-id>",
		Short: "Show a perfume and its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			perfume, err := client.GetPerfume(cmd.Context(), args[0])
			if err != nil {
				return perfumeError(args[0], err)
			}

			printPerfume(cmd.OutOrStdout(), perfume)
			return nil
		},
	}

	cmdenv.AddClientFlags(cmd, &cmder.client)
	return cmd
}

func newSimilarCmd() *cobra.Command {
	cmder := &perfumesCommander{}

	cmd := &cobra.Command{
		Use:   "similar <perfume-id>",
		Short: "Find perfumes similar to one in the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			var res *storefront.SimilarResult
			err = cliui.Step(cmd.ErrOrStderr(), "Finding similar perfumes", func() error {
				var err error
				res, err = client.SimilarPerfumes(cmd.Context(), args[0], cmder.refresh)
				return err
			})
			if err != nil {
				return perfumeError(args[0], err)
			}

			printSimilar(cmd.OutOrStdout(), args[0], res)
			return nil
		},
	}

	cmdenv.AddClientFlags(cmd, &cmder.client)
	cmd.Flags().BoolVar(&cmder.refresh, "refresh", false, "Recompute instead of using the cached analysis")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	cmder := &perfumesCommander{}

	cmd := &cobra.Command{
		Use:   "summary <perfume-id>",
		Short: "Summarize the reviews of a perfume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdenv.Load(cmd, cmdenv.ClientFlags...)
			if err != nil {
				return err
			}
			client, err := env.NewClient()
			if err != nil {
				return err
			}

			var res *storefront.SummaryResult
			err = cliui.Step(cmd.ErrOrStderr(), "Summarizing reviews", func() error {
				var err error
				res, err = client.Summary(cmd.Context(), args[0], cmder.refresh)
				return err
			})
			if err != nil {
				return perfumeError(args[0], err)
			}

			return printSummary(cmd.OutOrStdout(), args[0], res, cmder.plain || env.Plain(os.Stdout))
		},
	}

	cmdenv.AddClientFlags(cmd, &cmder.client)
	cmd.Flags().BoolVar(&cmder.refresh, "refresh", false, "Regenerate instead of using the cached summary")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print the summary as plain text")
	return cmd
}

func newClient(cmd *cobra.Command) (*storefront.Client, error) {
	env, err := cmdenv.Load(cmd, cmdenv.ClientFlags...)
	if err != nil {
		return nil, err
	}
	return env.NewClient()
}

func perfumeError(id string, err error) error {
	if storefront.IsNotFound(err) {
		return fmt.Errorf("perfume %s not found", id)
	}
	return err
}
