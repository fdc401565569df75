package catalogcmder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scentshop/perfumery/cmd/perfumery/cmdenv"
	"github.com/scentshop/perfumery/pkg/cliui"
	"github.com/scentshop/perfumery/pkg/storefront"
)

const reviewLongDesc string = `Leave a review on a perfume. Requires "perfumery login".

Examples:
  perfumery review p1 --rating 5 "Lasts all day, gets compliments"
  perfumery review p3 -r 3 "Nice opening, fades fast"`

const reviewShortDesc string = "Review a perfume"

type reviewCommander struct {
	client cmdenv.ClientOptions
	rating int
}

func NewReviewCmd() *cobra.Command {
	cmder := &reviewCommander{}

	cmd := &cobra.Command{
		Use:   "review <perfume-id> <text>",
		Short: reviewShortDesc,
		Long:  reviewLongDesc,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := storefront.CommentInput{
				Rating:  cmder.rating,
				Content: strings.Join(args[1:], " "),
			}
			if err := input.Validate(); err != nil {
				return err
			}

			client, err := newClient(cmd)
			if err != nil {
				return err
			}

			comment, err := client.AddComment(cmd.Context(), args[0], input)
			if err != nil {
				if storefront.IsUnauthorized(err) {
					return errors.New(`you must be logged in to review, run "perfumery login"`)
				}
				return perfumeError(args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "  %s Review posted %s %s\n",
				cliui.SuccessMark,
				cliui.Stars(float64(comment.Rating)),
				cliui.DimStyle.Render(comment.ID),
			)
			return nil
		},
	}

	cmdenv.AddClientFlags(cmd, &cmder.client)
	cmd.Flags().IntVarP(&cmder.rating, "rating", "r", 0, "Rating from 1 to 5")
	_ = cmd.MarkFlagRequired("rating")

	return cmd
}
