// Package historycmder provides the history command for browsing recorded
// conversations with the fragrance assistant.
package historycmder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scentshop/perfumery/cmd/perfumery/cmdenv"
	"github.com/scentshop/perfumery/pkg/cliui"
	"github.com/scentshop/perfumery/pkg/config"
	"github.com/scentshop/perfumery/pkg/storage"
)

const historyLongDesc string = `Browse recorded conversations with the fragrance assistant.

Every chat and ask exchange is recorded to a local SQLite database. Resume a
conversation with "perfumery chat --session <id>".

Examples:
  perfumery history list
  perfumery history list --limit 5
  perfumery history show 6f1c...
  perfumery history show 6f1c... --json`

const historyShortDesc string = "Browse recorded conversations"

type historyCommander struct {
	sqlitePath string
	limit      int
	plain      bool
	asJSON     bool
}

func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())

	return cmd
}

func newListCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded conversations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer history.Close()

			sessions, err := history.ListSessions(cmd.Context(), cmder.limit)
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}

			printSessions(cmd.OutOrStdout(), sessions, time.Now())
			return nil
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 20, "Maximum number of conversations to list, 0 for all")

	return cmd
}

func newShowCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a recorded conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cmdenv.Load(cmd, config.FlagSQLite)
			if err != nil {
				return err
			}
			history, err := env.OpenHistory()
			if err != nil {
				return err
			}
			defer history.Close()

			ctx := cmd.Context()
			session, err := history.GetSession(ctx, args[0])
			if err != nil {
				var notFound storage.NotFoundError
				if errors.As(err, &notFound) {
					return fmt.Errorf("no conversation with id %s", args[0])
				}
				return err
			}

			turns, err := history.Turns(ctx, session.ID)
			if err != nil {
				return fmt.Errorf("loading turns: %w", err)
			}

			out := cmd.OutOrStdout()
			if cmder.asJSON {
				return writeJSON(out, session, turns)
			}
			return printTranscript(out, session, turns, cmder.plain || env.Plain(os.Stdout))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print replies as plain text instead of rendered markdown")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print the conversation as JSON")

	return cmd
}

func openHistory(cmd *cobra.Command) (storage.Driver, error) {
	env, err := cmdenv.Load(cmd, config.FlagSQLite)
	if err != nil {
		return nil, err
	}
	return env.OpenHistory()
}

func printSessions(w io.Writer, sessions []*storage.Session, now time.Time) {
	if len(sessions) == 0 {
		fmt.Fprintf(w, "\n  %s No conversations yet.\n", cliui.DimStyle.Render("●"))
		fmt.Fprintf(w, "  Start one with 'perfumery chat'.\n\n")
		return
	}

	fmt.Fprintln(w)
	for _, s := range sessions {
		fmt.Fprintf(w, "  %s  %s\n", cliui.IDStyle.Render(s.ID), cliui.NameStyle.Render(cliui.Fit(s.Title, 60)))
		fmt.Fprintf(w, "      %s\n", cliui.DimStyle.Render(fmt.Sprintf("%d messages, %s", s.TurnCount, ago(now.Sub(s.UpdatedAt)))))
	}
	fmt.Fprintln(w)
}

func printTranscript(w io.Writer, session *storage.Session, turns []*storage.Turn, plain bool) error {
	fmt.Fprintf(w, "\n  %s\n  %s\n", cliui.TitleStyle.Render(session.Title), cliui.DimStyle.Render(session.CreatedAt.Local().Format(time.DateTime)))

	for _, t := range turns {
		if t.Role == storage.RoleUser {
			fmt.Fprintf(w, "\n  %s\n  %s\n", cliui.UserLabel, t.Content)
			continue
		}

		fmt.Fprintf(w, "\n  %s\n", cliui.AssistantLabel)
		if plain {
			fmt.Fprintln(w, t.Content)
		} else {
			rendered, err := cliui.RenderMarkdown(t.Content)
			if err != nil {
				return err
			}
			fmt.Fprint(w, rendered)
		}
		if t.Cancelled {
			fmt.Fprintf(w, "  %s\n", cliui.DimStyle.Render("(cancelled)"))
		}
	}
	fmt.Fprintln(w)
	return nil
}

func writeJSON(w io.Writer, session *storage.Session, turns []*storage.Turn) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		*storage.Session
		Turns []*storage.Turn `json:"turns"`
	}{session, turns})
}

// ago formats an elapsed duration coarsely, e.g. "3m ago" or "2d ago".
func ago(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
