// Package askcmder provides the ask command for one-shot questions to the
// fragrance assistant.
package askcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scentshop/perfumery/cmd/perfumery/cmdenv"
	"github.com/scentshop/perfumery/pkg/assistant"
	"github.com/scentshop/perfumery/pkg/cliui"
	"github.com/scentshop/perfumery/pkg/config"
	"github.com/scentshop/perfumery/pkg/recorder"
	"github.com/scentshop/perfumery/pkg/storefront"
)

type askCommander struct {
	client         cmdenv.ClientOptions
	includeContext bool
	sqlitePath     string
	imagePath      string
	noStream       bool
	plain          bool
	noHistory      bool
}

const askLongDesc string = `Ask the AI fragrance assistant a single question.

The question is taken from the arguments, or read from stdin when no
arguments are given. The reply streams to stdout. The command exits with
status 1 if the assistant could not answer.

Examples:
  perfumery ask "What should I wear to a summer wedding?"
  perfumery ask --context "Anything like Aventus but cheaper?"
  echo "What is an EDP?" | perfumery ask --plain`

const askShortDesc string = "Ask the fragrance assistant one question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: askShortDesc,
		Long:  askLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			question, err := readQuestion(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			flagKeys := append([]string{config.FlagContext, config.FlagSQLite}, cmdenv.ClientFlags...)
			env, err := cmdenv.Load(cmd, flagKeys...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return cmder.run(ctx, env, cmd.OutOrStdout(), question)
		},
	}

	cmdenv.AddClientFlags(cmd, &cmder.client)
	config.AddBoolFlag(cmd, config.Flags, config.FlagContext, &cmder.includeContext)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	cmd.Flags().StringVar(&cmder.imagePath, "image", "", "Attach an image to the question")
	cmd.Flags().BoolVar(&cmder.noStream, "no-stream", false, "Wait for the whole reply instead of streaming")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print the reply as plain text instead of rendered markdown")
	cmd.Flags().BoolVar(&cmder.noHistory, "no-history", false, "Do not record the exchange in the chat history")

	return cmd
}

func (c *askCommander) run(ctx context.Context, env *cmdenv.Env, out io.Writer, question string) error {
	client, err := env.NewClient()
	if err != nil {
		return err
	}

	var image string
	if c.imagePath != "" {
		image, err = storefront.EncodeImage(c.imagePath)
		if err != nil {
			return err
		}
	}

	cfg := assistant.Config{
		Client:         client,
		Out:            out,
		Plain:          c.plain || env.Plain(os.Stdout),
		NoStream:       c.noStream,
		IncludeContext: env.IncludeContext(),
		Logger:         env.Logger,
	}

	if !c.noHistory {
		history, err := env.OpenHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		pool, err := recorder.NewPool(&recorder.Config{Driver: history, Logger: env.Logger})
		if err != nil {
			return fmt.Errorf("starting recorder: %w", err)
		}
		defer pool.Close()
		cfg.Recorder = pool
	}

	reply, err := assistant.New(cfg, nil).Ask(ctx, question, image)
	if err != nil {
		return err
	}
	if reply.Err != nil {
		return fmt.Errorf("assistant unavailable: %w", reply.Err)
	}
	return nil
}

// readQuestion joins the arguments, or reads stdin when there are none.
func readQuestion(args []string, stdin io.Reader) (string, error) {
	question := strings.Join(args, " ")
	if len(args) == 0 {
		if f, ok := stdin.(*os.File); ok && cliui.IsTerminal(f) {
			return "", errors.New("a question is required, pass it as an argument or on stdin")
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading question: %w", err)
		}
		question = string(data)
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return "", storefront.ErrEmptyQuery
	}
	return question, nil
}
