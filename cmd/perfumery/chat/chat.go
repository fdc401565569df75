// Package chatcmder provides the chat command for an interactive
// conversation with the storefront's fragrance assistant.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/scentshop/perfumery/cmd/perfumery/cmdenv"
	"github.com/scentshop/perfumery/pkg/assistant"
	"github.com/scentshop/perfumery/pkg/cliui"
	"github.com/scentshop/perfumery/pkg/config"
	"github.com/scentshop/perfumery/pkg/recorder"
	"github.com/scentshop/perfumery/pkg/storage"
	"github.com/scentshop/perfumery/pkg/storefront"
)

var userPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true).Render("you> ")

type chatCommander struct {
	client         cmdenv.ClientOptions
	includeContext bool
	sqlitePath     string
	imagePath      string
	noStream       bool
	plain          bool
	sessionID      string

	// image is the encoded picture attached to the next question.
	image     string
	imageName string

	in      io.Reader
	out     io.Writer
	signals <-chan os.Signal
}

const chatLongDesc string = `Start an interactive chat with the AI fragrance assistant.

Replies stream in as they are written. Press Ctrl+C while a reply is
streaming to stop it; the partial reply is kept. Press Ctrl+C at the prompt,
Ctrl+D or type /exit to quit.

Conversations are recorded to the chat history database. Resume one with
--session and browse them with "perfumery history".

Commands:
  /suggest         List suggested questions
  /suggest <n>     Ask suggested question n
  /context on|off  Let the assistant use the perfume catalog
  /image <path>    Attach an image to the next question
  /exit            Quit

Examples:
  perfumery chat
  perfumery chat --context
  perfumery chat --image bottle.jpg
  perfumery chat --session 6f1c...`

const chatShortDesc string = "Chat with the AI fragrance assistant"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flagKeys := append([]string{config.FlagContext, config.FlagSQLite}, cmdenv.ClientFlags...)
			env, err := cmdenv.Load(cmd, flagKeys...)
			if err != nil {
				return err
			}

			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, os.Interrupt)
			defer signal.Stop(sigs)

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.signals = sigs

			return cmder.run(env)
		},
	}

	cmdenv.AddClientFlags(cmd, &cmder.client)
	config.AddBoolFlag(cmd, config.Flags, config.FlagContext, &cmder.includeContext)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	cmd.Flags().StringVar(&cmder.imagePath, "image", "", "Attach an image to the first question")
	cmd.Flags().BoolVar(&cmder.noStream, "no-stream", false, "Wait for whole replies instead of streaming")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print replies as plain text instead of rendered markdown")
	cmd.Flags().StringVar(&cmder.sessionID, "session", "", "Resume a recorded conversation")

	return cmd
}

func (c *chatCommander) run(env *cmdenv.Env) error {
	client, err := env.NewClient()
	if err != nil {
		return err
	}

	if c.imagePath != "" {
		if err := c.attach(c.imagePath); err != nil {
			return err
		}
	}

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

	session, err := c.resume(history)
	if err != nil {
		return err
	}

	conv := assistant.New(assistant.Config{
		Client:         client,
		Recorder:       pool,
		Out:            c.out,
		Plain:          c.plain || env.Plain(os.Stdout),
		NoStream:       c.noStream,
		IncludeContext: env.IncludeContext(),
		Logger:         env.Logger,
	}, session)

	return c.repl(conv)
}

// resume loads the session named by --session and prints its transcript.
func (c *chatCommander) resume(history storage.Driver) (*storage.Session, error) {
	if c.sessionID == "" {
		return nil, nil
	}

	ctx := context.Background()
	session, err := history.GetSession(ctx, c.sessionID)
	if err != nil {
		return nil, fmt.Errorf("resuming session: %w", err)
	}

	turns, err := history.Turns(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("resuming session: %w", err)
	}

	fmt.Fprintf(c.out, "\n  %s Resuming %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(session.Title),
		cliui.DimStyle.Render(fmt.Sprintf("(%d messages)", len(turns))),
	)
	for _, t := range turns {
		label := cliui.UserLabel
		if t.Role == storage.RoleAssistant {
			label = cliui.AssistantLabel
		}
		fmt.Fprintf(c.out, "  %s %s\n", label, cliui.DimStyle.Render(cliui.Fit(t.Content, 100)))
	}
	fmt.Fprintln(c.out)

	return session, nil
}

func (c *chatCommander) repl(conv *assistant.Conversation) error {
	if conv.Session() == nil {
		fmt.Fprintf(c.out, "\n  %s\n  %s\n\n", cliui.AssistantLabel, assistant.Greeting)
	}
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type your question and press Enter. /suggest for ideas, /exit or Ctrl+D to quit."))

	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)

	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(c.out, userPrompt)

		var (
			line string
			ok   bool
		)
		select {
		case line, ok = <-lines:
		case <-c.signals:
			fmt.Fprintln(c.out)
			return nil
		}
		if !ok {
			fmt.Fprintln(c.out)
			select {
			case err := <-scanErr:
				if err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
			default:
			}
			return nil
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit, err := c.command(conv, input)
			if err != nil {
				fmt.Fprintf(c.out, "  %s %v\n\n", cliui.FailMark, err)
			}
			if quit {
				return nil
			}
			continue
		}

		if err := c.ask(conv, input); err != nil {
			return err
		}
	}
}

// ask sends one question. Ctrl+C during the reply cancels only this reply.
func (c *chatCommander) ask(conv *assistant.Conversation, question string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	answered := make(chan struct{})
	go func() {
		select {
		case <-c.signals:
			cancel()
		case <-answered:
		}
	}()

	image := c.image
	c.image, c.imageName = "", ""

	fmt.Fprintf(c.out, "\n  %s\n", cliui.AssistantLabel)
	reply, err := conv.Ask(ctx, question, image)
	close(answered)
	if err != nil {
		return err
	}

	switch {
	case reply.Cancelled:
		fmt.Fprintf(c.out, "  %s\n", cliui.DimStyle.Render("(cancelled)"))
	case reply.Err != nil && !reply.Fallback:
		fmt.Fprintf(c.out, "  %s %s\n", cliui.WarnStyle.Render("!"), cliui.DimStyle.Render("reply was cut short: "+reply.Err.Error()))
	}
	fmt.Fprintln(c.out)
	return nil
}

// command runs a slash command and reports whether the REPL should quit.
func (c *chatCommander) command(conv *assistant.Conversation, input string) (bool, error) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/exit", "/quit":
		return true, nil

	case "/help":
		fmt.Fprintf(c.out, "\n  %s\n\n", cliui.DimStyle.Render("/suggest [n]  /context on|off  /image <path>  /exit"))

	case "/suggest":
		if arg == "" {
			fmt.Fprintln(c.out)
			for i, q := range assistant.SuggestedQuestions {
				fmt.Fprintf(c.out, "  %s %s\n", cliui.IDStyle.Render(strconv.Itoa(i+1)+"."), q)
			}
			fmt.Fprintf(c.out, "\n  %s\n\n", cliui.DimStyle.Render("Ask one with /suggest <n>."))
			return false, nil
		}

		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(assistant.SuggestedQuestions) {
			return false, fmt.Errorf("pick a suggestion between 1 and %d", len(assistant.SuggestedQuestions))
		}
		question := assistant.SuggestedQuestions[n-1]
		fmt.Fprintf(c.out, "%s%s\n", userPrompt, question)
		return false, c.ask(conv, question)

	case "/context":
		switch strings.ToLower(arg) {
		case "on":
			conv.SetIncludeContext(true)
		case "off":
			conv.SetIncludeContext(false)
		case "":
		default:
			return false, fmt.Errorf("usage: /context on|off")
		}
		state := "off"
		if conv.IncludeContext() {
			state = "on"
		}
		fmt.Fprintf(c.out, "  %s Catalog context %s\n\n", cliui.SuccessMark, cliui.ValueStyle.Render(state))

	case "/image":
		if arg == "" {
			c.image, c.imageName = "", ""
			fmt.Fprintf(c.out, "  %s Image cleared\n\n", cliui.SuccessMark)
			return false, nil
		}
		if err := c.attach(arg); err != nil {
			return false, err
		}
		fmt.Fprintf(c.out, "  %s Attached %s to the next question\n\n", cliui.SuccessMark, cliui.NameStyle.Render(c.imageName))

	default:
		return false, fmt.Errorf("unknown command %s, try /help", name)
	}

	return false, nil
}

func (c *chatCommander) attach(path string) error {
	image, err := storefront.EncodeImage(path)
	if err != nil {
		return err
	}
	c.image, c.imageName = image, path
	return nil
}
