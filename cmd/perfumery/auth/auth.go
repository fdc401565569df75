// Package authcmder provides the account commands: login, logout, register,
// whoami and profile management. The session cookie is stored in
// session.json in the .perfumery/ directory.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/scentshop/perfumery/pkg/cliui"
	"github.com/scentshop/perfumery/pkg/storefront"
)

var errNotLoggedIn = errors.New(`not logged in, run "perfumery login" first`)

// prompter reads answers from the command's stdin. On a terminal it shows
// prompts and hides secrets; piped input is read one line per answer.
type prompter struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	return &prompter{
		in:     in,
		out:    cmd.ErrOrStderr(),
		reader: bufio.NewReader(in),
	}
}

func (p *prompter) terminal() (*os.File, bool) {
	f, ok := p.in.(*os.File)
	if !ok || !cliui.IsTerminal(f) {
		return nil, false
	}
	return f, true
}

// line reads a visible answer.
func (p *prompter) line(label string) (string, error) {
	if _, ok := p.terminal(); ok {
		fmt.Fprintf(p.out, "  %s: ", label)
	}

	text, err := p.reader.ReadString('\n')
	switch {
	case err == nil, errors.Is(err, io.EOF) && text != "":
		return strings.TrimSpace(text), nil
	case errors.Is(err, io.EOF):
		return "", fmt.Errorf("no input received for %s", strings.ToLower(label))
	default:
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
}

// secret reads an answer without echoing it on a terminal.
func (p *prompter) secret(label string) (string, error) {
	f, ok := p.terminal()
	if !ok {
		return p.line(label)
	}

	fmt.Fprintf(p.out, "  %s: ", label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out) // newline after hidden input
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}

func printUser(w io.Writer, u *storefront.User) {
	name := cliui.NameStyle.Render(u.Name)
	if u.IsAdmin() {
		name += " " + cliui.WarnStyle.Render("admin")
	}
	fmt.Fprintf(w, "\n  %s\n\n", name)

	field(w, "Email", u.Email)
	field(w, "ID", u.ID)
	if u.YOB > 0 {
		field(w, "Born", fmt.Sprintf("%d", u.YOB))
	}
	if u.Gender != "" {
		field(w, "Gender", u.Gender)
	}
	fmt.Fprintln(w)
}

func field(w io.Writer, key, value string) {
	fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%-8s", key)), cliui.ValueStyle.Render(value))
}
