// Package cliui provides reusable terminal UI helpers (spinners, step indicators,
// markdown rendering) for perfumery CLI commands.
package cliui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	SuccessMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	StepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))

	TitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	KeyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	ValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	DimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	NameStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("219"))
	IDStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	RatingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	PriceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))

	UserLabel      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Render("you")
	AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")).Render("assistant")
	WarnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// spinnerFrames is the braille dot spinner.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Step prints an animated spinner while fn runs, then replaces it with
// a ✓ or ✗ checkmark and elapsed time.
func Step(w io.Writer, msg string, fn func() error) error {
	done := make(chan struct{})
	stopped := make(chan struct{})
	var mu sync.Mutex

	// Run spinner animation in background
	go func() {
		defer close(stopped)

		frame := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			mu.Lock()
			fmt.Fprintf(w, "\r  %s %s",
				spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]),
				msg,
			)
			mu.Unlock()

			select {
			case <-done:
				return
			case <-ticker.C:
				frame++
			}
		}
	}()

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	close(done)
	<-stopped

	// Clear the spinner line and print final result
	mu.Lock()
	fmt.Fprintf(w, "\r  %s %s %s\n",
		Mark(err),
		msg,
		StepStyle.Render(fmt.Sprintf("(%s)", FormatDuration(elapsed))),
	)
	mu.Unlock()

	return err
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// Stars renders a 0..5 rating as filled and empty stars.
func Stars(rating float64) string {
	filled := min(max(int(rating+0.5), 0), 5)
	out := ""
	for i := range 5 {
		if i < filled {
			out += "★"
		} else {
			out += "☆"
		}
	}
	return RatingStyle.Render(out)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// RenderMarkdown renders markdown content for terminal display using glamour.
func RenderMarkdown(content string) (string, error) {
	r, err := newMarkdownRenderer()
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}

// Fit shortens s to at most width terminal cells, ending with "…" when cut.
// Styled text keeps its escape sequences intact.
func Fit(s string, width int) string {
	return ansi.Truncate(s, width, "…")
}

// markdownStyle honours NO_COLOR, which glamour's auto style ignores.
func markdownStyle() glamour.TermRendererOption {
	if termenv.EnvNoColor() {
		return glamour.WithStandardStyle("notty")
	}
	return glamour.WithAutoStyle()
}

func newMarkdownRenderer() (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		markdownStyle(),
		glamour.WithWordWrap(80),
	)
}
