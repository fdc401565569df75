package cliui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	paragraphBreak = "\n\n"
	codeFence      = "```"
)

// StreamRenderer prints an assistant reply while it streams in. Plain mode
// writes every chunk straight through. Markdown mode buffers until a
// paragraph break outside a code fence, then renders the finished
// paragraphs with glamour so partial markdown is never shown.
type StreamRenderer struct {
	w     io.Writer
	md    *glamour.TermRenderer
	plain bool

	pending strings.Builder
	full    strings.Builder
}

// NewStreamRenderer creates a StreamRenderer writing to w. If the markdown
// renderer cannot be built the renderer falls back to plain output.
func NewStreamRenderer(w io.Writer, plain bool) *StreamRenderer {
	r := &StreamRenderer{w: w, plain: plain}
	if !plain {
		md, err := newMarkdownRenderer()
		if err != nil {
			r.plain = true
		} else {
			r.md = md
		}
	}
	return r
}

// Append adds a chunk of reply text. Its signature matches sse.Sink.
func (r *StreamRenderer) Append(content string) error {
	r.full.WriteString(content)

	if r.plain {
		_, err := io.WriteString(r.w, content)
		return err
	}

	r.pending.WriteString(content)
	buffered := r.pending.String()

	idx := breakPoint(buffered)
	if idx <= 0 {
		return nil
	}

	r.pending.Reset()
	r.pending.WriteString(buffered[idx:])
	return r.render(buffered[:idx])
}

// Flush renders whatever is still buffered and ends the reply with a newline.
func (r *StreamRenderer) Flush() error {
	if r.plain {
		if r.full.Len() > 0 && !strings.HasSuffix(r.full.String(), "\n") {
			_, err := io.WriteString(r.w, "\n")
			return err
		}
		return nil
	}

	rest := r.pending.String()
	r.pending.Reset()
	if strings.TrimSpace(rest) == "" {
		return nil
	}
	return r.render(rest)
}

// Text returns the complete reply received so far.
func (r *StreamRenderer) Text() string {
	return r.full.String()
}

func (r *StreamRenderer) render(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	out, err := r.md.Render(content)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}

	_, err = fmt.Fprintln(r.w, strings.TrimRight(out, "\n"))
	return err
}

// breakPoint returns the index just past the last paragraph break that is not
// inside an open code fence, or -1.
func breakPoint(content string) int {
	for idx := strings.LastIndex(content, paragraphBreak); idx >= 0; idx = strings.LastIndex(content[:idx], paragraphBreak) {
		if strings.Count(content[:idx], codeFence)%2 == 0 {
			return idx + len(paragraphBreak)
		}
	}
	return -1
}
