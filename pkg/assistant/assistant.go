// Package assistant runs a conversation with the storefront's fragrance
// assistant: it sends questions, prints replies as they stream in and hands
// every exchange to the transcript recorder.
package assistant

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scentshop/perfumery/pkg/cliui"
	"github.com/scentshop/perfumery/pkg/recorder"
	"github.com/scentshop/perfumery/pkg/sse"
	"github.com/scentshop/perfumery/pkg/storage"
	"github.com/scentshop/perfumery/pkg/storefront"
	"github.com/scentshop/perfumery/pkg/utils"
)

const (
	// Greeting opens every new conversation.
	Greeting = "Hello! I'm your AI fragrance assistant. I can help you discover new perfumes, " +
		"answer questions about scents, and provide personalized recommendations. What would you like to know?"

	// FallbackReply is shown in place of a reply when the assistant cannot
	// be reached.
	FallbackReply = "The Gemini AI integration is not yet connected to the backend. In production, " +
		"I would provide intelligent recommendations based on your preferences, fragrance notes, and user reviews."

	// EmptyReply is shown when the assistant answered with nothing.
	EmptyReply = "I apologize, but I'm having trouble processing your request right now."

	titleLength = 60
)

// SuggestedQuestions are offered to start a conversation.
var SuggestedQuestions = []string{
	"Recommend a perfume for summer",
	"What makes EDP different from EDT?",
	"Suggest fragrances similar to Aventus",
	"Best perfumes for evening wear",
}

// Chatter is the part of the storefront client a Conversation uses.
type Chatter interface {
	ChatOnce(ctx context.Context, req storefront.ChatRequest) (*storefront.ChatReply, error)
	StreamChat(ctx context.Context, req storefront.ChatRequest, sink sse.Sink) error
}

// Config configures a Conversation.
type Config struct {
	Client Chatter

	// Recorder persists exchanges. Nil disables recording.
	Recorder *recorder.Pool

	// Out receives replies.
	Out io.Writer

	// Plain prints replies as raw text instead of rendered markdown.
	Plain bool

	// NoStream waits for the whole reply instead of streaming it.
	NoStream bool

	IncludeContext bool

	Logger *slog.Logger
}

// Reply is the outcome of one question.
type Reply struct {
	// Text is what the assistant said, possibly partial or the fallback.
	Text string

	// Cancelled is set when the context was cancelled mid-reply.
	Cancelled bool

	// Fallback is set when Text is FallbackReply because the request failed.
	Fallback bool

	// Err is the backend failure, if any.
	Err error
}

// Conversation is a sequence of questions recorded under one session.
type Conversation struct {
	cfg     Config
	session *storage.Session
	now     func() time.Time
}

// New starts a conversation. A nil session starts a new one on the first
// question; a stored session is resumed.
func New(cfg Config, session *storage.Session) *Conversation {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	return &Conversation{cfg: cfg, session: session, now: time.Now}
}

// Session returns the conversation's session, or nil before the first
// question of a new conversation.
func (c *Conversation) Session() *storage.Session {
	return c.session
}

// SetIncludeContext switches catalog context on or off for later questions.
func (c *Conversation) SetIncludeContext(on bool) {
	c.cfg.IncludeContext = on
}

// IncludeContext reports whether questions ask for catalog context.
func (c *Conversation) IncludeContext() bool {
	return c.cfg.IncludeContext
}

// Ask sends question, with an optional base64 image, and prints the reply.
// Backend failures do not fail Ask: they are reported in Reply.Err and the
// fallback reply is printed. The returned error is for local failures only.
func (c *Conversation) Ask(ctx context.Context, question, image string) (Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{}, storefront.ErrEmptyQuery
	}

	asked := c.now().UTC()
	req := storefront.ChatRequest{
		Query:          question,
		IncludeContext: c.cfg.IncludeContext,
		Image:          image,
	}

	var (
		reply Reply
		err   error
	)
	if c.cfg.NoStream {
		reply, err = c.once(ctx, req)
	} else {
		reply, err = c.stream(ctx, req)
	}
	if err != nil {
		return reply, err
	}

	c.record(question, asked, reply)
	return reply, nil
}

func (c *Conversation) stream(ctx context.Context, req storefront.ChatRequest) (Reply, error) {
	r := cliui.NewStreamRenderer(c.cfg.Out, c.cfg.Plain)

	streamErr := c.cfg.Client.StreamChat(ctx, req, r.Append)
	if err := r.Flush(); err != nil {
		return Reply{}, fmt.Errorf("writing reply: %w", err)
	}

	reply := Reply{Text: r.Text(), Cancelled: ctx.Err() != nil}

	switch {
	case streamErr != nil && reply.Text == "":
		reply.Err = streamErr
		return c.fallback(reply)

	case streamErr != nil:
		reply.Err = streamErr
		c.cfg.Logger.Warn("reply stream ended early", "error", streamErr)

	case reply.Text == "" && !reply.Cancelled:
		return reply, c.print(EmptyReply)
	}

	return reply, nil
}

func (c *Conversation) once(ctx context.Context, req storefront.ChatRequest) (Reply, error) {
	resp, err := c.cfg.Client.ChatOnce(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return Reply{Cancelled: true}, nil
		}
		return c.fallback(Reply{Err: err})
	}

	reply := Reply{Text: resp.Reply}
	if strings.TrimSpace(reply.Text) == "" {
		return reply, c.print(EmptyReply)
	}
	return reply, c.print(reply.Text)
}

func (c *Conversation) fallback(reply Reply) (Reply, error) {
	if storefront.IsUnauthorized(reply.Err) {
		c.cfg.Logger.Warn("assistant requires login", "error", reply.Err)
	} else {
		c.cfg.Logger.Debug("assistant unavailable", "error", reply.Err)
	}

	reply.Text = FallbackReply
	reply.Fallback = true
	return reply, c.print(FallbackReply)
}

// print writes a complete reply, rendered like a streamed one.
func (c *Conversation) print(text string) error {
	r := cliui.NewStreamRenderer(c.cfg.Out, c.cfg.Plain)
	if err := r.Append(text); err != nil {
		return fmt.Errorf("writing reply: %w", err)
	}
	if err := r.Flush(); err != nil {
		return fmt.Errorf("writing reply: %w", err)
	}
	return nil
}

// record queues the exchange for storage. The session is created on the
// first question.
func (c *Conversation) record(question string, asked time.Time, reply Reply) {
	if c.session == nil {
		c.session = &storage.Session{
			ID:        uuid.NewString(),
			Title:     utils.Truncate(question, titleLength),
			CreatedAt: asked,
		}
	}

	if c.cfg.Recorder == nil {
		return
	}

	answered := c.now().UTC()
	if !answered.After(asked) {
		answered = asked.Add(time.Nanosecond)
	}

	c.cfg.Recorder.Enqueue(recorder.Job{
		Session: c.session,
		Turns: []*storage.Turn{
			{
				ID:        uuid.NewString(),
				SessionID: c.session.ID,
				Role:      storage.RoleUser,
				Content:   question,
				CreatedAt: asked,
			},
			{
				ID:        uuid.NewString(),
				SessionID: c.session.ID,
				Role:      storage.RoleAssistant,
				Content:   reply.Text,
				CreatedAt: answered,
				Cancelled: reply.Cancelled,
			},
		},
	})
}
