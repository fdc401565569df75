package assistant_test

import (
	"bytes"
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scentshop/perfumery/pkg/assistant"
	"github.com/scentshop/perfumery/pkg/logger"
	"github.com/scentshop/perfumery/pkg/recorder"
	"github.com/scentshop/perfumery/pkg/sse"
	"github.com/scentshop/perfumery/pkg/storage"
	"github.com/scentshop/perfumery/pkg/storage/inmemory"
	"github.com/scentshop/perfumery/pkg/storefront"
)

// fakeChatter replays canned chunks, optionally failing afterwards or
// calling cancel midway.
type fakeChatter struct {
	chunks    []string
	streamErr error
	cancelAt  int
	cancel    context.CancelFunc

	reply   string
	onceErr error

	requests []storefront.ChatRequest
}

func (f *fakeChatter) ChatOnce(_ context.Context, req storefront.ChatRequest) (*storefront.ChatReply, error) {
	f.requests = append(f.requests, req)
	if f.onceErr != nil {
		return nil, f.onceErr
	}
	return &storefront.ChatReply{Reply: f.reply, Query: req.Query, Timestamp: time.Now()}, nil
}

func (f *fakeChatter) StreamChat(ctx context.Context, req storefront.ChatRequest, sink sse.Sink) error {
	f.requests = append(f.requests, req)
	for i, c := range f.chunks {
		if f.cancel != nil && i == f.cancelAt {
			f.cancel()
		}
		if ctx.Err() != nil {
			return nil
		}
		if err := sink(c); err != nil {
			return err
		}
	}
	return f.streamErr
}

var _ = Describe("Conversation", func() {
	var (
		ctx     context.Context
		out     *bytes.Buffer
		chatter *fakeChatter
		driver  *inmemory.Driver
		pool    *recorder.Pool
	)

	newConversation := func(cfg assistant.Config) *assistant.Conversation {
		cfg.Client = chatter
		cfg.Out = out
		cfg.Plain = true
		cfg.Recorder = pool
		cfg.Logger = logger.Nop()
		return assistant.New(cfg, nil)
	}

	storedTurns := func(c *assistant.Conversation) []*storage.Turn {
		pool.Close()
		turns, err := driver.Turns(ctx, c.Session().ID)
		Expect(err).NotTo(HaveOccurred())
		return turns
	}

	BeforeEach(func() {
		ctx = context.Background()
		out = &bytes.Buffer{}
		chatter = &fakeChatter{}
		driver = inmemory.NewDriver()

		var err error
		pool, err = recorder.NewPool(&recorder.Config{Driver: driver, Logger: logger.Nop()})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(pool.Close)
	})

	It("rejects an empty question", func() {
		_, err := newConversation(assistant.Config{}).Ask(ctx, "   ", "")
		Expect(err).To(MatchError(storefront.ErrEmptyQuery))
		Expect(chatter.requests).To(BeEmpty())
	})

	It("streams the reply and records the exchange", func() {
		chatter.chunks = []string{"Try ", "Wood Sage ", "& Sea Salt."}
		conv := newConversation(assistant.Config{IncludeContext: true})

		reply, err := conv.Ask(ctx, " Recommend a perfume for summer ", "aGk=")
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Text).To(Equal("Try Wood Sage & Sea Salt."))
		Expect(out.String()).To(Equal("Try Wood Sage & Sea Salt.\n"))

		Expect(chatter.requests).To(HaveLen(1))
		Expect(chatter.requests[0].Query).To(Equal("Recommend a perfume for summer"))
		Expect(chatter.requests[0].IncludeContext).To(BeTrue())
		Expect(chatter.requests[0].Image).To(Equal("aGk="))

		Expect(conv.Session().Title).To(Equal("Recommend a perfume for summer"))
		turns := storedTurns(conv)
		Expect(turns).To(HaveLen(2))
		Expect(turns[0].Role).To(Equal(storage.RoleUser))
		Expect(turns[1].Content).To(Equal("Try Wood Sage & Sea Salt."))
		Expect(turns[1].Cancelled).To(BeFalse())
	})

	It("keeps one session across questions", func() {
		chatter.chunks = []string{"ok"}
		conv := newConversation(assistant.Config{})

		_, err := conv.Ask(ctx, "first", "")
		Expect(err).NotTo(HaveOccurred())
		id := conv.Session().ID
		_, err = conv.Ask(ctx, "second", "")
		Expect(err).NotTo(HaveOccurred())

		Expect(conv.Session().ID).To(Equal(id))
		Expect(storedTurns(conv)).To(HaveLen(4))
	})

	It("keeps the partial reply when cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()
		chatter.chunks = []string{"Aventus ", "is ", "legendary."}
		chatter.cancelAt = 2
		chatter.cancel = cancel

		conv := newConversation(assistant.Config{})
		reply, err := conv.Ask(cctx, "Tell me about Aventus", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Cancelled).To(BeTrue())
		Expect(reply.Text).To(Equal("Aventus is "))

		turns := storedTurns(conv)
		Expect(turns[1].Content).To(Equal("Aventus is "))
		Expect(turns[1].Cancelled).To(BeTrue())
	})

	It("shows the fallback reply when the stream cannot start", func() {
		chatter.streamErr = errors.New("connection refused")
		conv := newConversation(assistant.Config{})

		reply, err := conv.Ask(ctx, "hello", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Fallback).To(BeTrue())
		Expect(reply.Err).To(MatchError("connection refused"))
		Expect(out.String()).To(ContainSubstring(assistant.FallbackReply))
		Expect(storedTurns(conv)[1].Content).To(Equal(assistant.FallbackReply))
	})

	It("keeps partial text when the stream breaks midway", func() {
		chatter.chunks = []string{"Half an "}
		chatter.streamErr = errors.New("unexpected EOF")
		conv := newConversation(assistant.Config{})

		reply, err := conv.Ask(ctx, "hello", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Fallback).To(BeFalse())
		Expect(reply.Text).To(Equal("Half an "))
		Expect(reply.Err).To(HaveOccurred())
	})

	It("apologises for an empty reply", func() {
		conv := newConversation(assistant.Config{})

		_, err := conv.Ask(ctx, "hello", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(ContainSubstring(assistant.EmptyReply))
	})

	Describe("without streaming", func() {
		It("prints the whole reply", func() {
			chatter.reply = "EDP lasts longer."
			conv := newConversation(assistant.Config{NoStream: true})

			reply, err := conv.Ask(ctx, "What makes EDP different from EDT?", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text).To(Equal("EDP lasts longer."))
			Expect(out.String()).To(Equal("EDP lasts longer.\n"))
		})

		It("falls back when the request fails", func() {
			chatter.onceErr = &storefront.APIError{StatusCode: 503, Message: "down"}
			conv := newConversation(assistant.Config{NoStream: true})

			reply, err := conv.Ask(ctx, "hello", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Fallback).To(BeTrue())
			Expect(out.String()).To(ContainSubstring(assistant.FallbackReply))
		})
	})

	It("resumes a stored session", func() {
		chatter.chunks = []string{"again"}
		session := &storage.Session{ID: "s1", Title: "earlier", CreatedAt: time.Now().Add(-time.Hour)}
		conv := assistant.New(assistant.Config{Client: chatter, Out: out, Plain: true, Recorder: pool}, session)

		_, err := conv.Ask(ctx, "hello", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(conv.Session().ID).To(Equal("s1"))
		Expect(storedTurns(conv)).To(HaveLen(2))
	})
})
