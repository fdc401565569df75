package storefront_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scentshop/perfumery/pkg/sse"
	"github.com/scentshop/perfumery/pkg/storefront"
)

func streamFrames(w http.ResponseWriter, frames ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	flusher := w.(http.Flusher)
	for _, f := range frames {
		fmt.Fprint(w, f)
		flusher.Flush()
	}
}

func chunk(content string) string {
	frame, err := sse.ChunkEnvelope(content).Frame()
	Expect(err).NotTo(HaveOccurred())
	return string(frame)
}

var _ = Describe("StreamChat", func() {
	var (
		ctx context.Context
		got []string
	)

	collect := func(content string) error {
		got = append(got, content)
		return nil
	}

	BeforeEach(func() {
		ctx = context.Background()
		got = nil
	})

	It("posts a streaming request and delivers chunks in order", func() {
		var body map[string]any
		var accept string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accept = r.Header.Get("Accept")
			_ = json.NewDecoder(r.Body).Decode(&body)
			streamFrames(w,
				`data: {"type":"status","message":"thinking"}`+"\n\n",
				chunk("Try "),
				chunk("Aventus."),
				`data: {"type":"done"}`+"\n\n",
			)
		}))
		DeferCleanup(srv.Close)

		err := newClient(srv.URL, "").StreamChat(ctx, storefront.ChatRequest{Query: "bold scent?", IncludeContext: true}, collect)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal([]string{"Try ", "Aventus."}))
		Expect(accept).To(Equal("text/event-stream"))
		Expect(body).To(Equal(map[string]any{"query": "bold scent?", "includeContext": true, "stream": true}))
	})

	It("sends the image when one is attached", func() {
		var body map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&body)
			streamFrames(w)
		}))
		DeferCleanup(srv.Close)

		err := newClient(srv.URL, "").StreamChat(ctx, storefront.ChatRequest{Query: "what is this?", Image: "aGk="}, collect)
		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(HaveKeyWithValue("image", "aGk="))
		Expect(body).To(HaveKeyWithValue("includeContext", false))
	})

	It("returns an APIError for a non-2xx status without decoding the body", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, chunk("should not be seen"))
		}))
		DeferCleanup(srv.Close)

		err := newClient(srv.URL, "").StreamChat(ctx, storefront.ChatRequest{Query: "hi"}, collect)
		Expect(storefront.IsUnauthorized(err)).To(BeTrue())
		Expect(got).To(BeEmpty())
	})

	It("retries establishing the stream once", func() {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if hits.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			streamFrames(w, chunk("ok"))
		}))
		DeferCleanup(srv.Close)

		err := newClient(srv.URL, "").StreamChat(ctx, storefront.ChatRequest{Query: "hi"}, collect)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal([]string{"ok"}))
	})

	It("stops without error when the context is cancelled mid-stream", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			streamFrames(w, chunk("first "))
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}))
		DeferCleanup(srv.Close)

		cctx, cancel := context.WithCancel(ctx)
		defer cancel()

		sink := func(content string) error {
			got = append(got, content)
			cancel()
			return nil
		}

		start := time.Now()
		err := newClient(srv.URL, "").StreamChat(cctx, storefront.ChatRequest{Query: "hi"}, sink)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal([]string{"first "}))
		Expect(time.Since(start)).To(BeNumerically("<", 4*time.Second))
	})

	It("enforces the frame size limit", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			streamFrames(w, "data: "+strings.Repeat("x", 64))
		}))
		DeferCleanup(srv.Close)

		c, err := storefront.New(storefront.Config{BaseURL: srv.URL, MaxFrameBytes: 16})
		Expect(err).NotTo(HaveOccurred())

		err = c.StreamChat(ctx, storefront.ChatRequest{Query: "hi"}, collect)
		Expect(errors.Is(err, sse.ErrFrameTooLarge)).To(BeTrue())
	})

	It("propagates a sink error", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			streamFrames(w, chunk("a"), chunk("b"))
		}))
		DeferCleanup(srv.Close)

		stop := errors.New("terminal closed")
		err := newClient(srv.URL, "").StreamChat(ctx, storefront.ChatRequest{Query: "hi"}, func(string) error { return stop })
		Expect(errors.Is(err, stop)).To(BeTrue())
	})

	It("rejects an empty query", func() {
		err := newClient("http://127.0.0.1:1", "").StreamChat(ctx, storefront.ChatRequest{Query: "  "}, collect)
		Expect(err).To(MatchError(storefront.ErrEmptyQuery))
	})
})

var _ = Describe("ChatOnce", func() {
	It("posts a non-streaming request and decodes the reply", func() {
		var body map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&body)
			writeJSON(w, http.StatusOK, map[string]any{
				"reply":     "EDP is stronger than EDT.",
				"query":     "EDP vs EDT?",
				"timestamp": "2024-06-25T00:00:00.000Z",
			})
		}))
		DeferCleanup(srv.Close)

		reply, err := newClient(srv.URL, "").ChatOnce(context.Background(), storefront.ChatRequest{Query: "EDP vs EDT?"})
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Reply).To(Equal("EDP is stronger than EDT."))
		Expect(reply.Timestamp.Year()).To(Equal(2024))
		Expect(body).To(HaveKeyWithValue("stream", false))
	})
})
