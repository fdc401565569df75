package sse_test

import (
	"context"
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scentshop/perfumery/pkg/sse"
)

// chunkReader hands out a fixed sequence of chunks, one per Read call, and
// then the configured terminal error (io.EOF by default).
type chunkReader struct {
	chunks  [][]byte
	err     error
	reads   int
	onRead  func(n int)
	current []byte
}

func newChunkReader(chunks ...string) *chunkReader {
	r := &chunkReader{}
	for _, c := range chunks {
		r.chunks = append(r.chunks, []byte(c))
	}
	return r
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.current) == 0 {
		if len(r.chunks) == 0 {
			if r.err != nil {
				return 0, r.err
			}
			return 0, io.EOF
		}

		r.reads++
		if r.onRead != nil {
			r.onRead(r.reads)
		}

		r.current = r.chunks[0]
		r.chunks = r.chunks[1:]

		// A zero-length chunk is delivered as a zero-length read.
		if len(r.current) == 0 {
			return 0, nil
		}
	}

	n := copy(p, r.current)
	r.current = r.current[n:]
	return n, nil
}

// collect returns a sink recording every content string it receives.
func collect(into *[]string) sse.Sink {
	return func(content string) error {
		*into = append(*into, content)
		return nil
	}
}

func chunkFrame(content string) string {
	frame, err := sse.ChunkEnvelope(content).Frame()
	Expect(err).NotTo(HaveOccurred())
	// The wire writes a blank separator line; keep only the data line so the
	// tests control blank lines explicitly.
	return strings.TrimSuffix(string(frame), "\n")
}

var _ = Describe("Decoder", func() {
	var (
		ctx context.Context
		got []string
	)

	BeforeEach(func() {
		ctx = context.Background()
		got = nil
	})

	Describe("Consume", func() {
		It("delivers a token split across reads once the frame completes", func() {
			var seenAtRead []int
			r := newChunkReader(
				`data: {"typ`,
				`e":"chunk","content":"Hel`,
				`lo"}`+"\n"+`data: {"type":"chunk","content":" World"}`+"\n",
			)
			sink := func(content string) error {
				seenAtRead = append(seenAtRead, r.reads)
				got = append(got, content)
				return nil
			}

			Expect(sse.Consume(ctx, r, sink)).To(Succeed())
			Expect(got).To(Equal([]string{"Hello", " World"}))
			Expect(seenAtRead).To(Equal([]int{3, 3}))
		})

		It("skips a malformed frame between two valid ones", func() {
			r := newChunkReader(
				`data: {"type":"chunk","content":"Hi"}` + "\n" +
					"data: bad-json\n" +
					`data: {"type":"chunk","content":"Bye"}` + "\n",
			)

			Expect(sse.Consume(ctx, r, collect(&got))).To(Succeed())
			Expect(got).To(Equal([]string{"Hi", "Bye"}))
		})

		It("never delivers an unterminated trailing frame", func() {
			r := newChunkReader(
				`data: {"type":"chunk","content":"done"}`+"\n",
				`data: {"type":"chunk","content":"partial"}`,
			)

			Expect(sse.Consume(ctx, r, collect(&got))).To(Succeed())
			Expect(got).To(Equal([]string{"done"}))
		})

		It("ignores non-chunk envelope types", func() {
			r := newChunkReader(
				`data: {"type":"status","message":"thinking"}` + "\n" +
					`data: {"type":"done"}` + "\n" +
					`data: {"type":"chunk","content":"ok"}` + "\n",
			)

			Expect(sse.Consume(ctx, r, collect(&got))).To(Succeed())
			Expect(got).To(Equal([]string{"ok"}))
		})

		It("ignores frames without the data prefix", func() {
			r := newChunkReader(
				": keep-alive\n" +
					"\n" +
					"event: message\n" +
					`data:{"type":"chunk","content":"no-space"}` + "\n" +
					`{"type":"chunk","content":"bare"}` + "\n" +
					`data: {"type":"chunk","content":"yes"}` + "\n",
			)

			Expect(sse.Consume(ctx, r, collect(&got))).To(Succeed())
			Expect(got).To(Equal([]string{"yes"}))
		})

		It("skips chunk envelopes whose content is missing or not a string", func() {
			r := newChunkReader(
				`data: {"type":"chunk"}` + "\n" +
					`data: {"type":"chunk","content":42}` + "\n" +
					`data: {"type":"chunk","content":null}` + "\n" +
					`data: ["chunk"]` + "\n" +
					"data: null\n" +
					`data: {"type":"chunk","content":""}` + "\n",
			)

			Expect(sse.Consume(ctx, r, collect(&got))).To(Succeed())
			Expect(got).To(Equal([]string{""}))
		})

		It("tolerates unexpected fields alongside a valid chunk", func() {
			r := newChunkReader(`data: {"type":"chunk","content":"x","message":7,"extra":{"a":1}}` + "\n")

			Expect(sse.Consume(ctx, r, collect(&got))).To(Succeed())
			Expect(got).To(Equal([]string{"x"}))
		})

		It("accepts CRLF line endings", func() {
			r := newChunkReader(`data: {"type":"chunk","content":"crlf"}` + "\r\n\r\n")

			Expect(sse.Consume(ctx, r, collect(&got))).To(Succeed())
			Expect(got).To(Equal([]string{"crlf"}))
		})

		It("handles zero-length reads", func() {
			r := newChunkReader("", `data: {"type":"chunk","content":"a"}`, "", "\n", "")

			Expect(sse.Consume(ctx, r, collect(&got))).To(Succeed())
			Expect(got).To(Equal([]string{"a"}))
		})

		It("returns nil on an empty stream", func() {
			Expect(sse.Consume(ctx, strings.NewReader(""), collect(&got))).To(Succeed())
			Expect(got).To(BeEmpty())
		})

		It("strips a leading byte order mark", func() {
			r := newChunkReader("\xEF\xBB\xBF"+`data: {"type":"chunk","content":"bom"}`+"\n")

			Expect(sse.Consume(ctx, r, collect(&got))).To(Succeed())
			Expect(got).To(Equal([]string{"bom"}))
		})
	})

	Describe("chunk boundary independence", func() {
		contents := []string{"Héllo", " wörld ", "✨ rose & oud", `"quoted" \ slash`, "日本の香水"}

		var stream string

		BeforeEach(func() {
			var b strings.Builder
			for _, c := range contents {
				b.WriteString(chunkFrame(c))
				b.WriteString("\n\n")
			}
			stream = b.String()
		})

		It("delivers identical content for every two-way split of the stream", func() {
			raw := []byte(stream)
			for i := 0; i <= len(raw); i++ {
				var out []string
				r := newChunkReader(string(raw[:i]), string(raw[i:]))

				Expect(sse.Consume(ctx, r, collect(&out))).To(Succeed())
				Expect(out).To(Equal(contents), "split at byte %d", i)
			}
		})

		It("delivers identical content when fed one byte at a time", func() {
			raw := []byte(stream)
			chunks := make([]string, len(raw))
			for i, b := range raw {
				chunks[i] = string([]byte{b})
			}

			Expect(sse.Consume(ctx, newChunkReader(chunks...), collect(&got))).To(Succeed())
			Expect(got).To(Equal(contents))
		})

		It("delivers identical content with a small read buffer", func() {
			d := sse.NewDecoder(sse.WithReadSize(3))

			Expect(d.Consume(ctx, strings.NewReader(stream), collect(&got))).To(Succeed())
			Expect(got).To(Equal(contents))
		})
	})

	Describe("cancellation", func() {
		It("stops before reading the next chunk", func() {
			cctx, cancel := context.WithCancel(ctx)
			defer cancel()

			r := newChunkReader(
				`data: {"type":"chunk","content":"first"}`+"\n",
				`data: {"type":"chunk","content":"second"}`+"\n",
			)
			sink := func(content string) error {
				got = append(got, content)
				cancel()
				return nil
			}

			Expect(sse.Consume(cctx, r, sink)).To(Succeed())
			Expect(got).To(Equal([]string{"first"}))
			Expect(r.reads).To(Equal(1))
		})

		It("drops a chunk that arrives after cancellation", func() {
			cctx, cancel := context.WithCancel(ctx)
			defer cancel()

			r := newChunkReader(
				`data: {"type":"chunk","content":"first"}`+"\n",
				`data: {"type":"chunk","content":"second"}`+"\n",
			)
			r.onRead = func(n int) {
				if n == 2 {
					cancel()
				}
			}

			Expect(sse.Consume(cctx, r, collect(&got))).To(Succeed())
			Expect(got).To(Equal([]string{"first"}))
		})

		It("returns immediately when already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			r := newChunkReader(`data: {"type":"chunk","content":"never"}` + "\n")

			Expect(sse.Consume(cctx, r, collect(&got))).To(Succeed())
			Expect(got).To(BeEmpty())
			Expect(r.reads).To(Equal(0))
		})
	})

	Describe("errors", func() {
		It("propagates a transport error after delivering completed frames", func() {
			boom := errors.New("connection reset")
			r := newChunkReader(`data: {"type":"chunk","content":"kept"}` + "\n" + `data: {"type":"chunk","content":"lost`)
			r.err = boom

			err := sse.Consume(ctx, r, collect(&got))
			Expect(err).To(MatchError(boom))
			Expect(err.Error()).To(ContainSubstring("reading stream"))
			Expect(got).To(Equal([]string{"kept"}))
		})

		It("propagates a sink error and stops consuming", func() {
			sinkErr := errors.New("render failed")
			r := newChunkReader(
				`data: {"type":"chunk","content":"a"}`+"\n"+`data: {"type":"chunk","content":"b"}`+"\n",
				`data: {"type":"chunk","content":"c"}`+"\n",
			)
			calls := 0
			sink := func(string) error {
				calls++
				return sinkErr
			}

			err := sse.Consume(ctx, r, sink)
			Expect(err).To(MatchError(sinkErr))
			Expect(calls).To(Equal(1))
			Expect(r.reads).To(Equal(1))
		})

		It("rejects a second Consume on the same decoder", func() {
			d := sse.NewDecoder()
			Expect(d.Consume(ctx, strings.NewReader(""), collect(&got))).To(Succeed())

			err := d.Consume(ctx, strings.NewReader(chunkFrame("x")+"\n"), collect(&got))
			Expect(err).To(MatchError(sse.ErrDecoderReused))
			Expect(got).To(BeEmpty())
		})

		It("fails when an unterminated frame exceeds the pending limit", func() {
			d := sse.NewDecoder(sse.WithMaxPending(16))
			r := newChunkReader(chunkFrame("fits")+"\n", "data: "+strings.Repeat("x", 32))

			err := d.Consume(ctx, r, collect(&got))
			Expect(err).To(MatchError(sse.ErrFrameTooLarge))
			Expect(got).To(Equal([]string{"fits"}))
		})

		It("does not count completed frames against the pending limit", func() {
			d := sse.NewDecoder(sse.WithMaxPending(8))
			long := strings.Repeat("y", 64)

			Expect(d.Consume(ctx, strings.NewReader(chunkFrame(long)+"\n"), collect(&got))).To(Succeed())
			Expect(got).To(Equal([]string{long}))
		})
	})

	Describe("independent decoders", func() {
		It("do not share pending state", func() {
			var a, b []string
			da, db := sse.NewDecoder(), sse.NewDecoder()

			Expect(da.Consume(ctx, newChunkReader(`data: {"type":"chunk","content":"left`), collect(&a))).To(Succeed())
			Expect(db.Consume(ctx, newChunkReader(`over"}`+"\n"), collect(&b))).To(Succeed())

			Expect(a).To(BeEmpty())
			Expect(b).To(BeEmpty())
		})
	})
})

var _ = Describe("Envelope", func() {
	It("frames a chunk as a data line followed by a blank line", func() {
		frame, err := sse.ChunkEnvelope("Hi").Frame()
		Expect(err).NotTo(HaveOccurred())
		Expect(string(frame)).To(Equal(`data: {"type":"chunk","content":"Hi"}` + "\n\n"))
	})

	It("omits content on non-chunk envelopes", func() {
		frame, err := sse.Envelope{Type: sse.TypeStatus, Message: "thinking"}.Frame()
		Expect(err).NotTo(HaveOccurred())
		Expect(string(frame)).To(Equal(`data: {"type":"status","message":"thinking"}` + "\n\n"))
	})
})
