package chatcmder

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scentshop/perfumery/pkg/assistant"
	"github.com/scentshop/perfumery/pkg/logger"
	"github.com/scentshop/perfumery/pkg/sse"
	"github.com/scentshop/perfumery/pkg/storefront"
)

type stubChatter struct {
	requests []storefront.ChatRequest
}

func (s *stubChatter) ChatOnce(_ context.Context, req storefront.ChatRequest) (*storefront.ChatReply, error) {
	s.requests = append(s.requests, req)
	return &storefront.ChatReply{Reply: "once:" + req.Query, Query: req.Query, Timestamp: time.Now()}, nil
}

func (s *stubChatter) StreamChat(_ context.Context, req storefront.ChatRequest, sink sse.Sink) error {
	s.requests = append(s.requests, req)
	for _, chunk := range []string{"echo: ", req.Query} {
		if err := sink(chunk); err != nil {
			return err
		}
	}
	return nil
}

var _ = Describe("NewChatCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := NewChatCmd()
		Expect(cmd.Use).To(Equal("chat"))
	})

	It("has --context flag from the registry", func() {
		cmd := NewChatCmd()
		flag := cmd.Flags().Lookup("context")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("c"))
		Expect(flag.DefValue).To(Equal("false"))
	})

	It("has --base-url flag with default value", func() {
		cmd := NewChatCmd()
		flag := cmd.Flags().Lookup("base-url")
		Expect(flag).NotTo(BeNil())
		Expect(flag.DefValue).To(Equal("http://localhost:4000/api"))
	})

	It("has --image, --no-stream, --plain and --session flags", func() {
		cmd := NewChatCmd()
		for _, name := range []string{"image", "no-stream", "plain", "session", "sqlite"} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
	})

	It("rejects positional arguments", func() {
		cmd := NewChatCmd()
		Expect(cmd.Args(cmd, []string{"hello"})).To(HaveOccurred())
	})
})

var _ = Describe("chat REPL", func() {
	var (
		out     *bytes.Buffer
		chatter *stubChatter
		conv    *assistant.Conversation
	)

	run := func(input string) error {
		c := &chatCommander{
			in:  strings.NewReader(input),
			out: out,
		}
		return c.repl(conv)
	}

	BeforeEach(func() {
		out = &bytes.Buffer{}
		chatter = &stubChatter{}
		conv = assistant.New(assistant.Config{
			Client: chatter,
			Out:    out,
			Plain:  true,
			Logger: logger.Nop(),
		}, nil)
	})

	It("greets and exits cleanly on end of input", func() {
		Expect(run("")).To(Succeed())
		Expect(out.String()).To(ContainSubstring(assistant.Greeting))
		Expect(chatter.requests).To(BeEmpty())
	})

	It("streams a reply for each question", func() {
		Expect(run("hello there\n\nsecond\n")).To(Succeed())
		Expect(chatter.requests).To(HaveLen(2))
		Expect(chatter.requests[0].Query).To(Equal("hello there"))
		Expect(out.String()).To(ContainSubstring("echo: hello there"))
		Expect(out.String()).To(ContainSubstring("echo: second"))
	})

	It("stops at /exit", func() {
		Expect(run("/exit\nnever asked\n")).To(Succeed())
		Expect(chatter.requests).To(BeEmpty())
	})

	It("lists and asks suggested questions", func() {
		Expect(run("/suggest\n/suggest 2\n")).To(Succeed())
		Expect(out.String()).To(ContainSubstring(assistant.SuggestedQuestions[0]))
		Expect(chatter.requests).To(HaveLen(1))
		Expect(chatter.requests[0].Query).To(Equal(assistant.SuggestedQuestions[1]))
	})

	It("reports an out of range suggestion without quitting", func() {
		Expect(run("/suggest 9\nstill here\n")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("pick a suggestion between 1 and 4"))
		Expect(chatter.requests).To(HaveLen(1))
	})

	It("toggles catalog context", func() {
		Expect(run("/context on\nwith\n/context off\nwithout\n")).To(Succeed())
		Expect(chatter.requests).To(HaveLen(2))
		Expect(chatter.requests[0].IncludeContext).To(BeTrue())
		Expect(chatter.requests[1].IncludeContext).To(BeFalse())
	})

	It("attaches an image to the next question only", func() {
		path := filepath.Join(GinkgoT().TempDir(), "bottle.png")
		Expect(os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o600)).To(Succeed())

		Expect(run("/image " + path + "\nwhat is this\nand now\n")).To(Succeed())
		Expect(chatter.requests).To(HaveLen(2))
		Expect(chatter.requests[0].Image).To(Equal("iVBORw0KGgo="))
		Expect(chatter.requests[1].Image).To(BeEmpty())
	})

	It("reports unknown commands", func() {
		Expect(run("/dance\n")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("unknown command /dance"))
	})
})
