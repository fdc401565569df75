package historycmder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/scentshop/perfumery/pkg/storage"
	"github.com/scentshop/perfumery/pkg/storage/sqlite"
)

var _ = Describe("history command", func() {
	var (
		configDir string
		dbPath    string
	)

	execute := func(args ...string) (string, error) {
		root := &cobra.Command{Use: "perfumery", SilenceUsage: true, SilenceErrors: true}
		root.PersistentFlags().Bool("debug", false, "")
		root.PersistentFlags().String("config-dir", configDir, "")
		root.AddCommand(NewHistoryCmd())

		out := &bytes.Buffer{}
		root.SetOut(out)
		root.SetErr(io.Discard)
		root.SetArgs(append(args, "--sqlite", dbPath))

		err := root.Execute()
		return out.String(), err
	}

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		dbPath = filepath.Join(GinkgoT().TempDir(), "history.db")
	})

	It("reports an empty history", func() {
		out, err := execute("history", "list")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("No conversations yet."))
	})

	Context("with recorded conversations", func() {
		BeforeEach(func() {
			ctx := context.Background()
			driver, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer driver.Close()

			created := time.Now().Add(-2 * time.Hour)
			for i, title := range []string{"Recommend a perfume for summer", "Best perfumes for evening wear"} {
				id := []string{"s1", "s2"}[i]
				at := created.Add(time.Duration(i) * time.Hour)
				Expect(driver.CreateSession(ctx, &storage.Session{ID: id, Title: title, CreatedAt: at, UpdatedAt: at})).To(Succeed())
				Expect(driver.AppendTurn(ctx, &storage.Turn{ID: id + "-q", SessionID: id, Role: storage.RoleUser, Content: title, CreatedAt: at})).To(Succeed())
				Expect(driver.AppendTurn(ctx, &storage.Turn{ID: id + "-a", SessionID: id, Role: storage.RoleAssistant, Content: "Try **Aventus**.", CreatedAt: at, Cancelled: i == 1})).To(Succeed())
			}
		})

		It("lists newest first", func() {
			out, err := execute("history", "list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("2 messages"))

			first := bytes.Index([]byte(out), []byte("Best perfumes for evening wear"))
			second := bytes.Index([]byte(out), []byte("Recommend a perfume for summer"))
			Expect(first).To(BeNumerically(">=", 0))
			Expect(first).To(BeNumerically("<", second))
		})

		It("honours --limit", func() {
			out, err := execute("history", "list", "-n", "1")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("evening wear"))
			Expect(out).NotTo(ContainSubstring("summer"))
		})

		It("prints a transcript", func() {
			out, err := execute("history", "show", "s2", "--plain")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Best perfumes for evening wear"))
			Expect(out).To(ContainSubstring("Try **Aventus**."))
			Expect(out).To(ContainSubstring("(cancelled)"))
		})

		It("prints a transcript as JSON", func() {
			out, err := execute("history", "show", "s1", "--json")
			Expect(err).NotTo(HaveOccurred())

			var doc struct {
				ID    string         `json:"id"`
				Title string         `json:"title"`
				Turns []storage.Turn `json:"turns"`
			}
			Expect(json.Unmarshal([]byte(out), &doc)).To(Succeed())
			Expect(doc.ID).To(Equal("s1"))
			Expect(doc.Turns).To(HaveLen(2))
			Expect(doc.Turns[0].Role).To(Equal(storage.RoleUser))
		})

		It("reports an unknown session", func() {
			_, err := execute("history", "show", "nope")
			Expect(err).To(MatchError("no conversation with id nope"))
		})
	})
})

var _ = Describe("ago", func() {
	DescribeTable("formats elapsed time coarsely",
		func(d time.Duration, expected string) {
			Expect(ago(d)).To(Equal(expected))
		},
		Entry("seconds", 30*time.Second, "just now"),
		Entry("minutes", 5*time.Minute, "5m ago"),
		Entry("hours", 3*time.Hour, "3h ago"),
		Entry("days", 50*time.Hour, "2d ago"),
	)
})
