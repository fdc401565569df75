package servecmder

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scentshop/perfumery/api"
	"github.com/scentshop/perfumery/pkg/config"
	"github.com/scentshop/perfumery/pkg/logger"
)

var _ = Describe("chunk delay reload", func() {
	var (
		dir    string
		cmder  *serveCommander
		server *api.Server
	)

	writeDelay := func(delay string) fsnotify.Event {
		path := filepath.Join(dir, "config.toml")
		body := "version = 0\n\n[server]\nchunk_delay = \"" + delay + "\"\n"
		Expect(os.WriteFile(path, []byte(body), 0o600)).To(Succeed())
		Expect(cmder.viper.ReadInConfig()).To(Succeed())
		return fsnotify.Event{Name: path, Op: fsnotify.Write}
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())

		cmder = &serveCommander{viper: v, logger: logger.Nop()}
		server = api.NewServer(api.Config{ChunkDelay: 25 * time.Millisecond}, logger.Nop())
	})

	It("applies a valid delay to the running server", func() {
		cmder.reloadChunkDelay(server, writeDelay("5ms"))
		Expect(server.ChunkDelay()).To(Equal(5 * time.Millisecond))
	})

	It("keeps the current delay when the new value is invalid", func() {
		cmder.reloadChunkDelay(server, writeDelay("-1s"))
		Expect(server.ChunkDelay()).To(Equal(25 * time.Millisecond))
	})

	It("ignores events that do not change the file contents", func() {
		ev := writeDelay("5ms")
		ev.Op = fsnotify.Chmod
		cmder.reloadChunkDelay(server, ev)
		Expect(server.ChunkDelay()).To(Equal(25 * time.Millisecond))
	})
})

var _ = DescribeTable("parseChunkDelay",
	func(raw string, want time.Duration, ok bool) {
		got, err := parseChunkDelay(raw)
		if !ok {
			Expect(err).To(HaveOccurred())
			return
		}
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(want))
	},
	Entry("zero", "0s", time.Duration(0), true),
	Entry("milliseconds", "40ms", 40*time.Millisecond, true),
	Entry("negative", "-5ms", time.Duration(0), false),
	Entry("garbage", "soon", time.Duration(0), false),
)
