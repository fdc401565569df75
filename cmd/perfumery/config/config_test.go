package configcmder_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/scentshop/perfumery/cmd/perfumery/config"
	"github.com/scentshop/perfumery/pkg/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var tmpDir string

	execute := func(args ...string) (string, error) {
		cmd := configcmder.NewConfigCmd()
		cmd.PersistentFlags().String("config-dir", "", "Override path to .perfumery/ config directory")

		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs(append(args, "--config-dir", tmpDir))

		err := cmd.Execute()
		return out.String(), err
	}

	loadConfig := func() *config.Config {
		cfger, err := config.NewConfiger(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		cfg, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		return cfg
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			_, err := execute("set", "client.base_url", "https://shop.example.com/api")
			Expect(err).NotTo(HaveOccurred())

			_, err = os.Stat(filepath.Join(tmpDir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(loadConfig().Client.BaseURL).To(Equal("https://shop.example.com/api"))
		})

		It("rejects unknown keys", func() {
			_, err := execute("set", "invalid_key", "value")
			Expect(err).To(MatchError(ContainSubstring(`unknown config key: "invalid_key"`)))
		})

		It("requires exactly two arguments", func() {
			_, err := execute("set", "client.base_url")
			Expect(err).To(HaveOccurred())
		})

		It("rejects zero arguments", func() {
			_, err := execute("set")
			Expect(err).To(HaveOccurred())
		})

		It("rejects invalid durations", func() {
			_, err := execute("set", "client.timeout", "soon")
			Expect(err).To(MatchError(ContainSubstring("invalid value for client.timeout")))
		})

		It("rejects invalid booleans", func() {
			_, err := execute("set", "client.include_context", "maybe")
			Expect(err).To(HaveOccurred())
		})

		It("rejects unknown render formats", func() {
			_, err := execute("set", "render.format", "html")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			_, err := execute("set", "render.format", "plain")
			Expect(err).NotTo(HaveOccurred())

			out, err := execute("get", "render.format")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("plain"))
		})

		It("shows defaults for keys never set", func() {
			out, err := execute("get", "client.timeout")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("30s"))
		})

		It("marks empty keys as not set", func() {
			out, err := execute("get", "client.fallback_url")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("<not set>"))
		})

		It("rejects unknown keys", func() {
			_, err := execute("get", "invalid_key")
			Expect(err).To(HaveOccurred())
		})

		It("requires exactly one argument", func() {
			_, err := execute("get")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("list subcommand", func() {
		It("lists every key", func() {
			out, err := execute("list")
			Expect(err).NotTo(HaveOccurred())
			for _, key := range config.ValidConfigKeys() {
				Expect(out).To(ContainSubstring(key))
			}
		})

		It("shows set values", func() {
			_, err := execute("set", "server.listen", ":9000")
			Expect(err).NotTo(HaveOccurred())

			out, err := execute("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring(`":9000"`))
		})

		It("rejects any arguments", func() {
			_, err := execute("list", "extra")
			Expect(err).To(HaveOccurred())
		})
	})
})
