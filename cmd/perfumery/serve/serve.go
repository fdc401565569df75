// Package servecmder provides the serve command that runs the mock
// storefront backend.
package servecmder

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scentshop/perfumery/api"
	"github.com/scentshop/perfumery/pkg/cliui"
	"github.com/scentshop/perfumery/pkg/config"
	"github.com/scentshop/perfumery/pkg/logger"
)

type serveCommander struct {
	listen     string
	chunkDelay string
	logFile    string
	debug      bool

	viper  *viper.Viper
	logger *slog.Logger
}

const serveLongDesc string = `Run a local mock of the perfume storefront backend.

The mock serves the demo catalog, accounts and AI endpoints under /api,
including the streamed chat endpoint, so every perfumery command can be
tried without the real storefront. State is kept in memory and reset on
restart. Demo accounts use the password "password", for example
admin@example.com and john@example.com.

Examples:
  perfumery serve
  perfumery serve --listen :9000 --chunk-delay 0s
  perfumery serve --log-file storefront.log

Edits to server.chunk_delay in config.toml apply while the server runs.`

const serveShortDesc string = "Run a mock storefront backend"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagListen,
				config.FlagChunkDelay,
			})
			cmder.listen = v.GetString("server.listen")
			cmder.chunkDelay = v.GetString("server.chunk_delay")
			cmder.viper = v

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagChunkDelay, &cmder.chunkDelay)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *serveCommander) run() error {
	delay, err := parseChunkDelay(c.chunkDelay)
	if err != nil {
		return err
	}

	closeLog, err := c.setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	server := api.NewServer(api.Config{
		ListenAddr: c.listen,
		ChunkDelay: delay,
	}, c.logger)
	c.watchConfig(server)

	fmt.Printf("\n  %s Mock storefront on %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(c.listen),
		cliui.DimStyle.Render("(Ctrl+C to stop)"),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}

func parseChunkDelay(raw string) (time.Duration, error) {
	delay, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid chunk delay %q: %w", raw, err)
	}
	if delay < 0 {
		return 0, fmt.Errorf("chunk delay must not be negative, got %s", delay)
	}
	return delay, nil
}

// watchConfig follows config.toml and applies chunk delay edits to the
// running server. Without a config file there is nothing to watch.
func (c *serveCommander) watchConfig(server *api.Server) {
	if c.viper == nil || c.viper.ConfigFileUsed() == "" {
		return
	}

	c.viper.OnConfigChange(func(e fsnotify.Event) {
		c.reloadChunkDelay(server, e)
	})
	c.viper.WatchConfig()
}

func (c *serveCommander) reloadChunkDelay(server *api.Server, e fsnotify.Event) {
	if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	raw := c.viper.GetString("server.chunk_delay")
	delay, err := parseChunkDelay(raw)
	if err != nil {
		c.logger.Warn("ignoring config change", "file", e.Name, "error", err)
		return
	}

	if delay == server.ChunkDelay() {
		return
	}
	server.SetChunkDelay(delay)
	c.logger.Info("chunk delay updated", "file", e.Name, "chunk_delay", delay)
}

// setupLogger logs to stderr and, with --log-file, to a JSON file as well.
func (c *serveCommander) setupLogger() (func(), error) {
	console := logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(cliui.IsTerminal(os.Stderr)),
	)

	if c.logFile == "" {
		c.logger = console
		return func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	c.logger = logger.Multi(console, logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
		logger.WithWriter(f),
	))
	return func() { _ = f.Close() }, nil
}
