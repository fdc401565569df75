package api

import (
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	perfumerymcp "github.com/scentshop/perfumery/api/mcp"
)

// sessionCookie is the name of the cookie carrying the session token.
const sessionCookie = "session"

// Server is the mock storefront API server.
type Server struct {
	config Config
	store  *store
	logger *slog.Logger
	app    *fiber.App

	// chunkDelay is the live pause between streamed chunks in nanoseconds.
	chunkDelay atomic.Int64
}

// NewServer creates a new mock storefront seeded with the demo catalog.
// Routes are mounted under /api, matching the default client base URL.
func NewServer(config Config, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		store:  newStore(),
		logger: logger,
		app:    app,
	}
	s.chunkDelay.Store(int64(config.ChunkDelay))

	app.Use(s.logRequests)

	r := app.Group("/api")
	r.Get("/ping", s.handlePing)

	r.Get("/perfumes", s.handleListPerfumes)
	r.Get("/perfumes/:id", s.handleGetPerfume)
	r.Post("/perfumes/:id/comments", s.requireSession, s.handleAddComment)
	r.Get("/brands", s.handleListBrands)

	r.Post("/login", s.handleLogin)
	r.Post("/register", s.handleRegister)
	r.Post("/logout", s.handleLogout)
	r.Get("/profile", s.requireSession, s.handleGetProfile)
	r.Put("/profile", s.requireSession, s.handleUpdateProfile)
	r.Put("/profile/password", s.requireSession, s.handleChangePassword)

	r.Get("/ai/summary/:id", s.handleSummary)
	r.Get("/ai/similar/:id", s.handleSimilar)
	r.Post("/ai/chat", s.handleChat)

	catalog := storeCatalog{store: s.store}
	tools, err := perfumerymcp.NewServer(perfumerymcp.Config{
		Catalog:   catalog,
		Assistant: catalog,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("MCP endpoint disabled", "error", err)
	} else {
		r.All("/mcp", adaptor.HTTPHandler(tools.Handler()))
	}

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting storefront API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Serve runs the API server on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting storefront API server",
		"listen", ln.Addr().String(),
	)
	return s.app.Listener(ln)
}

// ChunkDelay returns the current pause between streamed chat chunks.
func (s *Server) ChunkDelay() time.Duration {
	return time.Duration(s.chunkDelay.Load())
}

// SetChunkDelay changes the pause between streamed chat chunks. Streams in
// flight pick up the new value on their next chunk.
func (s *Server) SetChunkDelay(d time.Duration) {
	s.chunkDelay.Store(int64(max(d, 0)))
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return err
}
