// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the perfume catalog and the fragrance assistant as tools.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scentshop/perfumery/pkg/storefront"
	"github.com/scentshop/perfumery/pkg/utils"
)

// Catalog is the read side of the storefront. *storefront.Client satisfies
// it, as does the mock backend's in-memory store.
type Catalog interface {
	ListPerfumes(ctx context.Context, filter storefront.PerfumeFilter) ([]storefront.Perfume, error)
	GetPerfume(ctx context.Context, id string) (*storefront.Perfume, error)
	ListBrands(ctx context.Context) ([]storefront.Brand, error)
	Summary(ctx context.Context, id string, forceRefresh bool) (*storefront.SummaryResult, error)
	SimilarPerfumes(ctx context.Context, id string, forceRefresh bool) (*storefront.SimilarResult, error)
}

// Assistant answers a question in one piece.
type Assistant interface {
	ChatOnce(ctx context.Context, req storefront.ChatRequest) (*storefront.ChatReply, error)
}

type Config struct {
	// Catalog backs the browsing tools.
	Catalog Catalog

	// Assistant enables the ask_assistant tool (optional).
	Assistant Assistant

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the catalog tools.
func NewServer(c Config) (*Server, error) {
	if c.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "perfumery",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        searchToolName,
		Description: searchDescription,
	}, s.handleSearch)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        perfumeToolName,
		Description: perfumeDescription,
	}, s.handlePerfume)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        brandsToolName,
		Description: brandsDescription,
	}, s.handleBrands)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        summaryToolName,
		Description: summaryDescription,
	}, s.handleSummary)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        similarToolName,
		Description: similarDescription,
	}, s.handleSimilar)

	if c.Assistant != nil {
		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        askToolName,
			Description: askDescription,
		}, s.handleAsk)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Connect starts a session over t and returns without waiting for it to end.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}

// Run serves a single session over t until the client disconnects or ctx
// is cancelled.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	return s.mcpServer.Run(ctx, t)
}
