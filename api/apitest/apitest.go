// Package apitest runs the mock storefront on a loopback port for tests.
package apitest

import (
	"fmt"
	"net"

	"github.com/scentshop/perfumery/api"
	"github.com/scentshop/perfumery/pkg/logger"
)

// Server is a running mock storefront.
type Server struct {
	// URL is the API base URL, including the /api prefix.
	URL string

	server *api.Server
	done   chan error
}

// Start serves a freshly seeded mock storefront on 127.0.0.1.
func Start() (*Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listening: %w", err)
	}

	s := &Server{
		URL:    fmt.Sprintf("http://%s/api", ln.Addr().String()),
		server: api.NewServer(api.Config{}, logger.Nop()),
		done:   make(chan error, 1),
	}

	go func() {
		s.done <- s.server.Serve(ln)
	}()

	return s, nil
}

// Close stops the server and waits for it to exit.
func (s *Server) Close() error {
	if err := s.server.Shutdown(); err != nil {
		return err
	}
	return <-s.done
}
