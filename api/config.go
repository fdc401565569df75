// Package api is a fiber server that stands in for the perfume storefront
// REST backend. It serves a seeded catalog, cookie sessions and a
// deterministic fragrance assistant, including the streamed chat endpoint.
package api

import "time"

// Config is the mock storefront configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":4000")
	ListenAddr string

	// ChunkDelay is the pause between streamed chat chunks. Zero streams as
	// fast as the client reads.
	ChunkDelay time.Duration
}
