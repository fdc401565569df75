package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent perfumery configuration stored as
// config.toml in the .perfumery/ directory.
type Config struct {
	Version int           `toml:"version"`
	Client  ClientConfig  `toml:"client"`
	Storage StorageConfig `toml:"storage"`
	Server  ServerConfig  `toml:"server"`
	Render  RenderConfig  `toml:"render"`
}

// ClientConfig holds settings for commands that talk to the storefront API.
// URLs include the /api path prefix.
type ClientConfig struct {
	BaseURL        string `toml:"base_url,omitempty"`
	FallbackURL    string `toml:"fallback_url,omitempty"`
	Timeout        string `toml:"timeout,omitempty"`
	IncludeContext bool   `toml:"include_context,omitempty"`
	MaxFrameBytes  uint   `toml:"max_frame_bytes,omitempty"`
}

// StorageConfig holds chat transcript storage settings. An empty path means
// the transcript database lives in the resolved .perfumery/ directory.
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// ServerConfig holds settings for the local mock storefront.
type ServerConfig struct {
	Listen     string `toml:"listen,omitempty"`
	ChunkDelay string `toml:"chunk_delay,omitempty"`
}

// RenderConfig controls how assistant replies are printed.
type RenderConfig struct {
	Format string `toml:"format,omitempty"`
}

const (
	FormatMarkdown = "markdown"
	FormatPlain    = "plain"
)

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func durationSetter(key string, field func(c *Config) *string) func(c *Config, v string) error {
	return func(c *Config, v string) error {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		*field(c) = v
		return nil
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"client.base_url": {
		get: func(c *Config) string { return c.Client.BaseURL },
		set: func(c *Config, v string) error { c.Client.BaseURL = v; return nil },
	},
	"client.fallback_url": {
		get: func(c *Config) string { return c.Client.FallbackURL },
		set: func(c *Config, v string) error { c.Client.FallbackURL = v; return nil },
	},
	"client.timeout": {
		get: func(c *Config) string { return c.Client.Timeout },
		set: durationSetter("client.timeout", func(c *Config) *string { return &c.Client.Timeout }),
	},
	"client.include_context": {
		get: func(c *Config) string { return strconv.FormatBool(c.Client.IncludeContext) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for client.include_context: %w", err)
			}
			c.Client.IncludeContext = b
			return nil
		},
	},
	"client.max_frame_bytes": {
		get: func(c *Config) string {
			if c.Client.MaxFrameBytes == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Client.MaxFrameBytes), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for client.max_frame_bytes: %w", err)
			}
			c.Client.MaxFrameBytes = uint(n)
			return nil
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"server.listen": {
		get: func(c *Config) string { return c.Server.Listen },
		set: func(c *Config, v string) error { c.Server.Listen = v; return nil },
	},
	"server.chunk_delay": {
		get: func(c *Config) string { return c.Server.ChunkDelay },
		set: durationSetter("server.chunk_delay", func(c *Config) *string { return &c.Server.ChunkDelay }),
	},
	"render.format": {
		get: func(c *Config) string { return c.Render.Format },
		set: func(c *Config, v string) error {
			if v != FormatMarkdown && v != FormatPlain {
				return fmt.Errorf("invalid value for render.format: %q (expected %s or %s)", v, FormatMarkdown, FormatPlain)
			}
			c.Render.Format = v
			return nil
		},
	},
}
