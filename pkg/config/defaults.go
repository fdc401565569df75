package config

const (
	defaultBaseURL       = "http://localhost:4000/api"
	defaultClientTimeout = "30s"
	defaultMaxFrameBytes = 1 << 20

	defaultServerListen = ":4000"
	defaultChunkDelay   = "25ms"

	defaultRenderFormat = FormatMarkdown
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			BaseURL:       defaultBaseURL,
			Timeout:       defaultClientTimeout,
			MaxFrameBytes: defaultMaxFrameBytes,
		},
		Server: ServerConfig{
			Listen:     defaultServerListen,
			ChunkDelay: defaultChunkDelay,
		},
		Render: RenderConfig{
			Format: defaultRenderFormat,
		},
	}
}
