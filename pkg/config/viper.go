package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/scentshop/perfumery/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the PERFUMERY_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (PERFUMERY_CLIENT_BASE_URL, PERFUMERY_SERVER_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: PERFUMERY_CLIENT_BASE_URL, PERFUMERY_STORAGE_SQLITE_PATH, etc.
	v.SetEnvPrefix("PERFUMERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("client.base_url", d.Client.BaseURL)
	v.SetDefault("client.fallback_url", d.Client.FallbackURL)
	v.SetDefault("client.timeout", d.Client.Timeout)
	v.SetDefault("client.include_context", d.Client.IncludeContext)
	v.SetDefault("client.max_frame_bytes", d.Client.MaxFrameBytes)

	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)

	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.chunk_delay", d.Server.ChunkDelay)

	v.SetDefault("render.format", d.Render.Format)
}
