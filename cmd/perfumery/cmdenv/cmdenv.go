// Package cmdenv resolves the configuration, logger, storefront client and
// transcript store shared by the perfumery commands.
package cmdenv

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scentshop/perfumery/cmd/perfumery/sqlitepath"
	"github.com/scentshop/perfumery/pkg/cliui"
	"github.com/scentshop/perfumery/pkg/config"
	"github.com/scentshop/perfumery/pkg/dotdir"
	"github.com/scentshop/perfumery/pkg/logger"
	"github.com/scentshop/perfumery/pkg/storage"
	"github.com/scentshop/perfumery/pkg/storage/sqlite"
	"github.com/scentshop/perfumery/pkg/storefront"
)

// ClientFlags are the registry keys every storefront command binds.
var ClientFlags = []string{
	config.FlagBaseURL,
	config.FlagFallbackURL,
	config.FlagTimeout,
	config.FlagMaxFrameBytes,
}

// ClientOptions holds the storefront client flags of a command. The values
// are read back through viper once the flags are bound.
type ClientOptions struct {
	BaseURL       string
	FallbackURL   string
	Timeout       string
	MaxFrameBytes uint
}

// AddClientFlags registers ClientFlags on cmd.
func AddClientFlags(cmd *cobra.Command, o *ClientOptions) {
	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &o.BaseURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagFallbackURL, &o.FallbackURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &o.Timeout)
	config.AddUintFlag(cmd, config.Flags, config.FlagMaxFrameBytes, &o.MaxFrameBytes)
}

// Env is the resolved runtime of a single command invocation.
type Env struct {
	ConfigDir string
	Debug     bool
	Logger    *slog.Logger

	v      *viper.Viper
	dotdir *dotdir.Manager
}

// Load reads the global flags, initializes viper and binds the given flag
// registry keys so that flags > env > config.toml > defaults.
func Load(cmd *cobra.Command, flagKeys ...string) (*Env, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)

	return &Env{
		ConfigDir: configDir,
		Debug:     debug,
		Logger: logger.New(
			logger.WithDebug(debug),
			logger.WithPretty(cliui.IsTerminal(os.Stderr)),
		),
		v:      v,
		dotdir: dotdir.NewManager(),
	}, nil
}

// String returns a resolved config value by its dotted key.
func (e *Env) String(key string) string {
	return e.v.GetString(key)
}

// IncludeContext reports whether chat requests ask for catalog context.
func (e *Env) IncludeContext() bool {
	return e.v.GetBool("client.include_context")
}

// Plain reports whether replies written to f should skip markdown rendering.
func (e *Env) Plain(f *os.File) bool {
	return e.v.GetString("render.format") == config.FormatPlain || !cliui.IsTerminal(f)
}

// ClientConfig builds the storefront client configuration.
func (e *Env) ClientConfig() (storefront.Config, error) {
	timeout, err := time.ParseDuration(e.v.GetString("client.timeout"))
	if err != nil {
		return storefront.Config{}, fmt.Errorf("invalid client.timeout: %w", err)
	}

	return storefront.Config{
		BaseURL:       e.v.GetString("client.base_url"),
		FallbackURL:   e.v.GetString("client.fallback_url"),
		Timeout:       timeout,
		MaxFrameBytes: e.v.GetInt("client.max_frame_bytes"),
	}, nil
}

// NewClient creates a storefront client. When a session saved by login
// belongs to the same base URL, its cookies are loaded into the client.
func (e *Env) NewClient() (*storefront.Client, error) {
	cfg, err := e.ClientConfig()
	if err != nil {
		return nil, err
	}

	opts := []storefront.Option{storefront.WithLogger(e.Logger)}

	session, err := e.Session()
	if err != nil {
		return nil, err
	}
	if session != nil && strings.TrimRight(session.BaseURL, "/") == strings.TrimRight(cfg.BaseURL, "/") {
		opts = append(opts, storefront.WithCookies(toHTTPCookies(session.Cookies)))
	}

	return storefront.New(cfg, opts...)
}

// Session returns the saved login, or nil when nobody is logged in.
func (e *Env) Session() (*dotdir.SessionState, error) {
	session, err := e.dotdir.LoadSession(e.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return session, nil
}

// SaveSession persists the client's cookies and the logged in user.
func (e *Env) SaveSession(client *storefront.Client, user *storefront.User) error {
	state := &dotdir.SessionState{
		BaseURL: client.BaseURL(),
		Cookies: fromHTTPCookies(client.Cookies()),
		SavedAt: time.Now().UTC(),
	}
	if user != nil {
		state.User = &dotdir.SessionUser{
			ID:      user.ID,
			Email:   user.Email,
			Name:    user.Name,
			IsAdmin: user.IsAdmin(),
		}
	}

	if err := e.dotdir.SaveSession(state, e.ConfigDir); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// ClearSession forgets the saved login.
func (e *Env) ClearSession() error {
	return e.dotdir.ClearSession(e.ConfigDir)
}

// OpenHistory opens the chat transcript store.
func (e *Env) OpenHistory() (storage.Driver, error) {
	path, err := sqlitepath.ResolveSQLitePath(e.v.GetString("storage.sqlite_path"), e.ConfigDir)
	if err != nil {
		return nil, err
	}

	driver, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return nil, fmt.Errorf("opening chat history %s: %w", path, err)
	}
	e.Logger.Debug("using SQLite storage", "path", path)
	return driver, nil
}

func toHTTPCookies(saved []dotdir.SessionCookie) []*http.Cookie {
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		cookies = append(cookies, &http.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Expires: c.Expires,
		})
	}
	return cookies
}

func fromHTTPCookies(cookies []*http.Cookie) []dotdir.SessionCookie {
	saved := make([]dotdir.SessionCookie, 0, len(cookies))
	for _, c := range cookies {
		saved = append(saved, dotdir.SessionCookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Expires: c.Expires,
		})
	}
	return saved
}
