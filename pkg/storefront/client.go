// Package storefront is a client for the perfume storefront REST API.
//
// All calls share one cookie jar, so a Login is carried by every later
// request the way a browser sends credentials. A request that fails with a
// network error or a 5xx status is retried exactly once, against the
// fallback URL when one is configured.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/scentshop/perfumery/pkg/logger"
)

const (
	defaultTimeout = 30 * time.Second

	// maxErrorBody bounds how much of a failed response is read for its message.
	maxErrorBody = 64 * 1024
)

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, including the /api prefix.
	BaseURL string

	// FallbackURL receives the single retry. Empty retries BaseURL.
	FallbackURL string

	// Timeout bounds non-streaming requests. Streams are bounded only by
	// their context.
	Timeout time.Duration

	// MaxFrameBytes caps an unterminated chat stream frame. Zero is unbounded.
	MaxFrameBytes int
}

// Client talks to the storefront API.
type Client struct {
	baseURL     *url.URL
	fallbackURL *url.URL
	timeout     time.Duration
	maxFrame    int

	http    *http.Client
	jar     http.CookieJar
	cookies []*http.Cookie
	logger  *slog.Logger
}

// Option configures a Client created with New.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Jar is replaced by
// the Client's own cookie jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithCookies seeds the cookie jar, typically with a session saved by a
// previous Login.
func WithCookies(cookies []*http.Cookie) Option {
	return func(c *Client) {
		c.cookies = cookies
	}
}

// New creates a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("storefront: base URL is required")
	}

	base, err := parseBase(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:  base,
		timeout:  cfg.Timeout,
		maxFrame: cfg.MaxFrameBytes,
		http:     &http.Client{},
		logger:   logger.Nop(),
	}

	if cfg.FallbackURL != "" {
		c.fallbackURL, err = parseBase(cfg.FallbackURL)
		if err != nil {
			return nil, err
		}
	}

	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.resetJar(); err != nil {
		return nil, err
	}
	if len(c.cookies) > 0 {
		c.setCookies(c.cookies)
	}

	return c, nil
}

func parseBase(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("storefront: parsing base URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("storefront: base URL %q must be http or https", raw)
	}
	return u, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Cookies returns the session cookies the storefront has set.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

func (c *Client) resetJar() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("storefront: creating cookie jar: %w", err)
	}
	c.jar = jar
	c.http.Jar = jar
	return nil
}

// setCookies loads cookies for both the base and the fallback URL so the
// retry carries the same session.
func (c *Client) setCookies(cookies []*http.Cookie) {
	c.jar.SetCookies(c.baseURL, cookies)
	if c.fallbackURL != nil {
		c.jar.SetCookies(c.fallbackURL, cookies)
	}
}

// request describes one API call independent of the base URL it is sent to,
// so it can be replayed on retry.
type request struct {
	method string
	path   string
	query  url.Values
	body   []byte
	accept string
}

func newRequest(method, path string, body any) (*request, error) {
	r := &request{method: method, path: path, accept: "application/json"}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		r.body = data
	}
	return r, nil
}

func (r *request) build(ctx context.Context, base *url.URL) (*http.Request, error) {
	u := *base
	u.Path = strings.TrimRight(base.Path, "/") + r.path
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", r.accept)
	return req, nil
}

// send performs r with the retry policy and returns a 2xx response. Any
// other status is returned as an *APIError. The caller closes the body.
func (c *Client) send(ctx context.Context, r *request) (*http.Response, error) {
	resp, firstErr := c.attempt(ctx, c.baseURL, r)
	if firstErr == nil || !retryable(firstErr) || ctx.Err() != nil {
		return resp, firstErr
	}

	target := c.baseURL
	if c.fallbackURL != nil {
		target = c.fallbackURL
	}

	c.logger.Warn("storefront request failed, retrying",
		"method", r.method,
		"path", r.path,
		"target", target.Host,
		"error", firstErr,
	)

	resp, err := c.attempt(ctx, target, r)
	if err != nil {
		c.logger.Debug("storefront retry failed", "path", r.path, "error", err)
		return nil, firstErr
	}
	return resp, nil
}

func (c *Client) attempt(ctx context.Context, base *url.URL, r *request) (*http.Response, error) {
	req, err := r.build(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", r.method, r.path, err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &networkError{err: err}
	}

	c.logger.Debug("storefront request",
		"method", r.method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, newAPIError(resp.StatusCode, body)
	}

	return resp, nil
}

// networkError marks a failure to get any response at all.
type networkError struct {
	err error
}

func (e *networkError) Error() string { return e.err.Error() }
func (e *networkError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var netErr *networkError
	if errors.As(err, &netErr) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 500
}

// doJSON performs r within the client timeout and decodes a JSON response
// into out, which may be nil.
func (c *Client) doJSON(ctx context.Context, r *request, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.send(ctx, r)
	if err != nil {
		return fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", r.method, r.path, err)
	}
	return nil
}
