package gemini

import (
	"log/slog"
	"time"
)

// Defaults applied by New when no option overrides them.
const (
	// DefaultBaseURL is the production Generative Language endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultTimeout bounds a single request round trip.
	DefaultTimeout = 30 * time.Second
)

// Supported API versions.
const (
	APIVersionV1     = "v1"
	APIVersionV1Beta = "v1beta"

	// DefaultAPIVersion is where the generation endpoints live.
	DefaultAPIVersion = "v1beta"
)

// Config holds the assembled client configuration. Most callers never
// touch it directly and use New with Options instead.
type Config struct {
	// APIKey authenticates every request as a key query parameter.
	APIKey Secret

	// BaseURL is the API origin without a trailing slash or version.
	BaseURL string

	// APIVersion selects the URL version segment, "v1" or "v1beta".
	APIVersion string

	// HTTPClient performs the round trips. Defaults to a client with
	// connection timeouts tuned for this API.
	HTTPClient HTTPDoer

	// Timeout bounds each request round trip.
	Timeout time.Duration

	// PoolSize bounds concurrent dispatch when the client owns its
	// pool. Ignored when Pool is set.
	PoolSize int

	// Pool, when non-nil, is a shared dispatch pool. The client will
	// not close a shared pool on Close; its creator does that.
	Pool *Pool

	// Logger receives diagnostics. Defaults to slog.Default.
	Logger *slog.Logger
}

// Option configures the client at construction time.
type Option func(*Config)

// WithBaseURL overrides the API origin, e.g. to point at a test server.
func WithBaseURL(u string) Option {
	return func(c *Config) { c.BaseURL = u }
}

// WithAPIVersion selects the URL version segment, APIVersionV1 or
// APIVersionV1Beta.
func WithAPIVersion(v string) Option {
	return func(c *Config) { c.APIVersion = v }
}

// WithHTTPClient injects a custom HTTP transport.
func WithHTTPClient(hc HTTPDoer) Option {
	return func(c *Config) { c.HTTPClient = hc }
}

// WithTimeout overrides the per-request round-trip bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithPoolSize sets the dispatch concurrency bound for a client-owned
// pool.
func WithPoolSize(n int) Option {
	return func(c *Config) { c.PoolSize = n }
}

// WithPool attaches a shared dispatch pool. Close on the client leaves
// a shared pool running.
func WithPool(p *Pool) Option {
	return func(c *Config) { c.Pool = p }
}

// WithLogger routes diagnostics to l instead of slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}
