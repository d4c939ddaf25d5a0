// Package yahoo implements a QuoteSource against the public Yahoo Finance
// chart and search endpoints.
package yahoo

import (
	"slices"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// validPeriods are the chart ranges the endpoint accepts.
var validPeriods = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}

// DefaultPeriod is used when the caller does not specify one.
const DefaultPeriod = "1y"

// ValidPeriod reports whether p is an accepted chart range.
func ValidPeriod(p string) bool { return slices.Contains(validPeriods, p) }

// ValidPeriods returns the accepted chart ranges.
func ValidPeriods() []string { return slices.Clone(validPeriods) }

// Client talks to the Yahoo Finance endpoints. The zero value is not
// usable; call New.
type Client struct {
	live    *resty.Client // chart requests, always fresh
	cached  *resty.Client // search requests, cached to disk with daily expiry
	baseURL string
}

// config collects option settings; the clients are built once every option
// has been applied, so the result does not depend on option order.
type config struct {
	baseURL string
	timeout time.Duration
	noCache bool
}

// Option configures a Client.
type Option func(*config)

// WithBaseURL redirects all requests, for tests.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithTimeout bounds every request. The default is 10s: quote lookups are
// I/O bound and must not hang a caller forever.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithoutCache disables the daily disk cache on search requests.
func WithoutCache() Option {
	return func(c *config) { c.noCache = true }
}

// New creates a client with sane defaults.
func New(opts ...Option) *Client {
	cfg := config{baseURL: defaultBaseURL, timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}

	live := newResty(cfg.timeout)
	cached := live
	if !cfg.noCache {
		cached = newResty(cfg.timeout).SetTransport(newDailyCache())
	}
	return &Client{live: live, cached: cached, baseURL: cfg.baseURL}
}

func newResty(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "papertrade/1.0")
}
