// Package fetch retrieves remote resources for plugins that follow links or
// download images. Fetchers are bounded by a Config and report failures
// with the sentinel errors below.
package fetch

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for fetch operations.
var (
	ErrInvalidURL       = errors.New("invalid URL")
	ErrHTTPStatus       = errors.New("unexpected HTTP status")
	ErrContentTooLarge  = errors.New("content exceeds maximum size")
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrBrowserConnect   = errors.New("failed to connect to browser")
	ErrPageLoad         = errors.New("failed to load page")
)

// Defaults applied by Config.WithDefaults.
const (
	DefaultTimeout        = 5 * time.Second
	DefaultUserAgent      = "go-umt/1.0"
	DefaultMaxContentSize = 5 << 20
	DefaultMaxRedirects   = 3
)

// Response is a fetched resource.
type Response struct {
	// URL is the final URL after redirects.
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher retrieves a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (*Response, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) (*Response, error) {
	return f(ctx, url)
}

// Config bounds a fetch.
type Config struct {
	Timeout        time.Duration `yaml:"timeout"`
	UserAgent      string        `yaml:"userAgent"`
	MaxContentSize int64         `yaml:"maxContentSize"`
	MaxRedirects   int           `yaml:"maxRedirects"`
}

// DefaultConfig returns the default bounds.
func DefaultConfig() Config {
	return Config{
		Timeout:        DefaultTimeout,
		UserAgent:      DefaultUserAgent,
		MaxContentSize: DefaultMaxContentSize,
		MaxRedirects:   DefaultMaxRedirects,
	}
}

// WithDefaults fills zero fields from DefaultConfig. A negative
// MaxRedirects disables redirects.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.MaxContentSize <= 0 {
		c.MaxContentSize = d.MaxContentSize
	}
	if c.MaxRedirects == 0 {
		c.MaxRedirects = d.MaxRedirects
	}
	if c.MaxRedirects < 0 {
		c.MaxRedirects = 0
	}
	return c
}
