package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// HTTPFetcher fetches resources with net/http.
type HTTPFetcher struct {
	client *http.Client
	cfg    Config
}

// Compile-time interface checks
var (
	_ Fetcher = (*HTTPFetcher)(nil)
	_ Fetcher = (*CachedFetcher)(nil)
	_ Fetcher = (*BrowserFetcher)(nil)
	_ Fetcher = FetcherFunc(nil)
)

// NewHTTPFetcher creates an HTTPFetcher bounded by cfg.
func NewHTTPFetcher(cfg Config) *HTTPFetcher {
	cfg = cfg.WithDefaults()
	return &HTTPFetcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) > cfg.MaxRedirects {
					return fmt.Errorf("%w: more than %d", ErrTooManyRedirects, cfg.MaxRedirects)
				}
				return nil
			},
		},
	}
}

// Config returns the effective bounds.
func (f *HTTPFetcher) Config() Config {
	return f.cfg
}

// Fetch performs a GET request. Non-2xx responses fail with ErrHTTPStatus;
// bodies larger than MaxContentSize fail with ErrContentTooLarge, whether
// announced by Content-Length or discovered while reading.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", ErrHTTPStatus, rawURL, resp.Status)
	}
	if resp.ContentLength > f.cfg.MaxContentSize {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrContentTooLarge, resp.ContentLength, f.cfg.MaxContentSize)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxContentSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	if int64(len(body)) > f.cfg.MaxContentSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrContentTooLarge, f.cfg.MaxContentSize)
	}

	return &Response{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q in %s", ErrInvalidURL, u.Scheme, rawURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host in %s", ErrInvalidURL, rawURL)
	}
	return nil
}
