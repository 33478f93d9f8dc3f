package fetch

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-umt/internal/hints"
	"github.com/alnah/go-umt/internal/process"
)

// BrowserFetcher loads pages in headless Chrome and returns the rendered
// DOM, for sites that build their content with JavaScript. Rod downloads
// Chromium on first use unless ROD_BROWSER_BIN points at a local binary.
type BrowserFetcher struct {
	cfg Config

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewBrowserFetcher creates a BrowserFetcher. The browser starts lazily on
// the first Fetch.
func NewBrowserFetcher(cfg Config) *BrowserFetcher {
	return &BrowserFetcher{cfg: cfg.WithDefaults()}
}

// ensureBrowser lazily launches and connects to the browser.
func (f *BrowserFetcher) ensureBrowser() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		return f.browser, nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v%s", ErrBrowserConnect, err, hints.ForBrowserConnect())
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v%s", ErrBrowserConnect, err, hints.ForBrowserConnect())
	}
	f.launcher = l
	f.browser = browser
	return browser, nil
}

// Fetch navigates to url, waits for the load event and returns the page's
// serialized DOM as text/html.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	if err := ValidateURL(url); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := f.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer page.Close()

	timeout := f.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	page = page.Timeout(timeout)

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPageLoad, url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPageLoad, url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPageLoad, url, err)
	}
	if int64(len(html)) > f.cfg.MaxContentSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrContentTooLarge, f.cfg.MaxContentSize)
	}

	final := url
	if info, err := page.Info(); err == nil && info.URL != "" {
		final = info.URL
	}

	return &Response{
		URL:         final,
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(html),
	}, nil
}

// Close shuts the browser down and kills its process tree.
func (f *BrowserFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser == nil {
		return nil
	}
	err := f.browser.Close()
	if pid := f.launcher.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	f.launcher.Kill()
	f.browser = nil
	f.launcher = nil
	return err
}
