package linkcrawl

import (
	"slices"
	"sync"
	"time"

	"github.com/alnah/go-umt/fetch"
)

// Config controls which links are followed.
type Config struct {
	// CurrentDomainOnly restricts crawling to the host of
	// Context.CurrentDomain, when one is set.
	CurrentDomainOnly bool `yaml:"currentDomainOnly"`
	// AllowedDomains, when non-empty, admits only hosts containing one of
	// the entries.
	AllowedDomains []string `yaml:"allowedDomains"`
	// BlockedDomains rejects hosts containing any of the entries. Checked
	// before everything else.
	BlockedDomains []string `yaml:"blockedDomains"`
	// MaxDepth is the deepest document nesting whose links are followed:
	// 1 follows links of the parsed document only, 0 disables crawling.
	MaxDepth int `yaml:"maxDepth"`
	// Fetch bounds each request.
	Fetch fetch.Config `yaml:"fetch"`
}

// DefaultBlockedDomains keeps the crawler off the local machine.
var DefaultBlockedDomains = []string{"localhost", "127.0.0.1", "0.0.0.0"}

// DefaultConfig returns the default crawl configuration.
func DefaultConfig() Config {
	return Config{
		BlockedDomains: slices.Clone(DefaultBlockedDomains),
		MaxDepth:       1,
		Fetch:          fetch.DefaultConfig(),
	}
}

// Context is the crawl state shared by every link hook of one engine. It
// is safe for concurrent use.
type Context struct {
	StartedAt time.Time
	// CurrentDomain is the URL of the document being crawled. It scopes
	// CurrentDomainOnly and resolves relative links.
	CurrentDomain string

	mu        sync.Mutex
	processed map[string]struct{}
}

// NewContext creates crawl state rooted at currentDomain, which may be
// empty.
func NewContext(currentDomain string) *Context {
	return &Context{
		StartedAt:     time.Now(),
		CurrentDomain: currentDomain,
		processed:     make(map[string]struct{}),
	}
}

// claim records url as processed and reports whether it was new.
func (c *Context) claim(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.processed == nil {
		c.processed = make(map[string]struct{})
	}
	if _, seen := c.processed[url]; seen {
		return false
	}
	c.processed[url] = struct{}{}
	return true
}

// Processed reports whether url was already claimed.
func (c *Context) Processed(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.processed[normalizeURL(url)]
	return ok
}

// ProcessedURLs returns the claimed URLs in sorted order.
func (c *Context) ProcessedURLs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	urls := make([]string, 0, len(c.processed))
	for u := range c.processed {
		urls = append(urls, u)
	}
	slices.Sort(urls)
	return urls
}
