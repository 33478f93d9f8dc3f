package fetch

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedFetcher memoizes successful responses of another Fetcher for a
// fixed time. Failures are not cached.
type CachedFetcher struct {
	next  Fetcher
	cache *cache.Cache
}

// NewCachedFetcher wraps next with a cache whose entries live for ttl.
func NewCachedFetcher(next Fetcher, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Fetch returns the cached response for url or fetches and stores it.
// Callers must not modify the returned Body.
func (f *CachedFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	if v, ok := f.cache.Get(url); ok {
		return v.(*Response), nil
	}
	resp, err := f.next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	f.cache.SetDefault(url, resp)
	return resp, nil
}

// Len returns the number of cached responses.
func (f *CachedFetcher) Len() int {
	return f.cache.ItemCount()
}
