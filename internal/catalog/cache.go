package catalog

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	metadata Metadata
	expires  time.Time
}

// CachingFetcher wraps another MetadataFetcher with a TTL-based in-memory cache.
type CachingFetcher struct {
	base MetadataFetcher
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingFetcher returns a fetcher that caches lookups for the provided TTL.
func NewCachingFetcher(base MetadataFetcher, ttl time.Duration) *CachingFetcher {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingFetcher{
		base:  base,
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// Fetch returns cached metadata when available, otherwise it delegates to the
// underlying fetcher and stores the result.
func (c *CachingFetcher) Fetch(ctx context.Context, sourceID string) (Metadata, error) {
	if c == nil || c.base == nil {
		return Metadata{}, ErrFetcherUnavailable
	}

	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[sourceID]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.metadata, nil
	}

	metadata, err := c.base.Fetch(ctx, sourceID)
	if err != nil {
		return Metadata{}, err
	}

	c.mu.Lock()
	c.items[sourceID] = cacheEntry{metadata: metadata, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return metadata, nil
}
