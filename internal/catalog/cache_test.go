package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type countingFetcher struct {
	mu    sync.Mutex
	calls int
	meta  Metadata
	err   error
}

func (f *countingFetcher) Fetch(context.Context, string) (Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.meta, f.err
}

func (f *countingFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestCachingFetcherServesFromCache(t *testing.T) {
	base := &countingFetcher{meta: Metadata{Title: "Cached"}}
	cache := NewCachingFetcher(base, time.Minute)

	for i := 0; i < 3; i++ {
		meta, err := cache.Fetch(context.Background(), "abc")
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if meta.Title != "Cached" {
			t.Fatalf("unexpected metadata: %+v", meta)
		}
	}

	if base.callCount() != 1 {
		t.Fatalf("expected a single upstream call, got %d", base.callCount())
	}
}

func TestCachingFetcherDoesNotCacheErrors(t *testing.T) {
	base := &countingFetcher{err: errors.New("boom")}
	cache := NewCachingFetcher(base, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cache.Fetch(context.Background(), "abc"); err == nil {
			t.Fatalf("expected error on fetch %d", i)
		}
	}

	if base.callCount() != 2 {
		t.Fatalf("expected errors to bypass the cache, got %d calls", base.callCount())
	}
}

func TestCachingFetcherDistinctKeys(t *testing.T) {
	base := &countingFetcher{meta: Metadata{Title: "X"}}
	cache := NewCachingFetcher(base, time.Minute)

	if _, err := cache.Fetch(context.Background(), "one"); err != nil {
		t.Fatalf("fetch one: %v", err)
	}
	if _, err := cache.Fetch(context.Background(), "two"); err != nil {
		t.Fatalf("fetch two: %v", err)
	}

	if base.callCount() != 2 {
		t.Fatalf("expected per-key lookups, got %d calls", base.callCount())
	}
}
