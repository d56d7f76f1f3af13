package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fetcherStub struct {
	meta Metadata
	err  error
}

func (f fetcherStub) Fetch(context.Context, string) (Metadata, error) {
	return f.meta, f.err
}

type statusUpdaterStub struct {
	mu         sync.Mutex
	processing []string
	ready      map[string]Metadata
	failed     map[string]string
}

func newStatusUpdaterStub() *statusUpdaterStub {
	return &statusUpdaterStub{ready: make(map[string]Metadata), failed: make(map[string]string)}
}

func (s *statusUpdaterStub) MarkProcessing(_ context.Context, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing = append(s.processing, videoID)
	return nil
}

func (s *statusUpdaterStub) MarkReady(_ context.Context, videoID string, meta Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready[videoID] = meta
	return nil
}

func (s *statusUpdaterStub) MarkError(_ context.Context, videoID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed[videoID] = title
	return nil
}

func (s *statusUpdaterStub) readyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ready)
}

func (s *statusUpdaterStub) failedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.failed)
}

func TestEnricherSuccess(t *testing.T) {
	updater := newStatusUpdaterStub()
	fetcher := fetcherStub{meta: Metadata{Title: "Fetched Title", Description: "desc", Tags: []string{"music"}}}

	enricher := NewEnricher(fetcher, nil, updater, EnricherConfig{QueueSize: 1, Workers: 1}, testLogger())
	defer shutdownEnricher(t, enricher)

	if err := enricher.Enqueue(context.Background(), "video-1", "dQw4w9WgXcQ"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	waitForCondition(t, func() bool { return updater.readyCount() > 0 }, time.Second)

	updater.mu.Lock()
	defer updater.mu.Unlock()
	if len(updater.processing) != 1 || updater.processing[0] != "video-1" {
		t.Fatalf("expected processing transition first, got %v", updater.processing)
	}
	meta := updater.ready["video-1"]
	if meta.Title != "Fetched Title" {
		t.Fatalf("unexpected metadata recorded: %+v", meta)
	}
	if len(updater.failed) != 0 {
		t.Fatalf("expected no failure on success path")
	}
}

func TestEnricherFetchFailureMarksError(t *testing.T) {
	updater := newStatusUpdaterStub()
	fetcher := fetcherStub{err: errors.New("upstream down")}

	enricher := NewEnricher(fetcher, nil, updater, EnricherConfig{QueueSize: 1, Workers: 1}, testLogger())
	defer shutdownEnricher(t, enricher)

	if err := enricher.Enqueue(context.Background(), "video-2", "dQw4w9WgXcQ"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	waitForCondition(t, func() bool { return updater.failedCount() > 0 }, time.Second)

	updater.mu.Lock()
	defer updater.mu.Unlock()
	if title := updater.failed["video-2"]; title != errorTitle {
		t.Fatalf("expected failure title %q, got %q", errorTitle, title)
	}
	if len(updater.ready) != 0 {
		t.Fatalf("expected no ready transition on failure")
	}
}

func TestEnricherRejectsAfterShutdown(t *testing.T) {
	updater := newStatusUpdaterStub()
	enricher := NewEnricher(fetcherStub{}, nil, updater, EnricherConfig{QueueSize: 1, Workers: 1}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := enricher.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if err := enricher.Enqueue(context.Background(), "video-3", "dQw4w9WgXcQ"); err == nil {
		t.Fatalf("expected enqueue to fail after shutdown")
	}
}

func shutdownEnricher(t *testing.T, enricher *Enricher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = enricher.Shutdown(ctx)
}

func waitForCondition(t *testing.T, predicate func() bool, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if predicate() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}
