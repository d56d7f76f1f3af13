package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"sync"
	"time"
)

// StatusUpdater persists enrichment state transitions for videos.
type StatusUpdater interface {
	MarkProcessing(ctx context.Context, videoID string) error
	MarkReady(ctx context.Context, videoID string, meta Metadata) error
	MarkError(ctx context.Context, videoID, title string) error
}

// ThumbnailStore persists a thumbnail image and returns its public location.
type ThumbnailStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// EnricherConfig controls the concurrency characteristics of the enricher.
type EnricherConfig struct {
	QueueSize int
	Workers   int
}

// Enricher asynchronously resolves external metadata for submitted videos and
// walks each record from PENDING through PROCESSING to READY or ERROR. Fetch
// failures are terminal; retry is an explicit re-submission by the owner.
type Enricher struct {
	fetcher MetadataFetcher
	thumbs  ThumbnailStore
	updater StatusUpdater
	client  Doer
	logger  *slog.Logger

	jobs   chan enrichJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

type enrichJob struct {
	videoID  string
	sourceID string
}

// errorTitle replaces the pending placeholder when enrichment fails so status
// reads carry an explanation.
const errorTitle = "Video Unavailable: metadata could not be retrieved"

var errEnricherClosed = errors.New("enricher closed")

// NewEnricher constructs a background worker pool that enriches videos.
// The thumbnail store is optional; without one the remote thumbnail URL is
// stored as-is.
func NewEnricher(fetcher MetadataFetcher, thumbs ThumbnailStore, updater StatusUpdater, cfg EnricherConfig, logger *slog.Logger) *Enricher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	e := &Enricher{
		fetcher: fetcher,
		thumbs:  thumbs,
		updater: updater,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
		jobs:    make(chan enrichJob, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	e.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go e.worker()
	}

	return e
}

// Enqueue schedules enrichment for the supplied video.
func (e *Enricher) Enqueue(ctx context.Context, videoID, sourceID string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.ctx.Done():
		return errEnricherClosed
	default:
	}

	job := enrichJob{videoID: videoID, sourceID: sourceID}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.ctx.Done():
		return errEnricherClosed
	case e.jobs <- job:
		return nil
	}
}

// Shutdown waits for the worker pool to drain outstanding jobs.
func (e *Enricher) Shutdown(ctx context.Context) error {
	e.once.Do(func() {
		e.cancel()
		close(e.jobs)
	})

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (e *Enricher) worker() {
	defer e.wg.Done()

	for {
		select {
		case <-e.ctx.Done():
			return
		case job, ok := <-e.jobs:
			if !ok {
				return
			}
			e.handleJob(job)
		}
	}
}

func (e *Enricher) handleJob(job enrichJob) {
	if e.fetcher == nil || e.updater == nil {
		e.logger.Error("enricher missing dependencies", "hasFetcher", e.fetcher != nil, "hasUpdater", e.updater != nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Intermediate PROCESSING write lets concurrent status reads observe
	// forward progress before the fetch completes.
	if err := e.updater.MarkProcessing(ctx, job.videoID); err != nil {
		e.logger.Error("mark video processing", "videoId", job.videoID, "error", err)
		return
	}

	meta, err := e.fetcher.Fetch(ctx, job.sourceID)
	if err != nil {
		e.logger.Error("video enrichment failed", "videoId", job.videoID, "sourceId", job.sourceID, "error", err)
		e.recordFailure(job.videoID)
		return
	}

	if e.thumbs != nil && meta.ThumbnailURL != "" {
		if mirrored, err := e.mirrorThumbnail(ctx, job.videoID, meta.ThumbnailURL); err != nil {
			e.logger.Warn("thumbnail mirror failed, keeping remote url", "videoId", job.videoID, "error", err)
		} else {
			meta.ThumbnailURL = mirrored
		}
	}

	if err := e.recordSuccess(job.videoID, meta); err != nil {
		e.logger.Error("mark video ready", "videoId", job.videoID, "error", err)
		e.recordFailure(job.videoID)
	}
}

// mirrorThumbnail copies the remote thumbnail into our own object store so the
// catalog does not depend on the external CDN staying up.
func (e *Enricher) mirrorThumbnail(ctx context.Context, videoID, remoteURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return "", fmt.Errorf("build thumbnail request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download thumbnail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download thumbnail: unexpected status %d", resp.StatusCode)
	}

	key := path.Join(videoID, "thumbnail"+path.Ext(remoteURL))
	location, err := e.thumbs.Save(ctx, key, resp.Body)
	if err != nil {
		return "", fmt.Errorf("store thumbnail: %w", err)
	}
	return location, nil
}

func (e *Enricher) recordFailure(videoID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.updater.MarkError(ctx, videoID, errorTitle); err != nil {
		e.logger.Error("record enrichment failure", "videoId", videoID, "error", err)
	}
}

func (e *Enricher) recordSuccess(videoID string, meta Metadata) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return e.updater.MarkReady(ctx, videoID, meta)
}

var _ EnrichScheduler = (*Enricher)(nil)
