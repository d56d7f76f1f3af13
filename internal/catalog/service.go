package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reelpoint/backend/internal/identity"
	"github.com/reelpoint/backend/internal/logging"
	"github.com/reelpoint/backend/internal/models"
)

// VideoStore captures the persistence operations the lifecycle manager needs.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	Get(ctx context.Context, videoID string) (models.Video, error)
	UpdateDetails(ctx context.Context, video models.Video) error
	IncrementViews(ctx context.Context, videoID string) error
	ListLatest(ctx context.Context, page, pageSize int) ([]models.Video, int, error)
	ListByTag(ctx context.Context, tag string, page, pageSize int) ([]models.Video, int, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Video, int, error)
}

// EnrichScheduler hands a persisted submission off for background enrichment.
type EnrichScheduler interface {
	Enqueue(ctx context.Context, videoID, sourceID string) error
}

// SubmitRequest is the payload accepted by Submit. The title is optional; a
// placeholder is stored until enrichment resolves the real one.
type SubmitRequest struct {
	URL   string
	Title string
}

// UpdatePatch applies partial edits to a video. Nil fields are left untouched.
type UpdatePatch struct {
	Title       *string
	Description *string
	Tags        *[]string
}

// Service owns the video lifecycle state machine.
type Service struct {
	store     VideoStore
	scheduler EnrichScheduler
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs the lifecycle manager.
func NewService(store VideoStore, scheduler EnrichScheduler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		scheduler: scheduler,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates the submission, persists a PENDING record and schedules
// enrichment. The PENDING video is returned synchronously; completion is only
// observable through subsequent status reads.
func (s *Service) Submit(ctx context.Context, req SubmitRequest, caller identity.Identity) (models.Video, error) {
	ctx, span := logging.StartSpan(ctx, "catalog.submit")
	defer span.End()

	if !caller.HasRole(models.RoleCreator) {
		return models.Video{}, fmt.Errorf("%w: submitting requires the creator role", models.ErrForbidden)
	}

	sourceID := ExtractSourceID(strings.TrimSpace(req.URL))
	if sourceID == "" {
		return models.Video{}, fmt.Errorf("%w: unable to extract video id from url", models.ErrInvalidArgument)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = models.PlaceholderTitle
	}

	now := s.now()
	video := models.Video{
		ID:        uuid.NewString(),
		OwnerID:   caller.UserID,
		Title:     title,
		Tags:      []string{},
		SourceID:  sourceID,
		SourceURL: req.URL,
		Status:    models.VideoStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Create(ctx, video); err != nil {
		return models.Video{}, fmt.Errorf("persist submission: %w", err)
	}

	// Fire and forget: enrichment outcome is reported via GetStatus, never
	// through this call.
	if err := s.scheduler.Enqueue(ctx, video.ID, video.SourceID); err != nil {
		s.logger.Error("schedule enrichment", "videoId", video.ID, "error", err)
	}

	return video, nil
}

// GetVideo returns the full record, hiding soft-deleted content from
// non-moderators.
func (s *Service) GetVideo(ctx context.Context, videoID string, caller identity.Identity) (models.Video, error) {
	video, err := s.store.Get(ctx, videoID)
	if err != nil {
		return models.Video{}, err
	}
	if video.IsDeleted && !caller.IsModerator() {
		return models.Video{}, fmt.Errorf("%w: video %s", models.ErrNotFound, videoID)
	}
	return video, nil
}

// GetStatus reports the lifecycle status to the owner or a moderator.
func (s *Service) GetStatus(ctx context.Context, videoID string, caller identity.Identity) (models.VideoStatus, error) {
	video, err := s.store.Get(ctx, videoID)
	if err != nil {
		return "", err
	}
	if caller.UserID != video.OwnerID && !caller.IsModerator() {
		return "", fmt.Errorf("%w: status is visible to the owner or moderators", models.ErrForbidden)
	}
	return video.Status, nil
}

// UpdateDetails applies the provided fields and refreshes the modification
// timestamp. An empty patch succeeds and returns the unmodified record.
func (s *Service) UpdateDetails(ctx context.Context, videoID string, patch UpdatePatch, caller identity.Identity) (models.Video, error) {
	video, err := s.store.Get(ctx, videoID)
	if err != nil {
		return models.Video{}, err
	}
	if caller.UserID != video.OwnerID && !caller.IsModerator() {
		return models.Video{}, fmt.Errorf("%w: only the owner or a moderator may edit a video", models.ErrForbidden)
	}

	if patch.Title == nil && patch.Description == nil && patch.Tags == nil {
		return video, nil
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if len(title) < 3 {
			return models.Video{}, fmt.Errorf("%w: title must be at least 3 characters", models.ErrInvalidArgument)
		}
		video.Title = title
	}
	if patch.Description != nil {
		video.Description = *patch.Description
	}
	if patch.Tags != nil {
		video.Tags = *patch.Tags
	}
	video.UpdatedAt = s.now()

	if err := s.store.UpdateDetails(ctx, video); err != nil {
		return models.Video{}, err
	}
	return video, nil
}

// RecordView bumps the view counter. Views on missing, deleted or not-READY
// videos are silently dropped so error codes never leak existence.
func (s *Service) RecordView(ctx context.Context, videoID string) error {
	if err := s.store.IncrementViews(ctx, videoID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// Page bundles a slice of videos with the total match count for pagination.
type Page struct {
	Items []models.Video
	Total int
}

// ListLatest returns READY, visible videos newest-first.
func (s *Service) ListLatest(ctx context.Context, page, pageSize int) (Page, error) {
	page, pageSize = clampPage(page, pageSize)
	items, total, err := s.store.ListLatest(ctx, page, pageSize)
	if err != nil {
		return Page{}, fmt.Errorf("list latest videos: %w", err)
	}
	return Page{Items: items, Total: total}, nil
}

// ListByTag returns READY, visible videos carrying the tag, newest-first.
func (s *Service) ListByTag(ctx context.Context, tag string, page, pageSize int) (Page, error) {
	if strings.TrimSpace(tag) == "" {
		return Page{}, fmt.Errorf("%w: tag must not be empty", models.ErrInvalidArgument)
	}
	page, pageSize = clampPage(page, pageSize)
	items, total, err := s.store.ListByTag(ctx, tag, page, pageSize)
	if err != nil {
		return Page{}, fmt.Errorf("list videos by tag: %w", err)
	}
	return Page{Items: items, Total: total}, nil
}

// ListByUser returns a user's READY, visible videos, newest-first.
func (s *Service) ListByUser(ctx context.Context, userID string, page, pageSize int) (Page, error) {
	page, pageSize = clampPage(page, pageSize)
	items, total, err := s.store.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return Page{}, fmt.Errorf("list videos by user: %w", err)
	}
	return Page{Items: items, Total: total}, nil
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

