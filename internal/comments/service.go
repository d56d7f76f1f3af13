// Package comments manages viewer feedback attached to videos. Comments are
// one of the two flaggable content types, so the moderation engine depends on
// this package's existence checks.
package comments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reelpoint/backend/internal/identity"
	"github.com/reelpoint/backend/internal/models"
)

// CommentStore captures persistence for comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	Get(ctx context.Context, commentID string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, page, pageSize int) ([]models.Comment, int, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Comment, int, error)
}

// VideoGetter verifies the target video before a comment is attached.
type VideoGetter interface {
	Get(ctx context.Context, videoID string) (models.Video, error)
}

// Classifier assigns a sentiment label to comment text. A real model is out
// of scope; the default implementation returns a static label.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// StaticClassifier labels every comment with the same sentiment.
type StaticClassifier struct {
	Label string
}

// Classify returns the configured label, defaulting to neutral.
func (c StaticClassifier) Classify(context.Context, string) (string, error) {
	if c.Label == "" {
		return "neutral", nil
	}
	return c.Label, nil
}

// Service owns comment creation and listing.
type Service struct {
	store      CommentStore
	videos     VideoGetter
	classifier Classifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs the comment service.
func NewService(store CommentStore, videos VideoGetter, classifier Classifier, logger *slog.Logger) *Service {
	if classifier == nil {
		classifier = StaticClassifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		videos:     videos,
		classifier: classifier,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

const maxCommentLength = 1000

// Add attaches a comment to a READY, visible video.
func (s *Service) Add(ctx context.Context, videoID, text string, caller identity.Identity) (models.Comment, error) {
	if !caller.HasRole(models.RoleViewer) {
		return models.Comment{}, fmt.Errorf("%w: commenting requires an authenticated role", models.ErrForbidden)
	}

	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxCommentLength {
		return models.Comment{}, fmt.Errorf("%w: comment text must be 1-%d characters", models.ErrInvalidArgument, maxCommentLength)
	}

	video, err := s.videos.Get(ctx, videoID)
	if err != nil {
		return models.Comment{}, err
	}
	if video.Status != models.VideoStatusReady || video.IsDeleted {
		return models.Comment{}, fmt.Errorf("%w: video not available for comments", models.ErrNotFound)
	}

	sentiment, err := s.classifier.Classify(ctx, text)
	if err != nil {
		s.logger.Warn("sentiment classification failed", "videoId", videoID, "error", err)
		sentiment = ""
	}

	now := s.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		UserID:    caller.UserID,
		Text:      text,
		Sentiment: sentiment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Create(ctx, comment); err != nil {
		return models.Comment{}, fmt.Errorf("persist comment: %w", err)
	}
	return comment, nil
}

// Get loads a single comment; soft-deleted comments stay visible only to
// moderators.
func (s *Service) Get(ctx context.Context, commentID string, caller identity.Identity) (models.Comment, error) {
	comment, err := s.store.Get(ctx, commentID)
	if err != nil {
		return models.Comment{}, err
	}
	if comment.IsDeleted && !caller.IsModerator() {
		return models.Comment{}, fmt.Errorf("%w: comment %s", models.ErrNotFound, commentID)
	}
	return comment, nil
}

// Page bundles comments with the total match count.
type Page struct {
	Items []models.Comment
	Total int
}

// ListForVideo returns a video's visible comments, newest-first.
func (s *Service) ListForVideo(ctx context.Context, videoID string, page, pageSize int) (Page, error) {
	page, pageSize = clampPage(page, pageSize)
	items, total, err := s.store.ListForVideo(ctx, videoID, page, pageSize)
	if err != nil {
		return Page{}, fmt.Errorf("list comments for video: %w", err)
	}
	return Page{Items: items, Total: total}, nil
}

// ListByUser returns a user's visible comments, newest-first.
func (s *Service) ListByUser(ctx context.Context, userID string, page, pageSize int) (Page, error) {
	page, pageSize = clampPage(page, pageSize)
	items, total, err := s.store.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return Page{}, fmt.Errorf("list comments by user: %w", err)
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
