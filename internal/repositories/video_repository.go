package repositories

import (
	"context"
	"time"

	"github.com/reelpoint/backend/internal/catalog"
	"github.com/reelpoint/backend/internal/models"
)

// VideoRepository exposes data access for catalog videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	Get(ctx context.Context, videoID string) (models.Video, error)
	UpdateDetails(ctx context.Context, video models.Video) error
	IncrementViews(ctx context.Context, videoID string) error
	MarkProcessing(ctx context.Context, videoID string) error
	MarkReady(ctx context.Context, videoID string, meta catalog.Metadata) error
	MarkError(ctx context.Context, videoID, title string) error
	SetDeleted(ctx context.Context, videoID string, deleted bool, at *time.Time) error
	ListLatest(ctx context.Context, page, pageSize int) ([]models.Video, int, error)
	ListByTag(ctx context.Context, tag string, page, pageSize int) ([]models.Video, int, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Video, int, error)
}
