package repositories

import (
	"context"
	"time"

	"github.com/reelpoint/backend/internal/models"
)

// CommentRepository exposes data access for video comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	Get(ctx context.Context, commentID string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, page, pageSize int) ([]models.Comment, int, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Comment, int, error)
	SetDeleted(ctx context.Context, commentID string, deleted bool, at *time.Time) error
}
