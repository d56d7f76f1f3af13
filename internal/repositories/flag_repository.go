package repositories

import (
	"context"
	"time"

	"github.com/reelpoint/backend/internal/models"
)

// FlagRepository exposes data access for moderation flags.
type FlagRepository interface {
	Create(ctx context.Context, flag models.Flag) error
	Get(ctx context.Context, flagID string) (models.Flag, error)
	List(ctx context.Context, status *models.FlagStatus, page, pageSize int) ([]models.Flag, int, error)
	StartReview(ctx context.Context, flagID, moderatorID string, updatedAt time.Time) error
	Resolve(ctx context.Context, flagID string, status models.FlagStatus, moderatorID, notes string, resolvedAt time.Time) error
}
