package repositories

import (
	"context"

	"github.com/reelpoint/backend/internal/models"
)

// RatingRepository exposes data access for per-user video ratings. Save is
// transactional: the rating upsert and the republished video aggregate
// commit together.
type RatingRepository interface {
	Save(ctx context.Context, rating models.Rating) error
	Find(ctx context.Context, videoID, userID string) (models.Rating, error)
}
