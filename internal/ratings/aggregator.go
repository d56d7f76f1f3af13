// Package ratings aggregates per-user video ratings into the published
// average. The aggregate is recomputed from every rating row on each write
// rather than maintained incrementally; the store performs the upsert and
// the recompute in a single transaction so concurrent raters never publish
// a stale snapshot.
package ratings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/reelpoint/backend/internal/identity"
	"github.com/reelpoint/backend/internal/models"
)

// RatingStore captures persistence for individual rating rows. Save must
// upsert the row and republish the video's average and count atomically, in
// one transaction, so the published aggregate always reflects every
// committed rating regardless of how concurrent writers interleave.
type RatingStore interface {
	Save(ctx context.Context, rating models.Rating) error
	Find(ctx context.Context, videoID, userID string) (models.Rating, error)
}

// VideoStore captures the video operations the aggregator needs.
type VideoStore interface {
	Get(ctx context.Context, videoID string) (models.Video, error)
}

// Summary is the published aggregate plus, when known, the caller's own vote.
type Summary struct {
	VideoID      string
	Average      *float64
	Count        int
	CallerRating *int
}

// Aggregator recomputes and republishes a video's average rating and count
// whenever a rating is created or changed.
type Aggregator struct {
	ratings RatingStore
	videos  VideoStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewAggregator constructs the rating aggregator.
func NewAggregator(ratings RatingStore, videos VideoStore, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		ratings: ratings,
		videos:  videos,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Rate upserts the caller's rating for the video and republishes the
// aggregate. A repeat rating from the same user overwrites, never duplicates.
func (a *Aggregator) Rate(ctx context.Context, videoID string, value int, caller identity.Identity) (models.Rating, error) {
	if !caller.HasRole(models.RoleViewer) {
		return models.Rating{}, fmt.Errorf("%w: rating requires an authenticated role", models.ErrForbidden)
	}
	if value < 1 || value > 5 {
		return models.Rating{}, fmt.Errorf("%w: rating must be between 1 and 5", models.ErrInvalidArgument)
	}

	video, err := a.videos.Get(ctx, videoID)
	if err != nil {
		return models.Rating{}, err
	}
	if video.Status != models.VideoStatusReady || video.IsDeleted {
		return models.Rating{}, fmt.Errorf("%w: video not available for rating", models.ErrNotFound)
	}

	now := a.now()
	rating := models.Rating{
		VideoID:   videoID,
		UserID:    caller.UserID,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, err := a.ratings.Find(ctx, videoID, caller.UserID); err == nil {
		rating.CreatedAt = existing.CreatedAt
	}

	if err := a.ratings.Save(ctx, rating); err != nil {
		return models.Rating{}, fmt.Errorf("save rating: %w", err)
	}

	return rating, nil
}

// GetSummary returns the published aggregate and, when a caller identity is
// supplied, that caller's own rating.
func (a *Aggregator) GetSummary(ctx context.Context, videoID string, caller identity.Identity) (Summary, error) {
	video, err := a.videos.Get(ctx, videoID)
	if err != nil {
		return Summary{}, err
	}
	if video.IsDeleted && !caller.IsModerator() {
		return Summary{}, fmt.Errorf("%w: video %s", models.ErrNotFound, videoID)
	}

	summary := Summary{
		VideoID: videoID,
		Average: video.AverageRating,
		Count:   video.TotalRatingsCount,
	}

	if !caller.IsZero() {
		own, err := a.ratings.Find(ctx, videoID, caller.UserID)
		switch {
		case err == nil:
			v := own.Value
			summary.CallerRating = &v
		case errors.Is(err, models.ErrNotFound):
			// Caller has not rated this video.
		default:
			return Summary{}, fmt.Errorf("load caller rating: %w", err)
		}
	}

	return summary, nil
}
