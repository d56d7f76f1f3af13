package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/reelpoint/backend/internal/accounts"
	"github.com/reelpoint/backend/internal/auth"
	"github.com/reelpoint/backend/internal/catalog"
	"github.com/reelpoint/backend/internal/comments"
	"github.com/reelpoint/backend/internal/config"
	"github.com/reelpoint/backend/internal/db"
	"github.com/reelpoint/backend/internal/handlers"
	"github.com/reelpoint/backend/internal/middleware"
	"github.com/reelpoint/backend/internal/models"
	"github.com/reelpoint/backend/internal/moderation"
	"github.com/reelpoint/backend/internal/ratings"
	"github.com/reelpoint/backend/internal/repositories"
	"github.com/reelpoint/backend/internal/storage"
)

// Dependencies bundles the wired application with the pieces the serve loop
// needs beyond the HTTP handlers.
type Dependencies struct {
	Handlers handlers.Dependencies
	Tokens   *auth.TokenManager
	Enricher *catalog.Enricher
}

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup drains the background enricher.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (Dependencies, func(context.Context) error, error) {
	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	ratingRows := repositories.NewPostgresRatingRepository(pool)
	commentRows := repositories.NewPostgresCommentRepository(pool)
	flags := repositories.NewPostgresFlagRepository(pool)

	var thumbs catalog.ThumbnailStore
	if cfg.ObjectStore.Bucket != "" {
		s3Store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return Dependencies{}, nil, err
		}
		thumbs = s3Store
	}

	fetcher := catalog.NewCachingFetcher(
		catalog.NewYouTubeFetcher(cfg.YouTubeAPIKey, cfg.MetadataTimeout),
		cfg.MetadataCacheTTL,
	)

	enricher := catalog.NewEnricher(fetcher, thumbs, videos, catalog.EnricherConfig{
		QueueSize: cfg.EnrichQueueSize,
		Workers:   cfg.EnrichWorkers,
	}, logger)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	targets := map[models.ContentType]moderation.Moderatable{
		models.ContentTypeVideo:   moderation.VideoTarget{Videos: videos},
		models.ContentTypeComment: moderation.CommentTarget{Comments: commentRows},
	}
	gate := moderation.NewGate(targets, logger)

	deps := Dependencies{
		Handlers: handlers.Dependencies{
			Accounts:    accounts.NewService(users, tokens),
			Videos:      catalog.NewService(videos, enricher, logger),
			Ratings:     ratings.NewAggregator(ratingRows, videos, logger),
			Comments:    comments.NewService(commentRows, videos, nil, logger),
			Flags:       moderation.NewWorkflow(flags, targets, gate, logger),
			Gate:        gate,
			Roles:       moderation.NewRoleService(users),
			AuthLimiter: middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),
			FlagLimiter: middleware.NewIPRateLimiter(30, time.Minute, 10, 10*time.Minute),
		},
		Tokens:   tokens,
		Enricher: enricher,
	}

	cleanup := func(shutdownCtx context.Context) error {
		return enricher.Shutdown(shutdownCtx)
	}

	return deps, cleanup, nil
}
