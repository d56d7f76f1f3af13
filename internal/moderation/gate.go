package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/reelpoint/backend/internal/identity"
	"github.com/reelpoint/backend/internal/models"
)

// Gate owns soft-deletion and restoration of content, and the visibility rule
// every read path applies.
type Gate struct {
	targets map[models.ContentType]Moderatable
	logger  *slog.Logger
	now     func() time.Time
}

// NewGate constructs the visibility gate over the per-type targets.
func NewGate(targets map[models.ContentType]Moderatable, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		targets: targets,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SoftDelete hides the target from non-moderators. Deleting already-deleted
// content is a no-op success.
func (g *Gate) SoftDelete(ctx context.Context, targetType models.ContentType, targetID string, actor identity.Identity) error {
	if !actor.IsModerator() {
		return fmt.Errorf("%w: soft-delete requires the moderator role", models.ErrForbidden)
	}
	return g.setDeleted(ctx, targetType, targetID, true)
}

// Restore makes previously deleted content visible again. Restoring visible
// content is a no-op success.
func (g *Gate) Restore(ctx context.Context, targetType models.ContentType, targetID string, actor identity.Identity) error {
	if !actor.IsModerator() {
		return fmt.Errorf("%w: restore requires the moderator role", models.ErrForbidden)
	}
	return g.setDeleted(ctx, targetType, targetID, false)
}

// deleteApproved is the internal entry used when a flag approval triggers the
// soft-delete; the moderator identity was validated by the flag action.
func (g *Gate) deleteApproved(ctx context.Context, targetType models.ContentType, targetID string) error {
	return g.setDeleted(ctx, targetType, targetID, true)
}

func (g *Gate) setDeleted(ctx context.Context, targetType models.ContentType, targetID string, deleted bool) error {
	target, ok := g.targets[targetType]
	if !ok {
		return fmt.Errorf("%w: unknown content type %q", models.ErrInvalidArgument, targetType)
	}

	ref, err := target.Lookup(ctx, targetID)
	if err != nil {
		return err
	}
	if ref.IsDeleted == deleted {
		return nil
	}

	var at *time.Time
	if deleted {
		now := g.now()
		at = &now
	}

	if err := target.SetDeleted(ctx, targetID, deleted, at); err != nil {
		// A concurrent toggle to the same value is still a success.
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("toggle deletion for %s %s: %w", targetType, targetID, err)
	}

	g.logger.Info("content visibility changed", "targetType", string(targetType), "targetId", targetID, "deleted", deleted)
	return nil
}

// Visible is satisfied by content types that can be soft-deleted.
type Visible interface {
	Hidden() bool
}

// FilterVisible drops soft-deleted items for non-moderators. Moderators see
// everything and are expected to treat deleted items specially.
func FilterVisible[T Visible](items []T, caller identity.Identity) []T {
	if caller.IsModerator() {
		return items
	}
	visible := make([]T, 0, len(items))
	for _, item := range items {
		if item.Hidden() {
			continue
		}
		visible = append(visible, item)
	}
	return visible
}
