// Package moderation owns the flagging and review workflow: viewers flag
// videos or comments, moderators inspect the inbox and resolve each flag, and
// an approval soft-deletes the offending content through the visibility gate.
package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reelpoint/backend/internal/identity"
	"github.com/reelpoint/backend/internal/logging"
	"github.com/reelpoint/backend/internal/models"
)

// FlagStore captures persistence for moderation flags.
type FlagStore interface {
	Create(ctx context.Context, flag models.Flag) error
	Get(ctx context.Context, flagID string) (models.Flag, error)
	List(ctx context.Context, status *models.FlagStatus, page, pageSize int) ([]models.Flag, int, error)
	// StartReview moves an open flag to under review, conditional on the
	// current status still being open. It returns models.ErrConflict when
	// the condition no longer holds.
	StartReview(ctx context.Context, flagID, moderatorID string, updatedAt time.Time) error
	// Resolve transitions the flag to a terminal status, conditional on the
	// current status still being open or under review. It returns
	// models.ErrConflict when the condition no longer holds.
	Resolve(ctx context.Context, flagID string, status models.FlagStatus, moderatorID, notes string, resolvedAt time.Time) error
}

const maxReasonLength = 500

// Workflow drives the flag state machine.
type Workflow struct {
	flags   FlagStore
	targets map[models.ContentType]Moderatable
	gate    *Gate
	logger  *slog.Logger
	now     func() time.Time
}

// NewWorkflow constructs the flag workflow over the per-type targets and the
// visibility gate used on approval.
func NewWorkflow(flags FlagStore, targets map[models.ContentType]Moderatable, gate *Gate, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{
		flags:   flags,
		targets: targets,
		gate:    gate,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SubmitFlag creates an OPEN flag after verifying the target exists and has
// not already been removed.
func (w *Workflow) SubmitFlag(ctx context.Context, targetType models.ContentType, targetID string, reason models.FlagReason, reasonText string, caller identity.Identity) (models.Flag, error) {
	if !caller.HasRole(models.RoleViewer) {
		return models.Flag{}, fmt.Errorf("%w: flagging requires an authenticated role", models.ErrForbidden)
	}
	if !targetType.Valid() {
		return models.Flag{}, fmt.Errorf("%w: unknown content type %q", models.ErrInvalidArgument, targetType)
	}
	if !reason.Valid() {
		return models.Flag{}, fmt.Errorf("%w: unknown reason code %q", models.ErrInvalidArgument, reason)
	}
	reasonText = strings.TrimSpace(reasonText)
	if len(reasonText) > maxReasonLength {
		return models.Flag{}, fmt.Errorf("%w: reason text exceeds %d characters", models.ErrInvalidArgument, maxReasonLength)
	}

	target := w.targets[targetType]
	ref, err := target.Lookup(ctx, targetID)
	if err != nil {
		return models.Flag{}, err
	}
	if ref.IsDeleted {
		return models.Flag{}, fmt.Errorf("%w: %s %s", models.ErrNotFound, targetType, targetID)
	}

	now := w.now()
	flag := models.Flag{
		ID:         uuid.NewString(),
		TargetType: targetType,
		TargetID:   targetID,
		UserID:     caller.UserID,
		ReasonCode: reason,
		ReasonText: reasonText,
		Status:     models.FlagStatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := w.flags.Create(ctx, flag); err != nil {
		return models.Flag{}, fmt.Errorf("persist flag: %w", err)
	}
	return flag, nil
}

// FlagPage bundles flags with the total match count.
type FlagPage struct {
	Items []models.Flag
	Total int
}

// ListFlags returns the moderator inbox, newest-first, optionally narrowed to
// one status.
func (w *Workflow) ListFlags(ctx context.Context, status *models.FlagStatus, page, pageSize int, caller identity.Identity) (FlagPage, error) {
	if !caller.IsModerator() {
		return FlagPage{}, fmt.Errorf("%w: the flag inbox requires the moderator role", models.ErrForbidden)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := w.flags.List(ctx, status, page, pageSize)
	if err != nil {
		return FlagPage{}, fmt.Errorf("list flags: %w", err)
	}
	return FlagPage{Items: items, Total: total}, nil
}

// GetFlag returns a single flag to a moderator.
func (w *Workflow) GetFlag(ctx context.Context, flagID string, caller identity.Identity) (models.Flag, error) {
	if !caller.IsModerator() {
		return models.Flag{}, fmt.Errorf("%w: flag details require the moderator role", models.ErrForbidden)
	}
	return w.flags.Get(ctx, flagID)
}

// StartReview claims an open flag for the calling moderator. The intermediate
// status is optional; ActionFlag accepts flags straight from open as well.
func (w *Workflow) StartReview(ctx context.Context, flagID string, caller identity.Identity) (models.Flag, error) {
	if !caller.IsModerator() {
		return models.Flag{}, fmt.Errorf("%w: flag review requires the moderator role", models.ErrForbidden)
	}

	flag, err := w.flags.Get(ctx, flagID)
	if err != nil {
		return models.Flag{}, err
	}
	if flag.Status != models.FlagStatusOpen {
		return models.Flag{}, fmt.Errorf("%w: flag is not open", models.ErrConflict)
	}

	updatedAt := w.now()
	if err := w.flags.StartReview(ctx, flagID, caller.UserID, updatedAt); err != nil {
		return models.Flag{}, err
	}

	flag.Status = models.FlagStatusUnderReview
	flag.ModeratorID = caller.UserID
	flag.UpdatedAt = updatedAt
	return flag, nil
}

// ActionFlag resolves an open flag. Exactly one of two concurrent resolvers
// succeeds; the loser observes ErrConflict from the conditional store update.
// Approval soft-deletes the flagged content as part of the same logical
// operation so an approved flag never leaves content visible.
func (w *Workflow) ActionFlag(ctx context.Context, flagID string, newStatus models.FlagStatus, notes string, caller identity.Identity) (models.Flag, error) {
	ctx, span := logging.StartSpan(ctx, "moderation.action_flag")
	defer span.End()

	if !caller.IsModerator() {
		return models.Flag{}, fmt.Errorf("%w: flag actions require the moderator role", models.ErrForbidden)
	}
	if newStatus != models.FlagStatusApproved && newStatus != models.FlagStatusRejected {
		return models.Flag{}, fmt.Errorf("%w: action must be approved or rejected", models.ErrInvalidArgument)
	}

	flag, err := w.flags.Get(ctx, flagID)
	if err != nil {
		return models.Flag{}, err
	}
	if flag.Status.Resolved() {
		return models.Flag{}, fmt.Errorf("%w: flag already resolved", models.ErrConflict)
	}

	resolvedAt := w.now()
	if err := w.flags.Resolve(ctx, flagID, newStatus, caller.UserID, notes, resolvedAt); err != nil {
		return models.Flag{}, err
	}

	flag.Status = newStatus
	flag.ModeratorID = caller.UserID
	flag.ModeratorNotes = notes
	flag.ResolvedAt = &resolvedAt
	flag.UpdatedAt = resolvedAt

	if newStatus == models.FlagStatusApproved {
		if err := w.gate.deleteApproved(ctx, flag.TargetType, flag.TargetID); err != nil {
			// The flag stays resolved; soft-delete is idempotent, so the
			// moderator repairs by deleting the target directly.
			w.logger.Error("soft-delete after flag approval failed",
				"flagId", flag.ID, "targetType", string(flag.TargetType), "targetId", flag.TargetID, "error", err)
			return flag, fmt.Errorf("flag approved but content removal failed: %w", err)
		}
	}

	return flag, nil
}
