package handlers

import (
	"context"

	"github.com/reelpoint/backend/internal/accounts"
	"github.com/reelpoint/backend/internal/catalog"
	"github.com/reelpoint/backend/internal/comments"
	"github.com/reelpoint/backend/internal/identity"
	"github.com/reelpoint/backend/internal/models"
	"github.com/reelpoint/backend/internal/moderation"
	"github.com/reelpoint/backend/internal/ratings"
)

// AccountService captures the account operations required by the HTTP layer.
type AccountService interface {
	Register(ctx context.Context, req accounts.RegisterRequest) (models.User, error)
	Login(ctx context.Context, email, password string) (accounts.LoginResult, error)
	GetProfile(ctx context.Context, caller identity.Identity) (models.User, error)
	UpdateProfile(ctx context.Context, patch accounts.ProfilePatch, caller identity.Identity) (models.User, error)
}

// VideoService captures the video lifecycle operations required by the HTTP layer.
type VideoService interface {
	Submit(ctx context.Context, req catalog.SubmitRequest, caller identity.Identity) (models.Video, error)
	GetVideo(ctx context.Context, videoID string, caller identity.Identity) (models.Video, error)
	GetStatus(ctx context.Context, videoID string, caller identity.Identity) (models.VideoStatus, error)
	UpdateDetails(ctx context.Context, videoID string, patch catalog.UpdatePatch, caller identity.Identity) (models.Video, error)
	RecordView(ctx context.Context, videoID string) error
	ListLatest(ctx context.Context, page, pageSize int) (catalog.Page, error)
	ListByTag(ctx context.Context, tag string, page, pageSize int) (catalog.Page, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) (catalog.Page, error)
}

// RatingService captures the rating operations required by the HTTP layer.
type RatingService interface {
	Rate(ctx context.Context, videoID string, value int, caller identity.Identity) (models.Rating, error)
	GetSummary(ctx context.Context, videoID string, caller identity.Identity) (ratings.Summary, error)
}

// CommentService captures the comment operations required by the HTTP layer.
type CommentService interface {
	Add(ctx context.Context, videoID, text string, caller identity.Identity) (models.Comment, error)
	Get(ctx context.Context, commentID string, caller identity.Identity) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, page, pageSize int) (comments.Page, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) (comments.Page, error)
}

// FlagService captures the flag workflow operations required by the HTTP layer.
type FlagService interface {
	SubmitFlag(ctx context.Context, targetType models.ContentType, targetID string, reason models.FlagReason, reasonText string, caller identity.Identity) (models.Flag, error)
	ListFlags(ctx context.Context, status *models.FlagStatus, page, pageSize int, caller identity.Identity) (moderation.FlagPage, error)
	GetFlag(ctx context.Context, flagID string, caller identity.Identity) (models.Flag, error)
	StartReview(ctx context.Context, flagID string, caller identity.Identity) (models.Flag, error)
	ActionFlag(ctx context.Context, flagID string, newStatus models.FlagStatus, notes string, caller identity.Identity) (models.Flag, error)
}

// VisibilityGate captures direct soft-delete and restore operations.
type VisibilityGate interface {
	SoftDelete(ctx context.Context, targetType models.ContentType, targetID string, actor identity.Identity) error
	Restore(ctx context.Context, targetType models.ContentType, targetID string, actor identity.Identity) error
}

// RoleService captures role management operations.
type RoleService interface {
	AssignRole(ctx context.Context, userID string, role models.Role, caller identity.Identity) (models.User, error)
	RevokeRole(ctx context.Context, userID string, role models.Role, caller identity.Identity) (models.User, error)
	SearchUsers(ctx context.Context, query string, caller identity.Identity) ([]models.User, error)
}
