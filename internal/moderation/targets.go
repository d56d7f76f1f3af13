package moderation

import (
	"context"
	"time"

	"github.com/reelpoint/backend/internal/models"
)

// ContentRef is the slice of a content item the moderation engine cares about.
type ContentRef struct {
	ID        string
	IsDeleted bool
}

// Moderatable exposes the operations the engine needs from a concrete content
// type. The workflow dispatches on the flag's target-type tag rather than on
// any inheritance relationship between videos and comments.
type Moderatable interface {
	Lookup(ctx context.Context, id string) (ContentRef, error)
	SetDeleted(ctx context.Context, id string, deleted bool, at *time.Time) error
}

// VideoLookup is the narrow video access the video target needs.
type VideoLookup interface {
	Get(ctx context.Context, videoID string) (models.Video, error)
	SetDeleted(ctx context.Context, videoID string, deleted bool, at *time.Time) error
}

// CommentLookup is the narrow comment access the comment target needs.
type CommentLookup interface {
	Get(ctx context.Context, commentID string) (models.Comment, error)
	SetDeleted(ctx context.Context, commentID string, deleted bool, at *time.Time) error
}

// VideoTarget adapts the video store to the Moderatable capability.
type VideoTarget struct {
	Videos VideoLookup
}

func (t VideoTarget) Lookup(ctx context.Context, id string) (ContentRef, error) {
	video, err := t.Videos.Get(ctx, id)
	if err != nil {
		return ContentRef{}, err
	}
	return ContentRef{ID: video.ID, IsDeleted: video.IsDeleted}, nil
}

func (t VideoTarget) SetDeleted(ctx context.Context, id string, deleted bool, at *time.Time) error {
	return t.Videos.SetDeleted(ctx, id, deleted, at)
}

// CommentTarget adapts the comment store to the Moderatable capability.
type CommentTarget struct {
	Comments CommentLookup
}

func (t CommentTarget) Lookup(ctx context.Context, id string) (ContentRef, error) {
	comment, err := t.Comments.Get(ctx, id)
	if err != nil {
		return ContentRef{}, err
	}
	return ContentRef{ID: comment.ID, IsDeleted: comment.IsDeleted}, nil
}

func (t CommentTarget) SetDeleted(ctx context.Context, id string, deleted bool, at *time.Time) error {
	return t.Comments.SetDeleted(ctx, id, deleted, at)
}
