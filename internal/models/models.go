package models

import "time"

// Role grants a user a tier of permissions within ReelPoint.
type Role string

const (
	RoleViewer    Role = "viewer"
	RoleCreator   Role = "creator"
	RoleModerator Role = "moderator"
)

// VideoStatus tracks a submitted video through its enrichment pipeline.
type VideoStatus string

const (
	VideoStatusPending    VideoStatus = "PENDING"
	VideoStatusProcessing VideoStatus = "PROCESSING"
	VideoStatusReady      VideoStatus = "READY"
	VideoStatusError      VideoStatus = "ERROR"
)

// PlaceholderTitle is stored on a video until enrichment fills in the real one.
const PlaceholderTitle = "Video Title Pending Processing"

// User represents an account within the ReelPoint platform.
type User struct {
	ID        string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Roles     []Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRole reports whether the user carries the given role.
func (u User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Video is a catalog entry referencing an externally hosted video.
type Video struct {
	ID                string
	OwnerID           string
	Title             string
	Description       string
	Tags              []string
	SourceID          string
	SourceURL         string
	Status            VideoStatus
	ThumbnailURL      string
	ViewCount         int64
	AverageRating     *float64
	TotalRatingsCount int
	CreatedAt         time.Time
	UpdatedAt         time.Time
	IsDeleted         bool
	DeletedAt         *time.Time
}

// Hidden reports whether the video has been soft-deleted.
func (v Video) Hidden() bool { return v.IsDeleted }

// Comment is viewer feedback attached to a video.
type Comment struct {
	ID        string
	VideoID   string
	UserID    string
	Text      string
	Sentiment string
	CreatedAt time.Time
	UpdatedAt time.Time
	IsDeleted bool
	DeletedAt *time.Time
}

// Hidden reports whether the comment has been soft-deleted.
func (c Comment) Hidden() bool { return c.IsDeleted }

// Rating records a single user's 1-5 score for a video. At most one rating
// exists per (video, user) pair; later submissions overwrite it.
type Rating struct {
	VideoID   string
	UserID    string
	Value     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContentType distinguishes the kinds of content a flag can target.
type ContentType string

const (
	ContentTypeVideo   ContentType = "video"
	ContentTypeComment ContentType = "comment"
)

// Valid reports whether the content type is one the moderation engine knows.
func (c ContentType) Valid() bool {
	return c == ContentTypeVideo || c == ContentTypeComment
}

// FlagReason is the standardized reason a reporter supplies when flagging.
type FlagReason string

const (
	FlagReasonSpam          FlagReason = "spam"
	FlagReasonInappropriate FlagReason = "inappropriate"
	FlagReasonHarassment    FlagReason = "harassment"
	FlagReasonCopyright     FlagReason = "copyright"
	FlagReasonOther         FlagReason = "other"
)

// Valid reports whether the reason code is a known value.
func (r FlagReason) Valid() bool {
	switch r {
	case FlagReasonSpam, FlagReasonInappropriate, FlagReasonHarassment, FlagReasonCopyright, FlagReasonOther:
		return true
	}
	return false
}

// FlagStatus tracks a moderation flag through its review lifecycle.
type FlagStatus string

const (
	FlagStatusOpen        FlagStatus = "open"
	FlagStatusUnderReview FlagStatus = "under_review"
	FlagStatusApproved    FlagStatus = "approved"
	FlagStatusRejected    FlagStatus = "rejected"
)

// Resolved reports whether the status is terminal.
func (s FlagStatus) Resolved() bool {
	return s == FlagStatusApproved || s == FlagStatusRejected
}

// Flag is a user-submitted request for moderator review of a content item.
type Flag struct {
	ID             string
	TargetType     ContentType
	TargetID       string
	UserID         string
	ReasonCode     FlagReason
	ReasonText     string
	Status         FlagStatus
	ModeratorID    string
	ModeratorNotes string
	ResolvedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
