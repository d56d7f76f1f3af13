// Package identity carries the authenticated caller's user id and role set
// through the request context. The identity is supplied by the auth layer and
// is never mutated by the services that consume it.
package identity

import (
	"context"

	"github.com/reelpoint/backend/internal/models"
)

// Identity describes the authenticated caller of an operation.
type Identity struct {
	UserID string
	Roles  []models.Role
}

// IsZero reports whether no caller identity is present.
func (id Identity) IsZero() bool {
	return id.UserID == ""
}

// HasRole reports whether the caller holds the given role. The moderator role
// implies all lower tiers.
func (id Identity) HasRole(role models.Role) bool {
	for _, r := range id.Roles {
		if r == role || r == models.RoleModerator {
			return true
		}
	}
	return false
}

// IsModerator reports whether the caller holds the moderator role.
func (id Identity) IsModerator() bool {
	for _, r := range id.Roles {
		if r == models.RoleModerator {
			return true
		}
	}
	return false
}

type ctxKey struct{}

// WithIdentity stores the caller identity on the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	if ctx == nil || id.IsZero() {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the caller identity stored on the context, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && !id.IsZero()
}
