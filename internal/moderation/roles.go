package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/reelpoint/backend/internal/identity"
	"github.com/reelpoint/backend/internal/models"
)

// UserStore captures the user operations role management needs.
type UserStore interface {
	FindByID(ctx context.Context, userID string) (models.User, error)
	SetRoles(ctx context.Context, userID string, roles []models.Role, updatedAt time.Time) error
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
}

// RoleService mutates user role sets. Both mutations are idempotent:
// assigning a held role or revoking an absent one succeeds without effect.
type RoleService struct {
	users UserStore
	now   func() time.Time
}

// NewRoleService constructs the role manager.
func NewRoleService(users UserStore) *RoleService {
	return &RoleService{
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// AssignRole adds a role to the user's set.
func (s *RoleService) AssignRole(ctx context.Context, userID string, role models.Role, caller identity.Identity) (models.User, error) {
	if !caller.IsModerator() {
		return models.User{}, fmt.Errorf("%w: role assignment requires the moderator role", models.ErrForbidden)
	}
	if !validRole(role) {
		return models.User{}, fmt.Errorf("%w: unknown role %q", models.ErrInvalidArgument, role)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if user.HasRole(role) {
		return user, nil
	}

	user.Roles = append(user.Roles, role)
	user.UpdatedAt = s.now()
	if err := s.users.SetRoles(ctx, userID, user.Roles, user.UpdatedAt); err != nil {
		return models.User{}, fmt.Errorf("assign role: %w", err)
	}
	return user, nil
}

// RevokeRole removes a role from the user's set.
func (s *RoleService) RevokeRole(ctx context.Context, userID string, role models.Role, caller identity.Identity) (models.User, error) {
	if !caller.IsModerator() {
		return models.User{}, fmt.Errorf("%w: role revocation requires the moderator role", models.ErrForbidden)
	}
	if !validRole(role) {
		return models.User{}, fmt.Errorf("%w: unknown role %q", models.ErrInvalidArgument, role)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if !user.HasRole(role) {
		return user, nil
	}

	remaining := make([]models.Role, 0, len(user.Roles))
	for _, r := range user.Roles {
		if r != role {
			remaining = append(remaining, r)
		}
	}
	user.Roles = remaining
	user.UpdatedAt = s.now()
	if err := s.users.SetRoles(ctx, userID, user.Roles, user.UpdatedAt); err != nil {
		return models.User{}, fmt.Errorf("revoke role: %w", err)
	}
	return user, nil
}

// SearchUsers finds accounts by email or name fragments for the moderator UI.
func (s *RoleService) SearchUsers(ctx context.Context, query string, caller identity.Identity) ([]models.User, error) {
	if !caller.IsModerator() {
		return nil, fmt.Errorf("%w: user search requires the moderator role", models.ErrForbidden)
	}
	return s.users.Search(ctx, query, 50)
}

func validRole(role models.Role) bool {
	switch role {
	case models.RoleViewer, models.RoleCreator, models.RoleModerator:
		return true
	}
	return false
}
