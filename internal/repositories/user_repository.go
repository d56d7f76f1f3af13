package repositories

import (
	"context"
	"time"

	"github.com/reelpoint/backend/internal/models"
)

// UserRepository exposes data access for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, userID string) (models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
	SetRoles(ctx context.Context, userID string, roles []models.Role, updatedAt time.Time) error
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
}
