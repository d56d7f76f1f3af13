// Package accounts handles registration, login and profile management.
// Password hashes never leave this package; login hands back a signed access
// token minted by the auth collaborator.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/reelpoint/backend/internal/identity"
	"github.com/reelpoint/backend/internal/models"
)

// UserStore captures persistence for user accounts.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, userID string) (models.User, error)
	UpdateProfile(ctx context.Context, user models.User) error
}

// TokenIssuer mints an access token for an authenticated user.
type TokenIssuer interface {
	Issue(userID string, roles []models.Role) (token string, expiresAt time.Time, err error)
}

// RegisterRequest is the payload accepted by Register.
type RegisterRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ProfilePatch applies partial profile edits. Nil fields are left untouched.
type ProfilePatch struct {
	FirstName *string
	LastName  *string
}

// LoginResult pairs the issued token with the authenticated account.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

// Service implements account operations.
type Service struct {
	users  UserStore
	tokens TokenIssuer
	now    func() time.Time
}

// NewService constructs the account service.
func NewService(users UserStore, tokens TokenIssuer) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a new account with the default viewer role. Creator and
// moderator are granted later through the moderation role endpoints.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return models.User{}, fmt.Errorf("%w: invalid email address", models.ErrInvalidArgument)
	}
	if len(req.Password) < 8 {
		return models.User{}, fmt.Errorf("%w: password must be at least 8 characters", models.ErrInvalidArgument)
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return models.User{}, fmt.Errorf("%w: first and last name are required", models.ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  string(hash),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Roles:     []models.Role{models.RoleViewer},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return models.User{}, fmt.Errorf("%w: email already registered", models.ErrConflict)
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	user.Password = ""
	return user, nil
}

// Login verifies the credentials and issues an access token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return LoginResult{}, fmt.Errorf("%w: invalid credentials", models.ErrForbidden)
		}
		return LoginResult{}, fmt.Errorf("load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return LoginResult{}, fmt.Errorf("%w: invalid credentials", models.ErrForbidden)
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Roles)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	user.Password = ""
	return LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// GetProfile returns the caller's own account.
func (s *Service) GetProfile(ctx context.Context, caller identity.Identity) (models.User, error) {
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	return user, nil
}

// UpdateProfile applies the provided name fields to the caller's account.
func (s *Service) UpdateProfile(ctx context.Context, patch ProfilePatch, caller identity.Identity) (models.User, error) {
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return models.User{}, err
	}

	changed := false
	if patch.FirstName != nil {
		name := strings.TrimSpace(*patch.FirstName)
		if name == "" {
			return models.User{}, fmt.Errorf("%w: first name must not be empty", models.ErrInvalidArgument)
		}
		user.FirstName = name
		changed = true
	}
	if patch.LastName != nil {
		name := strings.TrimSpace(*patch.LastName)
		if name == "" {
			return models.User{}, fmt.Errorf("%w: last name must not be empty", models.ErrInvalidArgument)
		}
		user.LastName = name
		changed = true
	}

	if changed {
		user.UpdatedAt = s.now()
		if err := s.users.UpdateProfile(ctx, user); err != nil {
			return models.User{}, fmt.Errorf("update profile: %w", err)
		}
	}

	user.Password = ""
	return user, nil
}
