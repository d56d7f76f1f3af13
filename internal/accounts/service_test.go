package accounts

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/reelpoint/backend/internal/identity"
	"github.com/reelpoint/backend/internal/models"
)

type userStoreStub struct {
	byEmail map[string]models.User
	byID    map[string]models.User
	updated []models.User
}

func newUserStoreStub() *userStoreStub {
	return &userStoreStub{byEmail: make(map[string]models.User), byID: make(map[string]models.User)}
}

func (s *userStoreStub) Create(_ context.Context, user models.User) error {
	if _, exists := s.byEmail[user.Email]; exists {
		return fmt.Errorf("%w: email taken", models.ErrConflict)
	}
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return nil
}

func (s *userStoreStub) FindByEmail(_ context.Context, email string) (models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return models.User{}, fmt.Errorf("%w: user", models.ErrNotFound)
	}
	return user, nil
}

func (s *userStoreStub) FindByID(_ context.Context, userID string) (models.User, error) {
	user, ok := s.byID[userID]
	if !ok {
		return models.User{}, fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
	}
	return user, nil
}

func (s *userStoreStub) UpdateProfile(_ context.Context, user models.User) error {
	s.updated = append(s.updated, user)
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user
	return nil
}

type issuerStub struct {
	err error
}

func (s issuerStub) Issue(userID string, _ []models.Role) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	return "token-for-" + userID, time.Now().Add(time.Hour), nil
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Email:     "Alice@Example.com",
		Password:  "correct horse",
		FirstName: "Alice",
		LastName:  "Smith",
	}
}

func TestRegister(t *testing.T) {
	store := newUserStoreStub()
	svc := NewService(store, issuerStub{})

	user, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if user.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if user.Password != "" {
		t.Fatalf("password hash must not leave the service")
	}
	if !user.HasRole(models.RoleViewer) {
		t.Fatalf("expected default viewer role, got %v", user.Roles)
	}
	if user.HasRole(models.RoleCreator) || user.HasRole(models.RoleModerator) {
		t.Fatalf("fresh accounts must hold the viewer role only, got %v", user.Roles)
	}

	stored := store.byEmail["alice@example.com"]
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("correct horse")); err != nil {
		t.Fatalf("stored hash does not match the password: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newUserStoreStub(), issuerStub{})
	ctx := context.Background()

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"bad email", RegisterRequest{Email: "not-an-email", Password: "longenough", FirstName: "A", LastName: "B"}},
		{"short password", RegisterRequest{Email: "a@example.com", Password: "short", FirstName: "A", LastName: "B"}},
		{"missing first name", RegisterRequest{Email: "a@example.com", Password: "longenough", LastName: "B"}},
		{"missing last name", RegisterRequest{Email: "a@example.com", Password: "longenough", FirstName: "A"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.req); !errors.Is(err, models.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewService(newUserStoreStub(), issuerStub{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, validRegistration()); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	store := newUserStoreStub()
	svc := NewService(store, issuerStub{})
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := svc.Login(ctx, "ALICE@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token != "token-for-"+registered.ID {
		t.Fatalf("unexpected token %q", result.Token)
	}
	if result.User.Password != "" {
		t.Fatalf("login must not expose the password hash")
	}
}

func TestLoginIndistinguishableFailures(t *testing.T) {
	store := newUserStoreStub()
	svc := NewService(store, issuerStub{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Unknown email and wrong password both collapse to the same error.
	_, unknownErr := svc.Login(ctx, "nobody@example.com", "whatever")
	_, wrongErr := svc.Login(ctx, "alice@example.com", "wrong password")

	for name, err := range map[string]error{"unknown email": unknownErr, "wrong password": wrongErr} {
		if !errors.Is(err, models.ErrForbidden) {
			t.Fatalf("%s: expected ErrForbidden, got %v", name, err)
		}
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("failure messages must not leak which credential was wrong: %q vs %q", unknownErr, wrongErr)
	}
}

func TestUpdateProfile(t *testing.T) {
	store := newUserStoreStub()
	svc := NewService(store, issuerStub{})
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	caller := identity.Identity{UserID: registered.ID, Roles: registered.Roles}

	t.Run("partial patch", func(t *testing.T) {
		first := "  Alicia "
		user, err := svc.UpdateProfile(ctx, ProfilePatch{FirstName: &first}, caller)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if user.FirstName != "Alicia" || user.LastName != "Smith" {
			t.Fatalf("unexpected profile: %+v", user)
		}
	})

	t.Run("empty patch skips the store", func(t *testing.T) {
		writes := len(store.updated)
		if _, err := svc.UpdateProfile(ctx, ProfilePatch{}, caller); err != nil {
			t.Fatalf("empty patch: %v", err)
		}
		if len(store.updated) != writes {
			t.Fatalf("empty patch must not write")
		}
	})

	t.Run("blank name rejected", func(t *testing.T) {
		blank := "   "
		if _, err := svc.UpdateProfile(ctx, ProfilePatch{LastName: &blank}, caller); !errors.Is(err, models.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
