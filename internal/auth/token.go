// Package auth mints and verifies the signed access tokens the HTTP layer
// exchanges for a caller identity.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/reelpoint/backend/internal/identity"
	"github.com/reelpoint/backend/internal/models"
)

// ErrInvalidToken indicates the presented token is malformed, expired or not
// signed by this service.
var ErrInvalidToken = errors.New("invalid access token")

type claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenManager issues and parses HS256 access tokens carrying the user id and
// role set.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager constructs a manager signing with the provided secret.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Issue mints a token for the user expiring after the configured TTL.
func (m *TokenManager) Issue(userID string, roles []models.Role) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("user id must be provided")
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)

	roleNames := make([]string, len(roles))
	for i, r := range roles {
		roleNames[i] = string(r)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Roles: roleNames,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies the token and reconstructs the caller identity.
func (m *TokenManager) Parse(tokenString string) (identity.Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return identity.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || c.Subject == "" {
		return identity.Identity{}, ErrInvalidToken
	}

	roles := make([]models.Role, len(c.Roles))
	for i, r := range c.Roles {
		roles[i] = models.Role(r)
	}

	return identity.Identity{UserID: c.Subject, Roles: roles}, nil
}
