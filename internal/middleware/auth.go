package middleware

import (
	"net/http"
	"strings"

	"github.com/reelpoint/backend/internal/identity"
	"github.com/reelpoint/backend/internal/logging"
)

// TokenParser verifies a bearer token and reconstructs the caller identity.
type TokenParser interface {
	Parse(token string) (identity.Identity, error)
}

// Authenticate resolves an optional bearer token into a caller identity on the
// request context. Requests without a token pass through anonymously; each
// handler decides whether an identity is required. A malformed token is
// rejected outright rather than downgraded to anonymous.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			caller, err := parser.Parse(strings.TrimSpace(token))
			if err != nil {
				logging.FromContext(r.Context()).Warn("token rejected", "error", err)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			ctx := identity.WithIdentity(r.Context(), caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
