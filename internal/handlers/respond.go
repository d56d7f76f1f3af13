package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/reelpoint/backend/internal/identity"
	"github.com/reelpoint/backend/internal/logging"
	"github.com/reelpoint/backend/internal/models"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondError translates the service error taxonomy into HTTP status codes.
// Unknown errors are reported as 500 without leaking their message.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		respondJSON(ctx, w, http.StatusBadRequest, errorBody(err))
	case errors.Is(err, models.ErrNotFound):
		respondJSON(ctx, w, http.StatusNotFound, errorBody(err))
	case errors.Is(err, models.ErrForbidden):
		respondJSON(ctx, w, http.StatusForbidden, errorBody(err))
	case errors.Is(err, models.ErrConflict):
		respondJSON(ctx, w, http.StatusConflict, errorBody(err))
	case errors.Is(err, models.ErrUnavailable):
		respondJSON(ctx, w, http.StatusServiceUnavailable, errorBody(err))
	default:
		logging.FromContext(ctx).Error("unhandled error", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func errorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

// requireIdentity rejects anonymous requests with 401 before the services get
// a chance to answer 403.
func requireIdentity(ctx context.Context, w http.ResponseWriter) (identity.Identity, bool) {
	caller, found := identity.FromContext(ctx)
	if !found {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return identity.Identity{}, false
	}
	return caller, true
}
