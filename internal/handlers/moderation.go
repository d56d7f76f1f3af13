package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/reelpoint/backend/internal/models"
)

// ModerationHandler implements direct soft-delete, restore and role
// management endpoints.
type ModerationHandler struct {
	Gate  VisibilityGate
	Roles RoleService
}

// SoftDelete handles POST /api/v1/moderation/{type}/{id}/delete.
func (h ModerationHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	err := h.Gate.SoftDelete(ctx, models.ContentType(r.PathValue("type")), r.PathValue("id"), caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Restore handles POST /api/v1/moderation/{type}/{id}/restore.
func (h ModerationHandler) Restore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	err := h.Gate.Restore(ctx, models.ContentType(r.PathValue("type")), r.PathValue("id"), caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AssignRole handles POST /api/v1/users/{id}/roles.
func (h ModerationHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	user, err := h.Roles.AssignRole(ctx, r.PathValue("id"), models.Role(req.Role), caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, userResponseFrom(user))
}

// RevokeRole handles DELETE /api/v1/users/{id}/roles/{role}.
func (h ModerationHandler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	user, err := h.Roles.RevokeRole(ctx, r.PathValue("id"), models.Role(r.PathValue("role")), caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, userResponseFrom(user))
}

// SearchUsers handles GET /api/v1/users with a `q` query parameter.
func (h ModerationHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	users, err := h.Roles.SearchUsers(ctx, r.URL.Query().Get("q"), caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, user := range users {
		items = append(items, userResponseFrom(user))
	}

	respondJSON(ctx, w, http.StatusOK, listResponse[userResponse]{Items: items, Total: len(items), Page: 1})
}

type roleRequest struct {
	Role string `json:"role"`
}
