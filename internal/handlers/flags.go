package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/reelpoint/backend/internal/models"
)

// FlagHandler implements the moderation flag endpoints.
type FlagHandler struct {
	Flags   FlagService
	Limiter RateLimiter
}

// Submit handles POST /api/v1/flags.
func (h FlagHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	if !allowRequest(h.Limiter, r, "flag") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	var req submitFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	flag, err := h.Flags.SubmitFlag(ctx, models.ContentType(req.TargetType), req.TargetID,
		models.FlagReason(req.Reason), req.ReasonText, caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, flagResponseFrom(flag))
}

// List handles GET /api/v1/flags with an optional `status` query parameter.
func (h FlagHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	page, pageSize := paginationParams(r)

	var status *models.FlagStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.FlagStatus(raw)
		switch s {
		case models.FlagStatusOpen, models.FlagStatusUnderReview, models.FlagStatusApproved, models.FlagStatusRejected:
			status = &s
		default:
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "unknown flag status"})
			return
		}
	}

	result, err := h.Flags.ListFlags(ctx, status, page, pageSize, caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	items := make([]flagResponse, 0, len(result.Items))
	for _, flag := range result.Items {
		items = append(items, flagResponseFrom(flag))
	}

	respondJSON(ctx, w, http.StatusOK, listResponse[flagResponse]{Items: items, Total: result.Total, Page: max(page, 1)})
}

// Get handles GET /api/v1/flags/{id}.
func (h FlagHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	flag, err := h.Flags.GetFlag(ctx, r.PathValue("id"), caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, flagResponseFrom(flag))
}

// StartReview handles POST /api/v1/flags/{id}/review.
func (h FlagHandler) StartReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	flag, err := h.Flags.StartReview(ctx, r.PathValue("id"), caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, flagResponseFrom(flag))
}

// Action handles POST /api/v1/flags/{id}/action.
func (h FlagHandler) Action(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	var req actionFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	flag, err := h.Flags.ActionFlag(ctx, r.PathValue("id"), models.FlagStatus(req.Status), req.Notes, caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, flagResponseFrom(flag))
}

type submitFlagRequest struct {
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	Reason     string `json:"reason"`
	ReasonText string `json:"reasonText"`
}

type actionFlagRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type flagResponse struct {
	ID             string     `json:"id"`
	TargetType     string     `json:"targetType"`
	TargetID       string     `json:"targetId"`
	UserID         string     `json:"userId"`
	Reason         string     `json:"reason"`
	ReasonText     string     `json:"reasonText,omitempty"`
	Status         string     `json:"status"`
	ModeratorID    string     `json:"moderatorId,omitempty"`
	ModeratorNotes string     `json:"moderatorNotes,omitempty"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func flagResponseFrom(flag models.Flag) flagResponse {
	return flagResponse{
		ID:             flag.ID,
		TargetType:     string(flag.TargetType),
		TargetID:       flag.TargetID,
		UserID:         flag.UserID,
		Reason:         string(flag.ReasonCode),
		ReasonText:     flag.ReasonText,
		Status:         string(flag.Status),
		ModeratorID:    flag.ModeratorID,
		ModeratorNotes: flag.ModeratorNotes,
		ResolvedAt:     flag.ResolvedAt,
		CreatedAt:      flag.CreatedAt,
		UpdatedAt:      flag.UpdatedAt,
	}
}
