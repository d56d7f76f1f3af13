package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/reelpoint/backend/internal/identity"
)

// RatingHandler implements the rating endpoints.
type RatingHandler struct {
	Ratings RatingService
}

// Rate handles POST /api/v1/videos/{id}/ratings.
func (h RatingHandler) Rate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	rating, err := h.Ratings.Rate(ctx, r.PathValue("id"), req.Value, caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, ratingResponse{
		VideoID: rating.VideoID,
		UserID:  rating.UserID,
		Value:   rating.Value,
	})
}

// Summary handles GET /api/v1/videos/{id}/ratings. Anonymous callers get the
// aggregate only; authenticated callers also see their own vote.
func (h RatingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, _ := identity.FromContext(ctx)

	summary, err := h.Ratings.GetSummary(ctx, r.PathValue("id"), caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, summaryResponse{
		VideoID:      summary.VideoID,
		Average:      summary.Average,
		Count:        summary.Count,
		CallerRating: summary.CallerRating,
	})
}

type rateRequest struct {
	Value int `json:"value"`
}

type ratingResponse struct {
	VideoID string `json:"videoId"`
	UserID  string `json:"userId"`
	Value   int    `json:"value"`
}

type summaryResponse struct {
	VideoID      string   `json:"videoId"`
	Average      *float64 `json:"average"`
	Count        int      `json:"count"`
	CallerRating *int     `json:"callerRating,omitempty"`
}
