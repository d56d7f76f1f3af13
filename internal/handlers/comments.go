package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/reelpoint/backend/internal/identity"
	"github.com/reelpoint/backend/internal/models"
)

// CommentHandler implements the comment endpoints.
type CommentHandler struct {
	Comments CommentService
}

// Add handles POST /api/v1/videos/{id}/comments.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	comment, err := h.Comments.Add(ctx, r.PathValue("id"), req.Text, caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, commentResponseFrom(comment))
}

// Get handles GET /api/v1/comments/{id}.
func (h CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, _ := identity.FromContext(ctx)

	comment, err := h.Comments.Get(ctx, r.PathValue("id"), caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, commentResponseFrom(comment))
}

// ListForVideo handles GET /api/v1/videos/{id}/comments.
func (h CommentHandler) ListForVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, pageSize := paginationParams(r)

	result, err := h.Comments.ListForVideo(ctx, r.PathValue("id"), page, pageSize)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	items := make([]commentResponse, 0, len(result.Items))
	for _, comment := range result.Items {
		items = append(items, commentResponseFrom(comment))
	}

	respondJSON(ctx, w, http.StatusOK, listResponse[commentResponse]{Items: items, Total: result.Total, Page: max(page, 1)})
}

// ListByUser handles GET /api/v1/users/{id}/comments.
func (h CommentHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, pageSize := paginationParams(r)

	result, err := h.Comments.ListByUser(ctx, r.PathValue("id"), page, pageSize)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	items := make([]commentResponse, 0, len(result.Items))
	for _, comment := range result.Items {
		items = append(items, commentResponseFrom(comment))
	}

	respondJSON(ctx, w, http.StatusOK, listResponse[commentResponse]{Items: items, Total: result.Total, Page: max(page, 1)})
}

type addCommentRequest struct {
	Text string `json:"text"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	Sentiment string    `json:"sentiment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	IsDeleted bool      `json:"isDeleted,omitempty"`
}

func commentResponseFrom(comment models.Comment) commentResponse {
	return commentResponse{
		ID:        comment.ID,
		VideoID:   comment.VideoID,
		UserID:    comment.UserID,
		Text:      comment.Text,
		Sentiment: comment.Sentiment,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
		IsDeleted: comment.IsDeleted,
	}
}
