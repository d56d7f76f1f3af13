package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/reelpoint/backend/internal/catalog"
	"github.com/reelpoint/backend/internal/identity"
	"github.com/reelpoint/backend/internal/logging"
	"github.com/reelpoint/backend/internal/models"
)

// VideoHandler implements the video lifecycle endpoints.
type VideoHandler struct {
	Videos VideoService
}

// Submit handles POST /api/v1/videos.
func (h VideoHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	var req submitVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.FromContext(ctx).Warn("invalid submit payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	video, err := h.Videos.Submit(ctx, catalog.SubmitRequest{URL: req.URL, Title: req.Title}, caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusAccepted, videoResponseFrom(video))
}

// Get handles GET /api/v1/videos/{id}.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, _ := identity.FromContext(ctx)

	video, err := h.Videos.GetVideo(ctx, r.PathValue("id"), caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, videoResponseFrom(video))
}

// Status handles GET /api/v1/videos/{id}/status.
func (h VideoHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	status, err := h.Videos.GetStatus(ctx, r.PathValue("id"), caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"id": r.PathValue("id"), "status": string(status)})
}

// Update handles PATCH /api/v1/videos/{id}.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	var req updateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	video, err := h.Videos.UpdateDetails(ctx, r.PathValue("id"), catalog.UpdatePatch{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	}, caller)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, videoResponseFrom(video))
}

// RecordView handles POST /api/v1/videos/{id}/views. Always 204: view counts
// never reveal whether a video exists.
func (h VideoHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Videos.RecordView(ctx, r.PathValue("id")); err != nil {
		respondError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /api/v1/videos. Optional `tag` and `user` query parameters
// narrow the listing; both together are rejected.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, pageSize := paginationParams(r)

	tag := r.URL.Query().Get("tag")
	user := r.URL.Query().Get("user")

	var (
		result catalog.Page
		err    error
	)
	switch {
	case tag != "" && user != "":
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "tag and user filters are mutually exclusive"})
		return
	case tag != "":
		result, err = h.Videos.ListByTag(ctx, tag, page, pageSize)
	case user != "":
		result, err = h.Videos.ListByUser(ctx, user, page, pageSize)
	default:
		result, err = h.Videos.ListLatest(ctx, page, pageSize)
	}
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	items := make([]videoResponse, 0, len(result.Items))
	for _, video := range result.Items {
		items = append(items, videoResponseFrom(video))
	}

	respondJSON(ctx, w, http.StatusOK, listResponse[videoResponse]{
		Items: items,
		Total: result.Total,
		Page:  max(page, 1),
	})
}

func paginationParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	return page, pageSize
}

type submitVideoRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type updateVideoRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
}

type videoResponse struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"ownerId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Tags          []string   `json:"tags"`
	SourceID      string     `json:"sourceId"`
	SourceURL     string     `json:"sourceUrl"`
	Status        string     `json:"status"`
	ThumbnailURL  string     `json:"thumbnailUrl,omitempty"`
	Views         int64      `json:"views"`
	AverageRating *float64   `json:"averageRating"`
	TotalRatings  int        `json:"totalRatings"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	IsDeleted     bool       `json:"isDeleted,omitempty"`
	DeletedAt     *time.Time `json:"deletedAt,omitempty"`
}

func videoResponseFrom(video models.Video) videoResponse {
	tags := video.Tags
	if tags == nil {
		tags = []string{}
	}
	return videoResponse{
		ID:            video.ID,
		OwnerID:       video.OwnerID,
		Title:         video.Title,
		Description:   video.Description,
		Tags:          tags,
		SourceID:      video.SourceID,
		SourceURL:     video.SourceURL,
		Status:        string(video.Status),
		ThumbnailURL:  video.ThumbnailURL,
		Views:         video.ViewCount,
		AverageRating: video.AverageRating,
		TotalRatings:  video.TotalRatingsCount,
		CreatedAt:     video.CreatedAt,
		UpdatedAt:     video.UpdatedAt,
		IsDeleted:     video.IsDeleted,
		DeletedAt:     video.DeletedAt,
	}
}
