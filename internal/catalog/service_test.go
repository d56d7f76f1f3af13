package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/reelpoint/backend/internal/identity"
	"github.com/reelpoint/backend/internal/models"
)

type videoStoreStub struct {
	videos    map[string]models.Video
	created   []models.Video
	updated   []models.Video
	viewCalls []string
	viewErr   error
}

func newVideoStoreStub() *videoStoreStub {
	return &videoStoreStub{videos: make(map[string]models.Video)}
}

func (s *videoStoreStub) Create(_ context.Context, video models.Video) error {
	s.created = append(s.created, video)
	s.videos[video.ID] = video
	return nil
}

func (s *videoStoreStub) Get(_ context.Context, videoID string) (models.Video, error) {
	video, ok := s.videos[videoID]
	if !ok {
		return models.Video{}, fmt.Errorf("%w: video %s", models.ErrNotFound, videoID)
	}
	return video, nil
}

func (s *videoStoreStub) UpdateDetails(_ context.Context, video models.Video) error {
	if _, ok := s.videos[video.ID]; !ok {
		return fmt.Errorf("%w: video %s", models.ErrNotFound, video.ID)
	}
	s.updated = append(s.updated, video)
	s.videos[video.ID] = video
	return nil
}

func (s *videoStoreStub) IncrementViews(_ context.Context, videoID string) error {
	s.viewCalls = append(s.viewCalls, videoID)
	return s.viewErr
}

func (s *videoStoreStub) ListLatest(context.Context, int, int) ([]models.Video, int, error) {
	return nil, 0, nil
}

func (s *videoStoreStub) ListByTag(context.Context, string, int, int) ([]models.Video, int, error) {
	return nil, 0, nil
}

func (s *videoStoreStub) ListByUser(context.Context, string, int, int) ([]models.Video, int, error) {
	return nil, 0, nil
}

type schedulerStub struct {
	enqueued []string
	err      error
}

func (s *schedulerStub) Enqueue(_ context.Context, videoID, sourceID string) error {
	s.enqueued = append(s.enqueued, videoID+":"+sourceID)
	return s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func creatorIdentity(userID string) identity.Identity {
	return identity.Identity{UserID: userID, Roles: []models.Role{models.RoleViewer, models.RoleCreator}}
}

func moderatorIdentity(userID string) identity.Identity {
	return identity.Identity{UserID: userID, Roles: []models.Role{models.RoleModerator}}
}

func TestSubmitCreatesPendingAndSchedules(t *testing.T) {
	store := newVideoStoreStub()
	scheduler := &schedulerStub{}
	svc := NewService(store, scheduler, testLogger())

	video, err := svc.Submit(context.Background(), SubmitRequest{
		URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}, creatorIdentity("user-1"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if video.Status != models.VideoStatusPending {
		t.Fatalf("expected PENDING status, got %s", video.Status)
	}
	if video.Title != models.PlaceholderTitle {
		t.Fatalf("expected placeholder title, got %q", video.Title)
	}
	if video.SourceID != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected source id %q", video.SourceID)
	}
	if len(scheduler.enqueued) != 1 {
		t.Fatalf("expected 1 enqueue, got %d", len(scheduler.enqueued))
	}
	if want := video.ID + ":dQw4w9WgXcQ"; scheduler.enqueued[0] != want {
		t.Fatalf("enqueued %q, want %q", scheduler.enqueued[0], want)
	}
}

func TestSubmitKeepsCallerTitle(t *testing.T) {
	store := newVideoStoreStub()
	svc := NewService(store, &schedulerStub{}, testLogger())

	video, err := svc.Submit(context.Background(), SubmitRequest{
		URL:   "https://youtu.be/dQw4w9WgXcQ",
		Title: "My Clip",
	}, creatorIdentity("user-1"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if video.Title != "My Clip" {
		t.Fatalf("expected caller title to survive, got %q", video.Title)
	}
}

func TestSubmitRejectsUnparseableURL(t *testing.T) {
	svc := NewService(newVideoStoreStub(), &schedulerStub{}, testLogger())

	_, err := svc.Submit(context.Background(), SubmitRequest{URL: "https://example.com/clip"}, creatorIdentity("user-1"))
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSubmitRequiresCreatorRole(t *testing.T) {
	svc := NewService(newVideoStoreStub(), &schedulerStub{}, testLogger())
	viewer := identity.Identity{UserID: "user-1", Roles: []models.Role{models.RoleViewer}}

	_, err := svc.Submit(context.Background(), SubmitRequest{URL: "https://youtu.be/dQw4w9WgXcQ"}, viewer)
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSubmitSucceedsWhenSchedulerRejects(t *testing.T) {
	store := newVideoStoreStub()
	scheduler := &schedulerStub{err: errors.New("queue full")}
	svc := NewService(store, scheduler, testLogger())

	video, err := svc.Submit(context.Background(), SubmitRequest{URL: "https://youtu.be/dQw4w9WgXcQ"}, creatorIdentity("user-1"))
	if err != nil {
		t.Fatalf("submit should not surface scheduler errors, got %v", err)
	}
	if len(store.created) != 1 || store.created[0].ID != video.ID {
		t.Fatalf("expected the submission to be persisted")
	}
}

func TestGetStatusVisibility(t *testing.T) {
	store := newVideoStoreStub()
	store.videos["v1"] = models.Video{ID: "v1", OwnerID: "owner", Status: models.VideoStatusProcessing}
	svc := NewService(store, &schedulerStub{}, testLogger())

	status, err := svc.GetStatus(context.Background(), "v1", creatorIdentity("owner"))
	if err != nil || status != models.VideoStatusProcessing {
		t.Fatalf("owner should read status, got %s err %v", status, err)
	}

	if _, err := svc.GetStatus(context.Background(), "v1", moderatorIdentity("mod")); err != nil {
		t.Fatalf("moderator should read status, got %v", err)
	}

	if _, err := svc.GetStatus(context.Background(), "v1", creatorIdentity("other")); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
}

func TestGetVideoHidesDeletedFromNonModerators(t *testing.T) {
	store := newVideoStoreStub()
	store.videos["v1"] = models.Video{ID: "v1", OwnerID: "owner", Status: models.VideoStatusReady, IsDeleted: true}
	svc := NewService(store, &schedulerStub{}, testLogger())

	if _, err := svc.GetVideo(context.Background(), "v1", creatorIdentity("owner")); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted video, got %v", err)
	}

	video, err := svc.GetVideo(context.Background(), "v1", moderatorIdentity("mod"))
	if err != nil {
		t.Fatalf("moderator should see deleted video, got %v", err)
	}
	if !video.IsDeleted {
		t.Fatalf("expected deleted flag to survive")
	}
}

func TestUpdateDetails(t *testing.T) {
	store := newVideoStoreStub()
	store.videos["v1"] = models.Video{ID: "v1", OwnerID: "owner", Title: "Old", Status: models.VideoStatusReady}
	svc := NewService(store, &schedulerStub{}, testLogger())

	t.Run("empty patch is a no-op success", func(t *testing.T) {
		video, err := svc.UpdateDetails(context.Background(), "v1", UpdatePatch{}, creatorIdentity("owner"))
		if err != nil {
			t.Fatalf("empty patch: %v", err)
		}
		if video.Title != "Old" || len(store.updated) != 0 {
			t.Fatalf("expected unchanged record without a store write")
		}
	})

	t.Run("short title rejected", func(t *testing.T) {
		title := "ab"
		_, err := svc.UpdateDetails(context.Background(), "v1", UpdatePatch{Title: &title}, creatorIdentity("owner"))
		if !errors.Is(err, models.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		title := "New Title"
		_, err := svc.UpdateDetails(context.Background(), "v1", UpdatePatch{Title: &title}, creatorIdentity("other"))
		if !errors.Is(err, models.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("owner updates title and tags", func(t *testing.T) {
		title := "New Title"
		tags := []string{"go", "infra"}
		video, err := svc.UpdateDetails(context.Background(), "v1", UpdatePatch{Title: &title, Tags: &tags}, creatorIdentity("owner"))
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if video.Title != "New Title" || len(video.Tags) != 2 {
			t.Fatalf("unexpected update result: %+v", video)
		}
	})
}

func TestRecordViewSwallowsNotFound(t *testing.T) {
	store := newVideoStoreStub()
	store.viewErr = fmt.Errorf("%w: video gone", models.ErrNotFound)
	svc := NewService(store, &schedulerStub{}, testLogger())

	if err := svc.RecordView(context.Background(), "missing"); err != nil {
		t.Fatalf("expected nil for missing video, got %v", err)
	}

	store.viewErr = errors.New("connection reset")
	if err := svc.RecordView(context.Background(), "v1"); err == nil {
		t.Fatalf("expected infrastructure errors to surface")
	}
}
