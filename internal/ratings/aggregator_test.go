package ratings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/reelpoint/backend/internal/identity"
	"github.com/reelpoint/backend/internal/models"
)

type publishedAggregate struct {
	videoID string
	average *float64
	count   int
}

// ratingStoreStub mirrors the transactional store contract: each Save
// stores the row and republishes the aggregate under one lock.
type ratingStoreStub struct {
	mu        sync.Mutex
	rows      map[string]models.Rating
	videos    *aggregateVideoStub
	published []publishedAggregate
}

func newRatingStoreStub(videos *aggregateVideoStub) *ratingStoreStub {
	return &ratingStoreStub{rows: make(map[string]models.Rating), videos: videos}
}

func ratingKey(videoID, userID string) string {
	return videoID + "/" + userID
}

func (s *ratingStoreStub) Save(_ context.Context, rating models.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[ratingKey(rating.VideoID, rating.UserID)] = rating

	var sum, count int
	for _, r := range s.rows {
		if r.VideoID == rating.VideoID {
			sum += r.Value
			count++
		}
	}
	mean := float64(sum) / float64(count)

	s.published = append(s.published, publishedAggregate{videoID: rating.VideoID, average: &mean, count: count})
	if s.videos != nil {
		s.videos.setAggregate(&mean, count)
	}
	return nil
}

func (s *ratingStoreStub) Find(_ context.Context, videoID, userID string) (models.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rating, ok := s.rows[ratingKey(videoID, userID)]
	if !ok {
		return models.Rating{}, fmt.Errorf("%w: rating", models.ErrNotFound)
	}
	return rating, nil
}

func (s *ratingStoreStub) lastPublished(t *testing.T) publishedAggregate {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.published) == 0 {
		t.Fatal("no aggregate was published")
	}
	return s.published[len(s.published)-1]
}

type aggregateVideoStub struct {
	mu     sync.Mutex
	video  models.Video
	getErr error
}

func (s *aggregateVideoStub) Get(_ context.Context, videoID string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getErr != nil {
		return models.Video{}, s.getErr
	}
	video := s.video
	video.ID = videoID
	return video, nil
}

func (s *aggregateVideoStub) setAggregate(average *float64, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.video.AverageRating = average
	s.video.TotalRatingsCount = count
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func viewer(userID string) identity.Identity {
	return identity.Identity{UserID: userID, Roles: []models.Role{models.RoleViewer}}
}

func readyVideoStub() *aggregateVideoStub {
	return &aggregateVideoStub{video: models.Video{Status: models.VideoStatusReady}}
}

func TestRateOverwritesSameUser(t *testing.T) {
	videos := readyVideoStub()
	store := newRatingStoreStub(videos)
	agg := NewAggregator(store, videos, testLogger())

	if _, err := agg.Rate(context.Background(), "v1", 4, viewer("u1")); err != nil {
		t.Fatalf("first rate: %v", err)
	}
	if _, err := agg.Rate(context.Background(), "v1", 2, viewer("u1")); err != nil {
		t.Fatalf("second rate: %v", err)
	}

	last := store.lastPublished(t)
	if last.count != 1 {
		t.Fatalf("repeat rating must overwrite, got count %d", last.count)
	}
	if last.average == nil || *last.average != 2.0 {
		t.Fatalf("expected average 2.0, got %v", last.average)
	}
}

func TestRateAveragesAcrossUsers(t *testing.T) {
	videos := readyVideoStub()
	store := newRatingStoreStub(videos)
	agg := NewAggregator(store, videos, testLogger())

	if _, err := agg.Rate(context.Background(), "v1", 5, viewer("u1")); err != nil {
		t.Fatalf("rate u1: %v", err)
	}
	if _, err := agg.Rate(context.Background(), "v1", 3, viewer("u2")); err != nil {
		t.Fatalf("rate u2: %v", err)
	}

	last := store.lastPublished(t)
	if last.count != 2 || last.average == nil || *last.average != 4.0 {
		t.Fatalf("expected average 4.0 over 2 ratings, got %+v", last)
	}
}

func TestRateConcurrentRatersPublishExactAggregate(t *testing.T) {
	videos := readyVideoStub()
	store := newRatingStoreStub(videos)
	agg := NewAggregator(store, videos, testLogger())

	values := []int{5, 1, 3, 4, 2}

	var wg sync.WaitGroup
	for i, value := range values {
		wg.Add(1)
		go func(userID string, value int) {
			defer wg.Done()
			if _, err := agg.Rate(context.Background(), "v1", value, viewer(userID)); err != nil {
				t.Errorf("rate %s: %v", userID, err)
			}
		}(fmt.Sprintf("u%d", i), value)
	}
	wg.Wait()

	// Whatever order the raters landed in, the last published snapshot must
	// cover every stored rating.
	last := store.lastPublished(t)
	if last.count != len(values) {
		t.Fatalf("expected %d ratings in the final aggregate, got %d", len(values), last.count)
	}
	if last.average == nil || *last.average != 3.0 {
		t.Fatalf("expected average 3.0, got %v", last.average)
	}
}

func TestRateValueOutOfRange(t *testing.T) {
	videos := readyVideoStub()
	agg := NewAggregator(newRatingStoreStub(videos), videos, testLogger())

	for _, value := range []int{0, 6, -1} {
		if _, err := agg.Rate(context.Background(), "v1", value, viewer("u1")); !errors.Is(err, models.ErrInvalidArgument) {
			t.Fatalf("value %d: expected ErrInvalidArgument, got %v", value, err)
		}
	}
}

func TestRateRejectsUnavailableVideo(t *testing.T) {
	cases := []struct {
		name  string
		video models.Video
	}{
		{"pending", models.Video{Status: models.VideoStatusPending}},
		{"error state", models.Video{Status: models.VideoStatusError}},
		{"soft deleted", models.Video{Status: models.VideoStatusReady, IsDeleted: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			videos := &aggregateVideoStub{video: tc.video}
			agg := NewAggregator(newRatingStoreStub(videos), videos, testLogger())

			if _, err := agg.Rate(context.Background(), "v1", 3, viewer("u1")); !errors.Is(err, models.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestRateRequiresViewerRole(t *testing.T) {
	videos := readyVideoStub()
	agg := NewAggregator(newRatingStoreStub(videos), videos, testLogger())

	if _, err := agg.Rate(context.Background(), "v1", 3, identity.Identity{}); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for anonymous caller, got %v", err)
	}
}

func TestGetSummaryIncludesCallerRating(t *testing.T) {
	videos := readyVideoStub()
	store := newRatingStoreStub(videos)
	agg := NewAggregator(store, videos, testLogger())

	if _, err := agg.Rate(context.Background(), "v1", 4, viewer("u1")); err != nil {
		t.Fatalf("rate: %v", err)
	}

	summary, err := agg.GetSummary(context.Background(), "v1", viewer("u1"))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.CallerRating == nil || *summary.CallerRating != 4 {
		t.Fatalf("expected caller rating 4, got %v", summary.CallerRating)
	}
	if summary.Count != 1 || summary.Average == nil || *summary.Average != 4.0 {
		t.Fatalf("unexpected aggregate: %+v", summary)
	}
}

func TestGetSummaryAnonymousOmitsCallerRating(t *testing.T) {
	videos := readyVideoStub()
	agg := NewAggregator(newRatingStoreStub(videos), videos, testLogger())

	summary, err := agg.GetSummary(context.Background(), "v1", identity.Identity{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.CallerRating != nil {
		t.Fatalf("anonymous summary must omit caller rating")
	}
	if summary.Average != nil || summary.Count != 0 {
		t.Fatalf("unrated video must report nil average, got %+v", summary)
	}
}

func TestGetSummaryHidesDeletedFromNonModerators(t *testing.T) {
	videos := &aggregateVideoStub{video: models.Video{Status: models.VideoStatusReady, IsDeleted: true}}
	agg := NewAggregator(newRatingStoreStub(videos), videos, testLogger())

	if _, err := agg.GetSummary(context.Background(), "v1", viewer("u1")); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	moderator := identity.Identity{UserID: "mod", Roles: []models.Role{models.RoleModerator}}
	if _, err := agg.GetSummary(context.Background(), "v1", moderator); err != nil {
		t.Fatalf("moderator should read deleted video summary, got %v", err)
	}
}
