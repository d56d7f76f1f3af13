package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type doerStub struct {
	responses map[string]*http.Response
	err       error
	requests  []string
}

func (d *doerStub) Do(req *http.Request) (*http.Response, error) {
	d.requests = append(d.requests, req.URL.String())
	if d.err != nil {
		return nil, d.err
	}
	for prefix, resp := range d.responses {
		if strings.HasPrefix(req.URL.String(), prefix) {
			return resp, nil
		}
	}
	return jsonResponse(http.StatusNotFound, `{}`), nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestYouTubeFetcherDataAPI(t *testing.T) {
	doer := &doerStub{responses: map[string]*http.Response{
		"https://www.googleapis.com/youtube/v3/videos": jsonResponse(http.StatusOK, `{
            "items": [{"snippet": {
                "title": "Data API Title",
                "description": "full description",
                "tags": ["music", "live"],
                "thumbnails": {
                    "default": {"url": "https://img.example/default.jpg"},
                    "maxres": {"url": "https://img.example/maxres.jpg"}
                }
            }}]
        }`),
	}}

	fetcher := &YouTubeFetcher{APIKey: "key", Client: doer, Timeout: time.Second}

	meta, err := fetcher.Fetch(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if meta.Title != "Data API Title" || meta.Description != "full description" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if meta.ThumbnailURL != "https://img.example/maxres.jpg" {
		t.Fatalf("expected maxres thumbnail preferred, got %q", meta.ThumbnailURL)
	}
	if len(meta.Tags) != 2 {
		t.Fatalf("expected tags carried through, got %v", meta.Tags)
	}
}

func TestYouTubeFetcherFallsBackToOEmbed(t *testing.T) {
	doer := &doerStub{responses: map[string]*http.Response{
		"https://www.googleapis.com/youtube/v3/videos": jsonResponse(http.StatusForbidden, `{}`),
		"https://www.youtube.com/oembed": jsonResponse(http.StatusOK, `{
            "title": "OEmbed Title",
            "thumbnail_url": "https://img.example/hq.jpg"
        }`),
	}}

	fetcher := &YouTubeFetcher{APIKey: "key", Client: doer, Timeout: time.Second}

	meta, err := fetcher.Fetch(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if meta.Title != "OEmbed Title" {
		t.Fatalf("expected oEmbed fallback, got %+v", meta)
	}
	if len(doer.requests) != 2 {
		t.Fatalf("expected data api then oembed request, got %v", doer.requests)
	}
}

func TestYouTubeFetcherSkipsDataAPIWithoutKey(t *testing.T) {
	doer := &doerStub{responses: map[string]*http.Response{
		"https://www.youtube.com/oembed": jsonResponse(http.StatusOK, `{"title": "Only OEmbed"}`),
	}}

	fetcher := &YouTubeFetcher{Client: doer, Timeout: time.Second}

	meta, err := fetcher.Fetch(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if meta.Title != "Only OEmbed" || len(doer.requests) != 1 {
		t.Fatalf("expected a single oembed request, got %v", doer.requests)
	}
}

func TestYouTubeFetcherAllEndpointsFailing(t *testing.T) {
	doer := &doerStub{err: errors.New("network down")}
	fetcher := &YouTubeFetcher{APIKey: "key", Client: doer, Timeout: time.Second}

	_, err := fetcher.Fetch(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, ErrMetadataUnavailable) {
		t.Fatalf("expected ErrMetadataUnavailable, got %v", err)
	}
}

func TestYouTubeFetcherEmptySourceID(t *testing.T) {
	fetcher := &YouTubeFetcher{Client: &doerStub{}, Timeout: time.Second}
	if _, err := fetcher.Fetch(context.Background(), "  "); !errors.Is(err, ErrMetadataUnavailable) {
		t.Fatalf("expected ErrMetadataUnavailable for empty id, got %v", err)
	}
}
