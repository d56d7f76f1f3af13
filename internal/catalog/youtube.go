package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// YouTubeFetcher retrieves video metadata from YouTube. When an API key is
// configured it uses the Data API v3, which returns rich metadata including
// description and tags; otherwise it falls back to the public oEmbed endpoint,
// which supplies title and thumbnail only.
type YouTubeFetcher struct {
	APIKey  string
	Client  Doer
	Timeout time.Duration
}

// NewYouTubeFetcher constructs a fetcher with the provided API key (may be
// empty) and per-lookup timeout.
func NewYouTubeFetcher(apiKey string, timeout time.Duration) *YouTubeFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &YouTubeFetcher{
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
		Timeout: timeout,
	}
}

// Fetch resolves metadata for the given video id. All failure modes collapse
// into ErrMetadataUnavailable so the enricher treats them uniformly.
func (f *YouTubeFetcher) Fetch(ctx context.Context, sourceID string) (Metadata, error) {
	if f == nil || f.Client == nil {
		return Metadata{}, ErrFetcherUnavailable
	}
	if strings.TrimSpace(sourceID) == "" {
		return Metadata{}, fmt.Errorf("%w: empty source id", ErrMetadataUnavailable)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	if f.APIKey != "" {
		meta, err := f.fetchDataAPI(fetchCtx, sourceID)
		if err == nil {
			return meta, nil
		}
		// Fall through to oEmbed on Data API failure.
	}

	return f.fetchOEmbed(fetchCtx, sourceID)
}

func (f *YouTubeFetcher) fetchDataAPI(ctx context.Context, sourceID string) (Metadata, error) {
	endpoint := fmt.Sprintf(
		"https://www.googleapis.com/youtube/v3/videos?part=snippet&id=%s&key=%s",
		url.QueryEscape(sourceID), url.QueryEscape(f.APIKey),
	)

	var payload struct {
		Items []struct {
			Snippet struct {
				Title       string   `json:"title"`
				Description string   `json:"description"`
				Tags        []string `json:"tags"`
				Thumbnails  map[string]struct {
					URL string `json:"url"`
				} `json:"thumbnails"`
			} `json:"snippet"`
		} `json:"items"`
	}

	if err := f.getJSON(ctx, endpoint, &payload); err != nil {
		return Metadata{}, err
	}
	if len(payload.Items) == 0 {
		return Metadata{}, fmt.Errorf("%w: video %s not listed", ErrMetadataUnavailable, sourceID)
	}

	snippet := payload.Items[0].Snippet
	if snippet.Title == "" {
		return Metadata{}, fmt.Errorf("%w: missing title", ErrMetadataUnavailable)
	}

	var thumbnail string
	for _, key := range []string{"maxres", "high", "default"} {
		if t, ok := snippet.Thumbnails[key]; ok && t.URL != "" {
			thumbnail = t.URL
			break
		}
	}

	return Metadata{
		Title:        snippet.Title,
		Description:  snippet.Description,
		ThumbnailURL: thumbnail,
		Tags:         snippet.Tags,
	}, nil
}

func (f *YouTubeFetcher) fetchOEmbed(ctx context.Context, sourceID string) (Metadata, error) {
	watchURL := "https://www.youtube.com/watch?v=" + url.QueryEscape(sourceID)
	endpoint := "https://www.youtube.com/oembed?format=json&url=" + url.QueryEscape(watchURL)

	var payload struct {
		Title        string `json:"title"`
		ThumbnailURL string `json:"thumbnail_url"`
	}

	if err := f.getJSON(ctx, endpoint, &payload); err != nil {
		return Metadata{}, err
	}
	if payload.Title == "" {
		return Metadata{}, fmt.Errorf("%w: missing title", ErrMetadataUnavailable)
	}

	return Metadata{
		Title:        payload.Title,
		ThumbnailURL: payload.ThumbnailURL,
	}, nil
}

func (f *YouTubeFetcher) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrMetadataUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMetadataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrMetadataUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrMetadataUnavailable, err)
	}
	return nil
}
