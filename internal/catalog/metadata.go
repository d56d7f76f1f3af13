package catalog

import "context"

// Metadata captures the subset of external video details used by ReelPoint.
type Metadata struct {
	Title        string
	Description  string
	ThumbnailURL string
	Tags         []string
}

// MetadataFetcher returns metadata for the supplied external source id.
type MetadataFetcher interface {
	Fetch(ctx context.Context, sourceID string) (Metadata, error)
}
