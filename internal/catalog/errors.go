package catalog

import "errors"

var (
	// ErrFetcherUnavailable indicates the metadata fetcher is not configured.
	ErrFetcherUnavailable = errors.New("video metadata fetcher unavailable")
	// ErrMetadataUnavailable indicates the external source could not supply
	// metadata. Fetch failure and timeout are indistinguishable to callers.
	ErrMetadataUnavailable = errors.New("video metadata unavailable")
)
