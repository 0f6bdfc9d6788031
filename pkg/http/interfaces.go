package http

import (
	"context"
	"time"
)

// Client defines the interface for HTTP operations.
type Client interface {
	// Download fetches url into filePath, replacing it atomically.
	Download(ctx context.Context, url, filePath string) error

	// LastModified reports when the resource at url last changed upstream.
	LastModified(ctx context.Context, url string) (time.Time, error)
}

var _ Client = (*HTTPClient)(nil)
