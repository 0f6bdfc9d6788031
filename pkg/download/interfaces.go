package download

import (
	"context"
)

// Manager downloads release tarballs from a BackPAN mirror.
type Manager interface {
	// FetchAll downloads all items, respecting Options (e.g., concurrency and target dir).
	// It returns a map from Item.ID to absolute local file path.
	FetchAll(ctx context.Context, items []Item, opts Options) (map[string]string, error)

	// Fetch downloads a single item into opts.Dir and returns the absolute local file path.
	Fetch(ctx context.Context, item Item, opts Options) (string, error)
}

// Item represents one remote file to download.
type Item struct {
	ID       string // stable identifier, the archive path of the file
	URL      string // source URL to download
	Filename string // local filename; derived from URL when empty
	Size     int64  // expected size from the index; verified when positive
}

// Options control the behavior of the download manager.
type Options struct {
	Dir         string // destination directory. Must be absolute.
	Concurrency int    // number of parallel downloads; if <=0, a sane default is used
}
