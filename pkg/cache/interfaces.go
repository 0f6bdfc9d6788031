//go:generate mockgen -destination=./mocks/cache.go . RemoteChecker,RowCounter
package cache

import (
	"context"
	"time"
)

// RemoteChecker reports when an upstream resource last changed.
type RemoteChecker interface {
	LastModified(ctx context.Context, url string) (time.Time, error)
}

// RowCounter reports how many rows the local store holds.
type RowCounter interface {
	RowCounts(ctx context.Context) (files, releases int64, err error)
}

// Manager defines the interface for cache management operations.
type Manager interface {
	Clean(options CleanOptions) (*CleanResult, error)
	GetInfo() (*Info, error)
	GetDirectory() string
}

// CleanOptions specifies what to clean from the cache.
type CleanOptions struct {
	All      bool
	Index    bool // downloaded archive and extracted index
	Database bool
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	TotalFreed    int64
	IndexFreed    int64
	DatabaseFreed int64
}

// Entry describes one cache file.
type Entry struct {
	Name    string
	Path    string
	Present bool
	Size    int64
	ModTime time.Time
}

// Info represents cache information.
type Info struct {
	Directory string
	TotalSize int64
	Entries   []Entry
}
