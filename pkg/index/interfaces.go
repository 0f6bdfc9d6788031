package index

import (
	"context"

	"github.com/paultcochrane/BackPAN-Index/pkg/model"
)

// Extractor decompresses a downloaded index archive.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destPath string) (int64, error)
}

// Store is the read side of the index database used by Index.
type Store interface {
	Files(ctx context.Context) ([]model.File, error)
	File(ctx context.Context, prefix string) (*model.File, error)
	DistNames(ctx context.Context) ([]string, error)
	Dists(ctx context.Context) ([]model.Dist, error)
	Dist(ctx context.Context, name string) (*model.Dist, error)
	Releases(ctx context.Context, dist string) ([]model.Release, error)
	Release(ctx context.Context, dist, version string) (*model.Release, error)
	ReleaseByFile(ctx context.Context, prefix string) (*model.Release, error)
	FirstRelease(ctx context.Context, dist string) (*model.Release, error)
	LatestRelease(ctx context.Context, dist string) (*model.Release, error)
	Authors(ctx context.Context) ([]string, error)
	ReleasesByAuthor(ctx context.Context, cpanid string) ([]model.Release, error)
	DistAuthors(ctx context.Context, dist string) ([]string, error)
	Close() error
}
