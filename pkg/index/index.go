package index

import (
	"context"

	"github.com/paultcochrane/BackPAN-Index/pkg/config"
	"github.com/paultcochrane/BackPAN-Index/pkg/errors"
	"github.com/paultcochrane/BackPAN-Index/pkg/model"
	"github.com/paultcochrane/BackPAN-Index/pkg/store"
)

// Index answers typed queries over a loaded BackPAN database.
type Index struct {
	store    Store
	settings config.Settings
	stats    *LoadStats
}

// New loads the index described by cfg, fetching and rebuilding as needed,
// and opens the resulting database for queries.
func New(ctx context.Context, cfg *config.Config, opts ...LoaderOption) (*Index, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	loader := NewLoader(cfg.Settings, opts...)
	stats, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(ctx, loader.Paths().Database)
	if err != nil {
		return nil, err
	}
	return &Index{store: s, settings: cfg.Settings, stats: stats}, nil
}

// Stats returns what the load performed by New did, or nil.
func (i *Index) Stats() *LoadStats {
	return i.stats
}

// MirrorURL is the archive base used to build download links.
func (i *Index) MirrorURL() string {
	return i.settings.MirrorURL
}

// Close releases the database.
func (i *Index) Close() error {
	if i == nil || i.store == nil {
		return nil
	}
	return i.store.Close()
}

// Files returns every file in the index.
func (i *Index) Files(ctx context.Context) ([]model.File, error) {
	return i.store.Files(ctx)
}

// File returns the file with the given path.
func (i *Index) File(ctx context.Context, prefix string) (*model.File, error) {
	return i.store.File(ctx, prefix)
}

// Dists returns the distinct distribution names.
func (i *Index) Dists(ctx context.Context) ([]string, error) {
	return i.store.DistNames(ctx)
}

// DistSummaries returns every distribution with its counts and dates.
func (i *Index) DistSummaries(ctx context.Context) ([]model.Dist, error) {
	return i.store.Dists(ctx)
}

// Dist returns the named distribution or errors.ErrNotFound.
func (i *Index) Dist(ctx context.Context, name string) (*model.Dist, error) {
	return i.store.Dist(ctx, name)
}

// Releases returns the releases of dist, or all releases when dist is empty.
func (i *Index) Releases(ctx context.Context, dist string) ([]model.Release, error) {
	return i.store.Releases(ctx, dist)
}

// Release returns the release of dist with exactly the given version or
// errors.ErrNotFound.
func (i *Index) Release(ctx context.Context, dist, version string) (*model.Release, error) {
	return i.store.Release(ctx, dist, version)
}

// ReleaseByFile returns the release derived from the file at prefix.
func (i *Index) ReleaseByFile(ctx context.Context, prefix string) (*model.Release, error) {
	return i.store.ReleaseByFile(ctx, prefix)
}

// FirstRelease returns the earliest upload of dist.
func (i *Index) FirstRelease(ctx context.Context, dist string) (*model.Release, error) {
	return i.store.FirstRelease(ctx, dist)
}

// LatestRelease returns the most recent upload of dist.
func (i *Index) LatestRelease(ctx context.Context, dist string) (*model.Release, error) {
	return i.store.LatestRelease(ctx, dist)
}

// Authors returns every author id with at least one release.
func (i *Index) Authors(ctx context.Context) ([]string, error) {
	return i.store.Authors(ctx)
}

// ReleasesByAuthor returns the releases uploaded by cpanid.
func (i *Index) ReleasesByAuthor(ctx context.Context, cpanid string) ([]model.Release, error) {
	return i.store.ReleasesByAuthor(ctx, cpanid)
}

// DistAuthors returns the authors that uploaded releases of dist.
func (i *Index) DistAuthors(ctx context.Context, dist string) ([]string, error) {
	if _, err := i.store.Dist(ctx, dist); err != nil {
		return nil, err
	}
	return i.store.DistAuthors(ctx, dist)
}

// ReleasesByVersion returns the releases of dist ordered by version rather
// than upload date.
func (i *Index) ReleasesByVersion(ctx context.Context, dist string) ([]model.Release, error) {
	if dist == "" {
		return nil, errors.Wrap(errors.ErrNotFound, "distribution name required")
	}
	releases, err := i.store.Releases(ctx, dist)
	if err != nil {
		return nil, err
	}
	model.SortByVersion(releases)
	return releases, nil
}
