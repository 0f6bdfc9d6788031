// Package index keeps the local BackPAN database in step with the upstream
// index and answers queries over it.
package index

import (
	"bufio"
	"context"
	"os"
	"time"

	"github.com/paultcochrane/BackPAN-Index/internal/logger"
	"github.com/paultcochrane/BackPAN-Index/pkg/archive"
	"github.com/paultcochrane/BackPAN-Index/pkg/cache"
	"github.com/paultcochrane/BackPAN-Index/pkg/config"
	"github.com/paultcochrane/BackPAN-Index/pkg/distinfo"
	"github.com/paultcochrane/BackPAN-Index/pkg/errors"
	"github.com/paultcochrane/BackPAN-Index/pkg/fsutil"
	"github.com/paultcochrane/BackPAN-Index/pkg/http"
	"github.com/paultcochrane/BackPAN-Index/pkg/store"
)

// maxLineSize bounds a single index line; BackPAN paths are far shorter.
const maxLineSize = 1024 * 1024

// LoadStats summarises one Load call.
type LoadStats struct {
	Fetched  bool
	Rebuilt  bool
	Lines    int64
	Files    int64
	Releases int64
	Skipped  int64
	Duration time.Duration
}

// Loader fetches, extracts and loads the upstream index into the cache directory.
type Loader struct {
	settings  config.Settings
	paths     cache.Paths
	client    http.Client
	extractor Extractor
	detector  *cache.Detector
	now       func() time.Time
}

// LoaderOption customises a Loader.
type LoaderOption func(*Loader)

// WithClient replaces the HTTP client used to fetch the index.
func WithClient(client http.Client) LoaderOption {
	return func(l *Loader) { l.client = client }
}

// WithExtractor replaces the archive extractor.
func WithExtractor(extractor Extractor) LoaderOption {
	return func(l *Loader) { l.extractor = extractor }
}

// WithClock overrides the time source of the staleness checks.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) { l.now = now }
}

// NewLoader creates a Loader for the given settings.
func NewLoader(settings config.Settings, opts ...LoaderOption) *Loader {
	l := &Loader{
		settings:  settings,
		paths:     cache.NewPaths(settings.CacheDir),
		client:    http.NewHTTPClient(settings.HTTPTimeout),
		extractor: archive.NewManager(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.detector = cache.NewDetector(settings.CacheTTL, settings.NoCache, l.client)
	if l.now != nil {
		l.detector.Now = l.now
	}
	return l
}

// Paths returns the cache file locations used by the loader.
func (l *Loader) Paths() cache.Paths {
	return l.paths
}

// Load brings the database up to date. Fetch and extract failures abort before
// the database is touched.
func (l *Loader) Load(ctx context.Context) (*LoadStats, error) {
	start := time.Now()
	stats := &LoadStats{}

	if err := l.paths.Ensure(); err != nil {
		return nil, err
	}

	fetched, err := l.refresh(ctx)
	if err != nil {
		return nil, err
	}
	stats.Fetched = fetched

	rebuilt, err := l.rebuildIfStale(ctx, stats)
	if err != nil {
		return nil, err
	}
	stats.Rebuilt = rebuilt
	stats.Duration = time.Since(start)

	if rebuilt {
		logger.Info("Index loaded", logger.Fields{
			"lines":    stats.Lines,
			"files":    stats.Files,
			"releases": stats.Releases,
			"skipped":  stats.Skipped,
			"duration": stats.Duration.Round(time.Millisecond).String(),
		})
	}
	return stats, nil
}

func (l *Loader) refresh(ctx context.Context) (bool, error) {
	if l.detector.NeedsRefresh(ctx, l.paths.Archive, l.settings.IndexURL) {
		logger.Info("Fetching index", logger.Fields{"url": l.settings.IndexURL})
		if err := l.client.Download(ctx, l.settings.IndexURL, l.paths.Archive); err != nil {
			return false, err
		}
		return true, l.extract(ctx)
	}
	if !fsutil.Exists(l.paths.Index) {
		logger.Debug("Extracted index missing, extracting cached archive", logger.Fields{"path": l.paths.Archive})
		return false, l.extract(ctx)
	}
	return false, nil
}

func (l *Loader) extract(ctx context.Context) error {
	written, err := l.extractor.Extract(ctx, l.paths.Archive, l.paths.Index)
	if err != nil {
		return err
	}
	if err := fsutil.Touch(l.paths.Index, time.Now()); err != nil {
		logger.Warn("Could not touch extracted index", logger.Fields{"path": l.paths.Index, "error": err})
	}
	logger.Debug("Extracted index", logger.Fields{"path": l.paths.Index, "bytes": written})
	return nil
}

func (l *Loader) rebuildIfStale(ctx context.Context, stats *LoadStats) (bool, error) {
	var counter cache.RowCounter
	var existing *store.Store
	if fsutil.Exists(l.paths.Database) {
		var err error
		if existing, err = store.Open(ctx, l.paths.Database); err != nil {
			logger.Debug("Could not open existing database", logger.Fields{"error": err})
		} else {
			counter = existing
		}
	}

	stale := l.detector.NeedsRebuild(ctx, l.paths.Database, l.paths.Index, counter)
	if existing != nil {
		_ = existing.Close()
	}
	if !stale {
		return false, nil
	}

	for _, path := range l.paths.DatabaseFiles() {
		if err := fsutil.RemoveIfExists(path); err != nil {
			return false, errors.Mark(err, errors.ErrStore)
		}
	}

	s, err := store.Open(ctx, l.paths.Database)
	if err != nil {
		return false, err
	}
	defer func() { _ = s.Close() }()

	if err := s.EnsureSchema(ctx); err != nil {
		return false, err
	}
	return true, l.rebuild(ctx, s, stats)
}

func (l *Loader) rebuild(ctx context.Context, s *store.Store, stats *LoadStats) error {
	f, err := os.Open(l.paths.Index)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "open extracted index"), errors.ErrExtract)
	}
	defer func() { _ = f.Close() }()

	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	opts := distinfo.Options{OnlyAuthors: l.settings.OnlyAuthors}
	debug := logger.DebugEnabled()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		stats.Lines++
		file, release, reason := distinfo.ParseLineReason(scanner.Text(), opts)
		if reason != distinfo.SkipNone {
			stats.Skipped++
			if debug {
				logger.Debug("Skipping index line", logger.Fields{"line": stats.Lines, "reason": string(reason)})
			}
			continue
		}

		if err := tx.UpsertFile(ctx, *file); err != nil {
			return err
		}
		stats.Files++

		if release == nil {
			if debug && distinfo.IsReleaseCandidate(file.Prefix) {
				logger.Debug("No distribution in path", logger.Fields{"path": file.Prefix})
			}
			continue
		}
		if err := tx.UpsertRelease(ctx, *release); err != nil {
			return err
		}
		stats.Releases++
	}
	if err := scanner.Err(); err != nil {
		return errors.Mark(errors.Wrap(err, "read extracted index"), errors.ErrExtract)
	}

	return tx.Commit()
}
