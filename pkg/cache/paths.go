package cache

import (
	"path/filepath"

	"github.com/paultcochrane/BackPAN-Index/pkg/errors"
	"github.com/paultcochrane/BackPAN-Index/pkg/fsutil"
)

// Paths is the layout of a cache directory.
type Paths struct {
	Dir      string
	Archive  string
	Index    string
	Database string
}

// NewPaths resolves the cache file locations below dir.
func NewPaths(dir string) Paths {
	return Paths{
		Dir:      dir,
		Archive:  filepath.Join(dir, ArchiveName),
		Index:    filepath.Join(dir, IndexName),
		Database: filepath.Join(dir, DatabaseName),
	}
}

// Ensure creates the cache directory.
func (p Paths) Ensure() error {
	if p.Dir == "" {
		return errors.ErrCacheDirectory
	}
	if err := fsutil.EnsureDir(p.Dir); err != nil {
		return errors.Wrapf(err, "failed to create cache directory %s", p.Dir)
	}
	return nil
}

// DatabaseFiles returns the database and the journal files SQLite may leave
// beside it.
func (p Paths) DatabaseFiles() []string {
	return []string{p.Database, p.Database + "-journal", p.Database + "-wal", p.Database + "-shm"}
}

// All returns the cache files in a stable order.
func (p Paths) All() []string {
	return []string{p.Archive, p.Index, p.Database}
}
