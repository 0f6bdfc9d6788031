package cache

import (
	"os"
	"path/filepath"

	"github.com/paultcochrane/BackPAN-Index/pkg/errors"
	"github.com/paultcochrane/BackPAN-Index/pkg/fsutil"
)

// DefaultManager implements the Manager interface for cache operations.
type DefaultManager struct {
	directory string
}

// NewManager creates a new cache manager.
func NewManager(directory string) *DefaultManager {
	return &DefaultManager{
		directory: directory,
	}
}

// Clean removes cached files according to the specified options. With no
// option set everything is removed.
func (cm *DefaultManager) Clean(options CleanOptions) (*CleanResult, error) {
	if cm.directory == "" {
		return nil, errors.ErrCacheDirectory
	}
	result := &CleanResult{}
	paths := NewPaths(cm.directory)

	if !options.Index && !options.Database {
		options.All = true
	}

	if options.All || options.Index {
		size, err := removeFiles(paths.Archive, paths.Index)
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "failed to clean index cache"), errors.ErrCacheClean)
		}
		result.IndexFreed = size
		result.TotalFreed += size
	}

	if options.All || options.Database {
		size, err := removeFiles(paths.DatabaseFiles()...)
		if err != nil {
			return nil, errors.Mark(errors.Wrap(err, "failed to clean database"), errors.ErrCacheClean)
		}
		result.DatabaseFreed = size
		result.TotalFreed += size
	}

	return result, nil
}

// GetInfo returns information about the cache.
func (cm *DefaultManager) GetInfo() (*Info, error) {
	info := &Info{Directory: cm.directory}

	for _, path := range NewPaths(cm.directory).All() {
		entry := Entry{Name: filepath.Base(path), Path: path}
		stat, err := os.Stat(path)
		switch {
		case err == nil:
			entry.Present = true
			entry.Size = stat.Size()
			entry.ModTime = stat.ModTime()
			info.TotalSize += entry.Size
		case !os.IsNotExist(err):
			return nil, errors.Wrapf(err, "failed to stat %s", path)
		}
		info.Entries = append(info.Entries, entry)
	}

	return info, nil
}

// GetDirectory returns the cache directory path.
func (cm *DefaultManager) GetDirectory() string {
	return cm.directory
}

// removeFiles deletes the given files and returns the bytes freed.
func removeFiles(paths ...string) (int64, error) {
	var freed int64
	for _, path := range paths {
		stat, err := os.Stat(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return freed, err
		}
		if err := fsutil.RemoveIfExists(path); err != nil {
			return freed, err
		}
		freed += stat.Size()
	}
	return freed, nil
}
