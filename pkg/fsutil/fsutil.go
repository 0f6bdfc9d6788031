// Package fsutil provides small filesystem helpers shared by the cache and loader.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// EnsureDir creates a directory and all necessary parents with DirModeDefault.
func EnsureDir(path string) error {
	return os.MkdirAll(path, DirModeDefault)
}

// EnsureFileDir creates the parent directory of a file path if it doesn't exist.
func EnsureFileDir(filePath string) error {
	return EnsureDir(filepath.Dir(filePath))
}

// Exists reports whether path exists. Errors other than "not exist" count as existing.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// ModTime returns the modification time of path.
func ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Touch sets both access and modification time of an existing file to t.
func Touch(path string, t time.Time) error {
	if err := os.Chtimes(path, t, t); err != nil {
		return fmt.Errorf("failed to touch %s: %w", path, err)
	}
	return nil
}

// RemoveIfExists deletes path and ignores a missing file.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// WriteAtomic streams r into a temp file next to dst and renames it into place,
// so readers never observe a half-written dst.
func WriteAtomic(dst string, r io.Reader, perm os.FileMode) (written int64, err error) {
	if err := EnsureFileDir(dst); err != nil {
		return 0, fmt.Errorf("could not create directory for %s: %w", dst, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("could not create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if written, err = io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return 0, err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("could not sync file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return 0, fmt.Errorf("could not close file: %w", err)
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		return 0, fmt.Errorf("could not set permissions: %w", err)
	}
	if err = os.Rename(tmpPath, dst); err != nil {
		return 0, fmt.Errorf("could not finalize %s: %w", dst, err)
	}
	return written, nil
}

// GetCacheDir returns the platform-specific cache directory for the application
// On Linux: ~/.cache/backpan/
// On macOS: ~/Library/Caches/backpan/
// On Windows: %LOCALAPPDATA%\backpan\
func GetCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, AppName), nil
}
