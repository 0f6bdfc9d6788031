package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/paultcochrane/BackPAN-Index/internal/logger"
)

// CacheOperation formats cache management results for display.
type CacheOperation struct {
	manager Manager
}

// NewCacheOperation creates a new cache operation instance.
func NewCacheOperation(manager Manager) *CacheOperation {
	return &CacheOperation{
		manager: manager,
	}
}

// Clean cleans the cache based on the provided options.
func (op *CacheOperation) Clean(all, index, database bool) (string, error) {
	options := CleanOptions{
		All:      all,
		Index:    index,
		Database: database,
	}

	logger.Debug("Cleaning cache", logger.Fields{
		"all":      options.All,
		"index":    options.Index,
		"database": options.Database,
	})

	result, err := op.manager.Clean(options)
	if err != nil {
		return "", fmt.Errorf("failed to clean cache: %w", err)
	}

	if result.TotalFreed == 0 {
		return "No files were removed from the cache.", nil
	}

	msg := fmt.Sprintf("Successfully cleaned cache. Freed %s of disk space.", formatBytes(result.TotalFreed))
	if result.IndexFreed > 0 {
		msg += fmt.Sprintf("\n- Index: %s", formatBytes(result.IndexFreed))
	}
	if result.DatabaseFreed > 0 {
		msg += fmt.Sprintf("\n- Database: %s", formatBytes(result.DatabaseFreed))
	}
	return msg, nil
}

// GetInfo returns information about the cache.
func (op *CacheOperation) GetInfo() (string, error) {
	info, err := op.manager.GetInfo()
	if err != nil {
		return "", fmt.Errorf("failed to get cache info: %w", err)
	}

	var b strings.Builder
	b.WriteString("Cache Information:\n")
	fmt.Fprintf(&b, "  Directory:    %s\n", info.Directory)
	fmt.Fprintf(&b, "  Total Size:   %s\n", formatBytes(info.TotalSize))
	for _, entry := range info.Entries {
		if !entry.Present {
			fmt.Fprintf(&b, "  %-20s missing\n", entry.Name)
			continue
		}
		fmt.Fprintf(&b, "  %-20s %s, updated %s (%s)\n",
			entry.Name,
			formatBytes(entry.Size),
			humanize.Time(entry.ModTime),
			entry.ModTime.Format(time.RFC1123),
		)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// GetDirectory returns the cache directory path.
func (op *CacheOperation) GetDirectory() string {
	return op.manager.GetDirectory()
}

func formatBytes(bytes int64) string {
	if bytes < 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return humanize.IBytes(uint64(bytes))
}
