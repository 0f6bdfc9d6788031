package cache

import (
	"context"
	"time"

	"github.com/paultcochrane/BackPAN-Index/internal/logger"
	"github.com/paultcochrane/BackPAN-Index/pkg/fsutil"
)

// Detector decides whether the cached index must be fetched again and whether
// the database must be rebuilt from it.
type Detector struct {
	TTL    time.Duration
	Force  bool
	Remote RemoteChecker
	Now    func() time.Time
}

// NewDetector creates a Detector. A zero ttl means DefaultTTL.
func NewDetector(ttl time.Duration, force bool, remote RemoteChecker) *Detector {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Detector{TTL: ttl, Force: force, Remote: remote, Now: time.Now}
}

func (d *Detector) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// NeedsRefresh reports whether localPath must be downloaded again from remoteURL.
//
// Within the TTL no request is made. Once the TTL has passed, localPath is
// touched to now before upstream is asked, so the next check waits another
// full TTL whatever the answer. A failed upstream check counts as "not newer".
func (d *Detector) NeedsRefresh(ctx context.Context, localPath, remoteURL string) bool {
	modTime, err := fsutil.ModTime(localPath)
	if err != nil {
		logger.Debug("Cached index missing, fetching", logger.Fields{"path": localPath})
		return true
	}
	if d.Force {
		logger.Debug("Cache disabled, fetching", logger.Fields{"path": localPath})
		return true
	}

	now := d.now()
	age := now.Sub(modTime)
	if age <= d.TTL {
		logger.Debug("Cached index is fresh", logger.Fields{"age": age.Round(time.Second).String(), "ttl": d.TTL.String()})
		return false
	}

	if err := fsutil.Touch(localPath, now); err != nil {
		logger.Warn("Could not touch cached index", logger.Fields{"path": localPath, "error": err})
	}

	if d.Remote == nil {
		return false
	}
	remoteTime, err := d.Remote.LastModified(ctx, remoteURL)
	if err != nil {
		logger.Warn("Could not check upstream index, keeping cached copy", logger.Fields{"url": remoteURL, "error": err})
		return false
	}

	newer := remoteTime.After(modTime)
	logger.Debug("Checked upstream index", logger.Fields{
		"remote_modified": remoteTime.UTC().Format(time.RFC3339),
		"local_modified":  modTime.UTC().Format(time.RFC3339),
		"newer":           newer,
	})
	return newer
}

// NeedsRebuild reports whether the database at dbPath must be rebuilt from the
// extracted index at indexPath.
func (d *Detector) NeedsRebuild(ctx context.Context, dbPath, indexPath string, counter RowCounter) bool {
	reason := d.RebuildReason(ctx, dbPath, indexPath, counter)
	if reason == "" {
		logger.Debug("Database is current", logger.Fields{"path": dbPath})
		return false
	}
	logger.Debug("Database needs rebuilding", logger.Fields{"path": dbPath, "reason": reason})
	return true
}

// RebuildReason is NeedsRebuild returning why; "" means no rebuild is needed.
func (d *Detector) RebuildReason(ctx context.Context, dbPath, indexPath string, counter RowCounter) string {
	dbTime, err := fsutil.ModTime(dbPath)
	if err != nil {
		return "database missing"
	}
	if d.Force {
		return "cache disabled"
	}
	if d.now().Sub(dbTime) > d.TTL {
		return "database older than ttl"
	}
	if indexTime, err := fsutil.ModTime(indexPath); err == nil && dbTime.Before(indexTime) {
		return "database older than index"
	}
	if counter == nil {
		return "row counts unavailable"
	}
	files, releases, err := counter.RowCounts(ctx)
	if err != nil {
		return "row counts unavailable: " + err.Error()
	}
	if files == 0 || releases == 0 {
		return "database is empty"
	}
	return ""
}
