// Package download fetches release tarballs listed in the index from a
// BackPAN mirror.
package download

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/paultcochrane/BackPAN-Index/internal/logger"
	"github.com/paultcochrane/BackPAN-Index/pkg/errors"
	"github.com/paultcochrane/BackPAN-Index/pkg/fsutil"
	"github.com/paultcochrane/BackPAN-Index/pkg/model"
)

// DefaultUserAgent identifies release downloads to the mirror.
const DefaultUserAgent = "backpan/1.0"

var _ Manager = (*ManagerImpl)(nil)

// ManagerImpl is an HTTP download manager that verifies sizes against the
// index and de-duplicates identical URLs within a batch.
type ManagerImpl struct {
	client    *http.Client
	userAgent string
}

// NewManager creates a new download manager with the given timeout and user agent.
func NewManager(timeout time.Duration, userAgent string) *ManagerImpl {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &ManagerImpl{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// ItemFor describes the tarball of r on the given mirror.
func ItemFor(r model.Release, mirror string) Item {
	return Item{
		ID:       r.File,
		URL:      r.URL(mirror),
		Filename: r.Filename(),
		Size:     r.Size,
	}
}

// FetchAll downloads multiple items concurrently and returns a map of item IDs to downloaded file paths.
func (m *ManagerImpl) FetchAll(ctx context.Context, items []Item, opts Options) (map[string]string, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = max(2, runtime.NumCPU()/2)
	}
	if err := ensureDir(opts.Dir); err != nil {
		return nil, err
	}

	byURL, order, err := buildURLIndex(items)
	if err != nil {
		return nil, err
	}
	results, err := m.runDownloadWorkers(ctx, items, byURL, order, opts)
	if err != nil {
		return nil, err
	}
	return mapResultsByID(items, results), nil
}

// Fetch downloads a single item and returns the path to the downloaded file.
func (m *ManagerImpl) Fetch(ctx context.Context, item Item, opts Options) (string, error) {
	if err := ensureDir(opts.Dir); err != nil {
		return "", err
	}
	return m.fetchOne(ctx, item, opts)
}

func ensureDir(dir string) error {
	if dir == "" || !filepath.IsAbs(dir) {
		return fmt.Errorf("%w: download dir must be absolute: %q", errors.ErrInvalidPath, dir)
	}
	if err := fsutil.EnsureDir(dir); err != nil {
		return errors.Wrap(err, "could not create download dir")
	}
	return nil
}

func buildURLIndex(items []Item) (map[string][]int, []string, error) {
	byURL := make(map[string][]int)
	order := make([]string, 0, len(items))
	for i, it := range items {
		if it.URL == "" {
			return nil, nil, errors.Mark(fmt.Errorf("item %d has no URL", i), errors.ErrFetch)
		}
		if _, seen := byURL[it.URL]; !seen {
			order = append(order, it.URL)
		}
		byURL[it.URL] = append(byURL[it.URL], i)
	}
	return byURL, order, nil
}

func mapResultsByID(items []Item, results []string) map[string]string {
	out := make(map[string]string, len(items))
	for i, it := range items {
		out[it.ID] = results[i]
	}
	return out
}

func (m *ManagerImpl) runDownloadWorkers(ctx context.Context, items []Item, byURL map[string][]int, order []string, opts Options) ([]string, error) {
	results := make([]string, len(items))
	var firstErr error
	var mu sync.Mutex

	tasks := make(chan string)
	var wg sync.WaitGroup

	for w := 0; w < opts.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for urlStr := range tasks {
				idx := byURL[urlStr][0]
				dst, err := m.fetchOne(ctx, items[idx], opts)
				mu.Lock()
				if err != nil && firstErr == nil {
					firstErr = err
				}
				for _, i := range byURL[urlStr] {
					results[i] = dst
				}
				mu.Unlock()
			}
		}()
	}

	for _, urlStr := range order {
		tasks <- urlStr
	}
	close(tasks)
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func (m *ManagerImpl) fetchOne(ctx context.Context, item Item, opts Options) (string, error) {
	if item.URL == "" {
		return "", errors.Mark(fmt.Errorf("item %s has no URL", item.ID), errors.ErrFetch)
	}
	absPath := filepath.Join(opts.Dir, selectFilename(item))
	if tryReuseExisting(absPath, item.Size) {
		logger.Debug("Reusing downloaded file", logger.Fields{"path": absPath})
		return absPath, nil
	}

	resp, err := m.doRequest(ctx, item.URL)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	written, err := fsutil.WriteAtomic(absPath, resp.Body, fsutil.FileModeDefault)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "could not write %s", absPath), errors.ErrFetch)
	}
	if item.Size > 0 && written != item.Size {
		_ = fsutil.RemoveIfExists(absPath)
		return "", fmt.Errorf("%w: %s: got %d bytes, index lists %d", errors.ErrSizeMismatch, item.URL, written, item.Size)
	}

	logger.Debug("Downloaded file", logger.Fields{"url": item.URL, "path": absPath, "bytes": written})
	return absPath, nil
}

func selectFilename(item Item) string {
	if item.Filename != "" {
		return item.Filename
	}
	return path.Base(item.URL)
}

// tryReuseExisting reports whether absPath already holds the expected file.
// Without an expected size any non-empty file is reused.
func tryReuseExisting(absPath string, size int64) bool {
	st, err := os.Stat(absPath)
	if err != nil || st.Size() == 0 {
		return false
	}
	return size <= 0 || st.Size() == size
}

func (m *ManagerImpl) doRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to create request"), errors.ErrFetch)
	}
	req.Header.Set("User-Agent", m.userAgent)
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "download %s", url), errors.ErrFetch)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, errors.ErrStatus(url, resp.StatusCode)
	}
	return resp, nil
}
