// Package http fetches the BackPAN index and asks the upstream server when it
// last changed.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/paultcochrane/BackPAN-Index/internal/logger"
	"github.com/paultcochrane/BackPAN-Index/pkg/errors"
	"github.com/paultcochrane/BackPAN-Index/pkg/fsutil"
)

// DefaultUserAgent identifies backpan to the upstream server.
const DefaultUserAgent = "backpan/1.0"

// ErrNoLastModified is returned when a HEAD response carries no usable Last-Modified header.
var ErrNoLastModified = fmt.Errorf("no Last-Modified header")

// HTTPClient handles HTTP operations against the index host.
type HTTPClient struct {
	client    *http.Client
	userAgent string
}

// NewHTTPClient creates a new HTTP client. A zero timeout means no timeout.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: DefaultUserAgent,
	}
}

// Download fetches url into filePath. The file is replaced atomically, so a
// failed download leaves any previous copy intact. Every failure wraps ErrFetch.
func (hc *HTTPClient) Download(ctx context.Context, url, filePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "failed to create request"), errors.ErrFetch)
	}
	req.Header.Set("User-Agent", hc.userAgent)

	resp, err := hc.client.Do(req)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to download %s", url), errors.ErrFetch)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.ErrStatus(url, resp.StatusCode)
	}

	written, err := fsutil.WriteAtomic(filePath, resp.Body, fsutil.FileModeDefault)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "could not write %s", filePath), errors.ErrFetch)
	}

	logger.Debug("Downloaded index", logger.Fields{"url": url, "path": filePath, "bytes": written})
	return nil
}

// LastModified issues a HEAD request and returns the Last-Modified time of url.
func (hc *HTTPClient) LastModified(ctx context.Context, url string) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, http.NoBody)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", hc.userAgent)

	resp, err := hc.client.Do(req)
	if err != nil {
		return time.Time{}, errors.Mark(errors.Wrapf(err, "HEAD %s", url), errors.ErrFetch)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return time.Time{}, errors.ErrStatus(url, resp.StatusCode)
	}

	header := resp.Header.Get("Last-Modified")
	if header == "" {
		return time.Time{}, ErrNoLastModified
	}
	modified, err := http.ParseTime(header)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrNoLastModified, "unparseable %q", header)
	}
	return modified, nil
}
