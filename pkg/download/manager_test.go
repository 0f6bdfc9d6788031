package download

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paultcochrane/BackPAN-Index/pkg/errors"
	"github.com/paultcochrane/BackPAN-Index/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tarball = "Acme-Colour-0.16 tarball bytes"

func TestNewManager(t *testing.T) {
	tests := []struct {
		name       string
		timeout    time.Duration
		userAgent  string
		expectedUA string
	}{
		{
			name:       "default user agent",
			timeout:    time.Second,
			expectedUA: DefaultUserAgent,
		},
		{
			name:       "custom user agent",
			timeout:    2 * time.Second,
			userAgent:  "test-agent/1.0",
			expectedUA: "test-agent/1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.timeout, tt.userAgent)
			require.NotNil(t, m)
			assert.Equal(t, tt.timeout, m.client.Timeout)
			assert.Equal(t, tt.expectedUA, m.userAgent)
		})
	}
}

func TestItemFor(t *testing.T) {
	r := model.Release{
		File: "authors/id/L/LB/LBROCARD/Acme-Colour-0.16.tar.gz",
		Dist: "Acme-Colour",
		Size: 3031,
	}

	item := ItemFor(r, "https://backpan.example/")
	assert.Equal(t, r.File, item.ID)
	assert.Equal(t, "https://backpan.example/authors/id/L/LB/LBROCARD/Acme-Colour-0.16.tar.gz", item.URL)
	assert.Equal(t, "Acme-Colour-0.16.tar.gz", item.Filename)
	assert.Equal(t, int64(3031), item.Size)
}

func TestFetch(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		size      int64
		expectErr error
		errMsg    string
	}{
		{
			name: "successful download",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tarball))
			},
		},
		{
			name: "size matches index",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tarball))
			},
			size: int64(len(tarball)),
		},
		{
			name: "size differs from index",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tarball))
			},
			size:      5,
			expectErr: errors.ErrSizeMismatch,
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			expectErr: errors.ErrFetch,
			errMsg:    "unexpected status code: 404",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectErr: errors.ErrFetch,
			errMsg:    "unexpected status code: 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			dir := t.TempDir()
			item := Item{ID: "acme", URL: server.URL + "/authors/id/L/LB/LBROCARD/Acme-Colour-0.16.tar.gz", Size: tt.size}

			got, err := NewManager(time.Second, "").Fetch(context.Background(), item, Options{Dir: dir})
			if tt.expectErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.NoFileExists(t, filepath.Join(dir, "Acme-Colour-0.16.tar.gz"))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, "Acme-Colour-0.16.tar.gz"), got)
			content, err := os.ReadFile(got)
			require.NoError(t, err)
			assert.Equal(t, tarball, string(content))
		})
	}
}

func TestFetchRejectsRelativeDir(t *testing.T) {
	_, err := NewManager(time.Second, "").Fetch(context.Background(), Item{URL: "http://example.invalid/x.tar.gz"}, Options{Dir: "relative"})
	assert.ErrorIs(t, err, errors.ErrInvalidPath)

	_, err = NewManager(time.Second, "").FetchAll(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, errors.ErrInvalidPath)
}

func TestFetchReusesExistingFile(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(tarball))
	}))
	defer server.Close()

	dir := t.TempDir()
	m := NewManager(time.Second, "")
	item := Item{ID: "acme", URL: server.URL + "/Acme-Colour-0.16.tar.gz", Size: int64(len(tarball))}

	_, err := m.Fetch(context.Background(), item, Options{Dir: dir})
	require.NoError(t, err)
	_, err = m.Fetch(context.Background(), item, Options{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, int64(1), hits.Load())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Acme-Colour-0.16.tar.gz"), []byte("partial"), 0o644))
	_, err = m.Fetch(context.Background(), item, Options{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, int64(2), hits.Load(), "a file of the wrong size is fetched again")
}

func TestFetchAll(t *testing.T) {
	const numItems = 5
	responses := make(map[string]string)
	var hits atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		content, exists := responses[r.URL.Path]
		if !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(content))
	}))
	defer server.Close()

	var items []Item
	for i := 0; i < numItems; i++ {
		name := "/Dist-" + string(rune('a'+i)) + "-1.0.tar.gz"
		responses[name] = "content for " + name
		items = append(items, Item{ID: name, URL: server.URL + name})
	}
	// same URL under a second ID is downloaded once
	items = append(items, Item{ID: "duplicate", URL: items[0].URL})

	tests := []struct {
		name        string
		concurrency int
	}{
		{name: "default concurrency", concurrency: 0},
		{name: "three workers", concurrency: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits.Store(0)
			dir := t.TempDir()

			results, err := NewManager(5*time.Second, "").FetchAll(context.Background(), items, Options{Dir: dir, Concurrency: tt.concurrency})
			require.NoError(t, err)
			require.Len(t, results, numItems+1)
			assert.Equal(t, int64(numItems), hits.Load())
			assert.Equal(t, results[items[0].ID], results["duplicate"])

			for i, item := range items[:numItems] {
				got, ok := results[item.ID]
				require.True(t, ok, "missing result for item %d", i)

				content, err := os.ReadFile(got)
				require.NoError(t, err, "failed to read file for item %d", i)
				assert.Equal(t, responses[item.ID], string(content), "content mismatch for item %d", i)
			}
		})
	}

	t.Run("first error wins", func(t *testing.T) {
		broken := append([]Item{}, items...)
		broken = append(broken, Item{ID: "missing", URL: server.URL + "/Missing-1.0.tar.gz"})

		_, err := NewManager(5*time.Second, "").FetchAll(context.Background(), broken, Options{Dir: t.TempDir(), Concurrency: 2})
		assert.ErrorIs(t, err, errors.ErrFetch)
	})

	t.Run("item without url", func(t *testing.T) {
		_, err := NewManager(time.Second, "").FetchAll(context.Background(), []Item{{ID: "empty"}}, Options{Dir: t.TempDir()})
		assert.ErrorIs(t, err, errors.ErrFetch)
	})
}

func TestFetchAllLogsFromWorkers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer server.Close()

	items := make([]Item, 0, 8)
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("/Worker-%d-1.0.tar.gz", i)
		items = append(items, Item{ID: name, URL: server.URL + name})
	}

	results, err := NewManager(5*time.Second, "").FetchAll(context.Background(), items, Options{Dir: t.TempDir(), Concurrency: 8})
	require.NoError(t, err)
	assert.Len(t, results, 8)
}
