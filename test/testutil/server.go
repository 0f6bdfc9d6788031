// Package testutil serves BackPAN indexes over HTTP for tests.
package testutil

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paultcochrane/BackPAN-Index/pkg/archive"
	"github.com/paultcochrane/BackPAN-Index/pkg/config"
	"github.com/paultcochrane/BackPAN-Index/pkg/fsutil"
)

// IndexPath is where the test server publishes the index.
const IndexPath = "/backpan-full-index.txt.gz"

// TestServer serves a gzipped index at IndexPath and counts requests.
type TestServer struct {
	Server *httptest.Server
	URL    string

	mu           sync.Mutex
	body         []byte
	lastModified time.Time
	status       int
	files        map[string][]byte

	gets  atomic.Int64
	heads atomic.Int64
}

// NewTestServer starts a server publishing lines as a gzipped index, last
// modified at modTime. The server is closed when the test ends.
func NewTestServer(t *testing.T, lines []string, modTime time.Time) *TestServer {
	t.Helper()
	ts := &TestServer{status: http.StatusOK, files: make(map[string][]byte)}
	ts.SetIndex(t, lines, modTime)

	ts.Server = httptest.NewServer(http.HandlerFunc(ts.serve))
	ts.URL = ts.Server.URL + IndexPath
	t.Cleanup(ts.Server.Close)
	return ts
}

// SetIndex replaces the published index.
func (ts *TestServer) SetIndex(t *testing.T, lines []string, modTime time.Time) {
	t.Helper()
	ts.SetBody(GzipIndex(t, lines), modTime)
}

// SetBody publishes raw bytes, which need not be a valid archive.
func (ts *TestServer) SetBody(body []byte, modTime time.Time) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.body = body
	ts.lastModified = modTime
}

// SetStatus makes every request answer with status and no body.
func (ts *TestServer) SetStatus(status int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.status = status
}

// AddFile publishes body at path so the server can act as a mirror.
func (ts *TestServer) AddFile(path string, body []byte) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.files["/"+strings.TrimPrefix(path, "/")] = body
}

// Gets returns the number of GET requests served.
func (ts *TestServer) Gets() int64 {
	return ts.gets.Load()
}

// Heads returns the number of HEAD requests served.
func (ts *TestServer) Heads() int64 {
	return ts.heads.Load()
}

func (ts *TestServer) serve(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ts.gets.Add(1)
	case http.MethodHead:
		ts.heads.Add(1)
	}

	ts.mu.Lock()
	status, body, modTime := ts.status, ts.body, ts.lastModified
	file, isFile := ts.files[r.URL.Path]
	ts.mu.Unlock()

	if isFile {
		_, _ = w.Write(file)
		return
	}
	if r.URL.Path != IndexPath {
		http.NotFound(w, r)
		return
	}

	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/gzip")
	http.ServeContent(w, r, IndexPath, modTime, bytes.NewReader(body))
}

// GzipIndex compresses lines into the BackPAN index format.
func GzipIndex(t *testing.T, lines []string) []byte {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "index.txt")
	dst := filepath.Join(dir, "index.txt.gz")

	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(src, []byte(content), fsutil.FileModeDefault); err != nil {
		t.Fatalf("Failed to write index: %v", err)
	}
	if err := archive.NewManager().Compress(context.Background(), src, dst); err != nil {
		t.Fatalf("Failed to compress index: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("Failed to read compressed index: %v", err)
	}
	return data
}

// SetupTestConfig returns a configuration pointing at indexURL with its cache
// in a fresh temporary directory.
func SetupTestConfig(t *testing.T, indexURL string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Settings.CacheDir = t.TempDir()
	cfg.Settings.IndexURL = indexURL
	cfg.Settings.HTTPTimeout = 10 * time.Second
	return cfg
}

// WriteTestConfig saves cfg to a config.yaml in a temporary directory and
// returns its path.
func WriteTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}
