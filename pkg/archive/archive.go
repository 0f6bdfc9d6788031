// Package archive decompresses the downloaded index and, for fixtures and
// mirrors, compresses plain index files.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mholt/archives"
	"github.com/paultcochrane/BackPAN-Index/pkg/errors"
	"github.com/paultcochrane/BackPAN-Index/pkg/fsutil"
)

// ErrNotCompressed is returned when the input is not in a compression format
// that can be decompressed as a single stream.
var ErrNotCompressed = fmt.Errorf("not a compressed stream")

// Manager handles decompression and compression of single-file streams.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// Extract decompresses archivePath into destPath. The format is identified
// from the file name and its header; any compression mholt/archives knows is
// accepted. All failures wrap errors.ErrExtract and leave destPath untouched.
func (am *Manager) Extract(ctx context.Context, archivePath, destPath string) (int64, error) {
	src, err := os.Open(archivePath)
	if err != nil {
		return 0, errors.Mark(errors.Wrap(err, "failed to open archive file"), errors.ErrExtract)
	}
	defer func() { _ = src.Close() }()

	format, stream, err := archives.Identify(ctx, archivePath, src)
	if err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "failed to identify %s", archivePath), errors.ErrExtract)
	}

	decompressor, ok := format.(archives.Decompressor)
	if !ok {
		return 0, errors.Mark(errors.Wrapf(ErrNotCompressed, "%s is %s", archivePath, format.Extension()), errors.ErrExtract)
	}

	reader, err := decompressor.OpenReader(stream)
	if err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "failed to open %s stream", format.Extension()), errors.ErrExtract)
	}
	defer func() { _ = reader.Close() }()

	written, err := fsutil.WriteAtomic(destPath, &contextReader{ctx: ctx, r: reader}, fsutil.FileModeDefault)
	if err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "failed to decompress %s", archivePath), errors.ErrExtract)
	}
	return written, nil
}

// Compress gzips srcPath into archivePath.
func (am *Manager) Compress(ctx context.Context, srcPath, archivePath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer func() { _ = src.Close() }()

	if err := fsutil.EnsureFileDir(archivePath); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	file, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", archivePath, err)
	}
	defer func() {
		_ = file.Sync()
		_ = file.Close()
	}()

	writer, err := archives.Gz{}.OpenWriter(file)
	if err != nil {
		return fmt.Errorf("failed to open gzip writer: %w", err)
	}

	if _, err := io.Copy(writer, &contextReader{ctx: ctx, r: src}); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to compress %s: %w", srcPath, err)
	}
	return writer.Close()
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
