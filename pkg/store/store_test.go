package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/paultcochrane/BackPAN-Index/pkg/errors"
	"github.com/paultcochrane/BackPAN-Index/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "backpan.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

type row struct {
	file    model.File
	release *model.Release
}

func seed(t *testing.T, s *Store, rows []row) {
	t.Helper()
	ctx := context.Background()
	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()
	for _, r := range rows {
		require.NoError(t, tx.UpsertFile(ctx, r.file))
		if r.release != nil {
			require.NoError(t, tx.UpsertRelease(ctx, *r.release))
		}
	}
	require.NoError(t, tx.Commit())
}

func release(prefix, dist, version, cpanid string, maturity model.Maturity) *model.Release {
	return &model.Release{
		File:      prefix,
		Dist:      dist,
		Version:   version,
		Maturity:  maturity,
		CPANID:    cpanid,
		DistVName: dist + "-" + version,
	}
}

func fixture() []row {
	return []row{
		{
			file:    model.File{Prefix: "authors/id/L/LB/LBROCARD/Acme-Colour-0.16.tar.gz", Date: 1014330111, Size: 3031},
			release: release("authors/id/L/LB/LBROCARD/Acme-Colour-0.16.tar.gz", "Acme-Colour", "0.16", "LBROCARD", model.MaturityReleased),
		},
		{
			file: model.File{Prefix: "authors/id/L/LB/LBROCARD/CHECKSUMS", Date: 1014330200, Size: 1200},
		},
		{
			file:    model.File{Prefix: "authors/id/L/LB/LBROCARD/Acme-Colour-0.20.tar.gz", Date: 1019000000, Size: 3100},
			release: release("authors/id/L/LB/LBROCARD/Acme-Colour-0.20.tar.gz", "Acme-Colour", "0.20", "LBROCARD", model.MaturityReleased),
		},
		{
			file:    model.File{Prefix: "authors/id/S/SC/SCHWERN/Test-More-0.47_01.tar.gz", Date: 1015000000, Size: 20000},
			release: release("authors/id/S/SC/SCHWERN/Test-More-0.47_01.tar.gz", "Test-More", "0.47_01", "SCHWERN", model.MaturityDeveloper),
		},
	}
}

func TestOpen(t *testing.T) {
	_, err := Open(context.Background(), " ")
	assert.ErrorIs(t, err, errors.ErrStore)

	s := openTestStore(t)
	assert.True(t, filepath.IsAbs(s.Path()))
	require.NoError(t, s.EnsureSchema(context.Background()), "schema creation is repeatable")
}

func TestRowCounts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	files, releases, err := s.RowCounts(ctx)
	require.NoError(t, err)
	assert.Zero(t, files)
	assert.Zero(t, releases)

	seed(t, s, fixture())
	files, releases, err = s.RowCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), files)
	assert.Equal(t, int64(3), releases)
}

func TestRowCountsWithoutSchema(t *testing.T) {
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "empty.sqlite"))
	require.NoError(t, err)
	defer s.Close()

	_, _, err = s.RowCounts(context.Background())
	assert.ErrorIs(t, err, errors.ErrStore)
}

func TestUpsertIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed(t, s, fixture())

	updated := fixture()[0]
	updated.file.Size = 4000
	seed(t, s, []row{updated})

	files, releases, err := s.RowCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), files)
	assert.Equal(t, int64(3), releases)

	f, err := s.File(ctx, updated.file.Prefix)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), f.Size)
}

func TestConstraints(t *testing.T) {
	tests := []struct {
		name string
		run  func(ctx context.Context, tx *Tx) error
	}{
		{
			name: "negative size",
			run: func(ctx context.Context, tx *Tx) error {
				return tx.UpsertFile(ctx, model.File{Prefix: "authors/id/X/XX/XXX/Bad-1.0.tar.gz", Date: 1, Size: -1})
			},
		},
		{
			name: "release without file",
			run: func(ctx context.Context, tx *Tx) error {
				return tx.UpsertRelease(ctx, *release("authors/id/X/XX/XXX/Gone-1.0.tar.gz", "Gone", "1.0", "XXX", model.MaturityReleased))
			},
		},
		{
			name: "empty dist",
			run: func(ctx context.Context, tx *Tx) error {
				prefix := "authors/id/X/XX/XXX/1.0.tar.gz"
				if err := tx.UpsertFile(ctx, model.File{Prefix: prefix, Date: 1, Size: 1}); err != nil {
					return err
				}
				return tx.UpsertRelease(ctx, *release(prefix, "", "1.0", "XXX", model.MaturityReleased))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openTestStore(t)
			ctx := context.Background()
			tx, err := s.Begin(ctx)
			require.NoError(t, err)
			defer func() { _ = tx.Rollback() }()

			assert.ErrorIs(t, tt.run(ctx, tx), errors.ErrStore)
		})
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertFile(ctx, fixture()[0].file))
	require.NoError(t, tx.Rollback())

	files, _, err := s.RowCounts(ctx)
	require.NoError(t, err)
	assert.Zero(t, files)
}

func TestFiles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed(t, s, fixture())

	files, err := s.Files(ctx)
	require.NoError(t, err)
	require.Len(t, files, 4)
	assert.Equal(t, "authors/id/L/LB/LBROCARD/Acme-Colour-0.16.tar.gz", files[0].Prefix)
	assert.Equal(t, "authors/id/S/SC/SCHWERN/Test-More-0.47_01.tar.gz", files[3].Prefix)

	f, err := s.File(ctx, "authors/id/L/LB/LBROCARD/CHECKSUMS")
	require.NoError(t, err)
	assert.Equal(t, int64(1014330200), f.Date)
	assert.Equal(t, int64(1200), f.Size)

	_, err = s.File(ctx, "authors/id/N/NO/NOBODY/none.tar.gz")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestDists(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed(t, s, fixture())

	names, err := s.DistNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme-Colour", "Test-More"}, names)

	dists, err := s.Dists(ctx)
	require.NoError(t, err)
	require.Len(t, dists, 2)
	assert.Equal(t, model.Dist{Name: "Acme-Colour", NumReleases: 2, FirstDate: 1014330111, LatestDate: 1019000000}, dists[0])

	dist, err := s.Dist(ctx, "Test-More")
	require.NoError(t, err)
	assert.Equal(t, int64(1), dist.NumReleases)

	_, err = s.Dist(ctx, "Nope")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestReleases(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed(t, s, fixture())

	all, err := s.Releases(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	acme, err := s.Releases(ctx, "Acme-Colour")
	require.NoError(t, err)
	require.Len(t, acme, 2)
	assert.Equal(t, "0.16", acme[0].Version)
	assert.Equal(t, "0.20", acme[1].Version)
	assert.Equal(t, int64(3031), acme[0].Size)
	assert.Equal(t, int64(1014330111), acme[0].Date)
	assert.NotZero(t, acme[0].ID)

	none, err := s.Releases(ctx, "Nope")
	require.NoError(t, err)
	assert.Empty(t, none)

	r, err := s.Release(ctx, "Test-More", "0.47_01")
	require.NoError(t, err)
	assert.Equal(t, model.MaturityDeveloper, r.Maturity)
	assert.True(t, r.IsDeveloper())
	assert.Equal(t, "SCHWERN", r.CPANID)

	_, err = s.Release(ctx, "Test-More", "0.47")
	assert.ErrorIs(t, err, errors.ErrNotFound)

	byFile, err := s.ReleaseByFile(ctx, "authors/id/L/LB/LBROCARD/Acme-Colour-0.20.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, "0.20", byFile.Version)

	_, err = s.ReleaseByFile(ctx, "authors/id/L/LB/LBROCARD/CHECKSUMS")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestFirstAndLatestRelease(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed(t, s, fixture())

	first, err := s.FirstRelease(ctx, "Acme-Colour")
	require.NoError(t, err)
	assert.Equal(t, "0.16", first.Version)

	latest, err := s.LatestRelease(ctx, "Acme-Colour")
	require.NoError(t, err)
	assert.Equal(t, "0.20", latest.Version)

	_, err = s.LatestRelease(ctx, "Nope")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestAuthors(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seed(t, s, fixture())

	authors, err := s.Authors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"LBROCARD", "SCHWERN"}, authors)

	releases, err := s.ReleasesByAuthor(ctx, "LBROCARD")
	require.NoError(t, err)
	assert.Len(t, releases, 2)

	distAuthors, err := s.DistAuthors(ctx, "Test-More")
	require.NoError(t, err)
	assert.Equal(t, []string{"SCHWERN"}, distAuthors)
}
