package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/paultcochrane/BackPAN-Index/pkg/errors"
	"github.com/paultcochrane/BackPAN-Index/pkg/model"
)

const releaseColumns = `r.id, r.file, r.dist, r.version, r.maturity, r.cpanid, r.distvname, f.date, f.size
	FROM releases r JOIN files f ON f.prefix = r.file`

// Files returns every file ordered by prefix.
func (s *Store) Files(ctx context.Context) ([]model.File, error) {
	files := []model.File{}
	if err := s.db.SelectContext(ctx, &files, `SELECT prefix, date, size FROM files ORDER BY prefix`); err != nil {
		return nil, storeErr("select files", err)
	}
	return files, nil
}

// File returns the file with the given prefix.
func (s *Store) File(ctx context.Context, prefix string) (*model.File, error) {
	var file model.File
	if err := s.db.GetContext(ctx, &file, `SELECT prefix, date, size FROM files WHERE prefix = ?`, prefix); err != nil {
		return nil, lookupErr(fmt.Sprintf("file %s", prefix), err)
	}
	return &file, nil
}

// DistNames returns the distinct distribution names in order.
func (s *Store) DistNames(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := s.db.SelectContext(ctx, &names, `SELECT name FROM distributions ORDER BY name`); err != nil {
		return nil, storeErr("select distribution names", err)
	}
	return names, nil
}

// Dists returns every distribution with its release counts and dates.
func (s *Store) Dists(ctx context.Context) ([]model.Dist, error) {
	dists := []model.Dist{}
	if err := s.db.SelectContext(ctx, &dists, `SELECT name, num_releases, first_date, latest_date FROM distributions ORDER BY name`); err != nil {
		return nil, storeErr("select distributions", err)
	}
	return dists, nil
}

// Dist returns the named distribution.
func (s *Store) Dist(ctx context.Context, name string) (*model.Dist, error) {
	var dist model.Dist
	err := s.db.GetContext(ctx, &dist,
		`SELECT name, num_releases, first_date, latest_date FROM distributions WHERE name = ?`, name)
	if err != nil {
		return nil, lookupErr(fmt.Sprintf("distribution %s", name), err)
	}
	return &dist, nil
}

// Releases returns the releases of dist ordered by upload date, or every
// release when dist is empty.
func (s *Store) Releases(ctx context.Context, dist string) ([]model.Release, error) {
	releases := []model.Release{}
	var err error
	if dist == "" {
		err = s.db.SelectContext(ctx, &releases, `SELECT `+releaseColumns+` ORDER BY r.dist, f.date, r.id`)
	} else {
		err = s.db.SelectContext(ctx, &releases, `SELECT `+releaseColumns+` WHERE r.dist = ? ORDER BY f.date, r.id`, dist)
	}
	if err != nil {
		return nil, storeErr("select releases", err)
	}
	return releases, nil
}

// Release returns the release of dist with exactly the given version. When
// several files carry the same dist and version the earliest upload wins.
func (s *Store) Release(ctx context.Context, dist, version string) (*model.Release, error) {
	var release model.Release
	err := s.db.GetContext(ctx, &release,
		`SELECT `+releaseColumns+` WHERE r.dist = ? AND r.version = ? ORDER BY f.date, r.id LIMIT 1`, dist, version)
	if err != nil {
		return nil, lookupErr(fmt.Sprintf("release %s %s", dist, version), err)
	}
	return &release, nil
}

// ReleaseByFile returns the release owned by the file with the given prefix.
func (s *Store) ReleaseByFile(ctx context.Context, prefix string) (*model.Release, error) {
	var release model.Release
	if err := s.db.GetContext(ctx, &release, `SELECT `+releaseColumns+` WHERE r.file = ?`, prefix); err != nil {
		return nil, lookupErr(fmt.Sprintf("release for %s", prefix), err)
	}
	return &release, nil
}

// FirstRelease returns the earliest upload of dist.
func (s *Store) FirstRelease(ctx context.Context, dist string) (*model.Release, error) {
	return s.edgeRelease(ctx, dist, "ASC")
}

// LatestRelease returns the most recent upload of dist.
func (s *Store) LatestRelease(ctx context.Context, dist string) (*model.Release, error) {
	return s.edgeRelease(ctx, dist, "DESC")
}

func (s *Store) edgeRelease(ctx context.Context, dist, direction string) (*model.Release, error) {
	var release model.Release
	query := fmt.Sprintf(`SELECT %s WHERE r.dist = ? ORDER BY f.date %s, r.id %s LIMIT 1`, releaseColumns, direction, direction)
	if err := s.db.GetContext(ctx, &release, query, dist); err != nil {
		return nil, lookupErr(fmt.Sprintf("distribution %s", dist), err)
	}
	return &release, nil
}

// Authors returns the distinct author ids that uploaded a release.
func (s *Store) Authors(ctx context.Context) ([]string, error) {
	authors := []string{}
	if err := s.db.SelectContext(ctx, &authors,
		`SELECT DISTINCT cpanid FROM releases WHERE cpanid <> '' ORDER BY cpanid`); err != nil {
		return nil, storeErr("select authors", err)
	}
	return authors, nil
}

// ReleasesByAuthor returns the releases uploaded by cpanid ordered by upload date.
func (s *Store) ReleasesByAuthor(ctx context.Context, cpanid string) ([]model.Release, error) {
	releases := []model.Release{}
	if err := s.db.SelectContext(ctx, &releases,
		`SELECT `+releaseColumns+` WHERE r.cpanid = ? ORDER BY f.date, r.id`, cpanid); err != nil {
		return nil, storeErr("select releases by author", err)
	}
	return releases, nil
}

// DistAuthors returns the distinct author ids that uploaded releases of dist.
func (s *Store) DistAuthors(ctx context.Context, dist string) ([]string, error) {
	authors := []string{}
	if err := s.db.SelectContext(ctx, &authors,
		`SELECT DISTINCT cpanid FROM releases WHERE dist = ? AND cpanid <> '' ORDER BY cpanid`, dist); err != nil {
		return nil, storeErr("select distribution authors", err)
	}
	return authors, nil
}

func storeErr(op string, err error) error {
	return errors.Mark(fmt.Errorf("%s: %w", op, err), errors.ErrStore)
}

func lookupErr(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(errors.ErrNotFound, what)
	}
	return storeErr("select "+what, err)
}
