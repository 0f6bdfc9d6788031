// Package store persists BackPAN files and releases in an embedded SQLite
// database and answers typed queries over them.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/paultcochrane/BackPAN-Index/pkg/errors"
	_ "modernc.org/sqlite"
)

// DefaultBusyTimeout is how long SQLite waits on a locked database.
const DefaultBusyTimeout = 5 * time.Second

// Store wraps a pooled sqlx.DB connection to the index database.
type Store struct {
	db   *sqlx.DB
	path string
}

// Open connects to the SQLite database at path, creating the file if needed.
// The schema is not touched; call EnsureSchema before loading.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.Mark(fmt.Errorf("sqlite path required"), errors.ErrStore)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Mark(fmt.Errorf("resolve sqlite path: %w", err), errors.ErrStore)
	}

	busy := int(DefaultBusyTimeout / time.Millisecond)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", abs, busy)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Mark(fmt.Errorf("open sqlite: %w", err), errors.ErrStore)
	}

	pingCtx, cancel := context.WithTimeout(ctx, DefaultBusyTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Mark(fmt.Errorf("ping sqlite: %w", err), errors.ErrStore)
	}

	return &Store{db: db, path: abs}, nil
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the absolute path of the database file.
func (s *Store) Path() string {
	return s.path
}

// EnsureSchema creates the tables, indexes and view in one transaction.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for i, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("execute schema statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// RowCounts returns the number of rows in the files and releases tables.
func (s *Store) RowCounts(ctx context.Context) (files, releases int64, err error) {
	if err := s.db.GetContext(ctx, &files, `SELECT COUNT(*) FROM files`); err != nil {
		return 0, 0, errors.Mark(fmt.Errorf("count files: %w", err), errors.ErrStore)
	}
	if err := s.db.GetContext(ctx, &releases, `SELECT COUNT(*) FROM releases`); err != nil {
		return 0, 0, errors.Mark(fmt.Errorf("count releases: %w", err), errors.ErrStore)
	}
	return files, releases, nil
}

func (s *Store) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return errors.Mark(fmt.Errorf("begin transaction: %w", err), errors.ErrStore)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return errors.Mark(err, errors.ErrStore)
	}
	if err := tx.Commit(); err != nil {
		return errors.Mark(fmt.Errorf("commit: %w", err), errors.ErrStore)
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS files (
		prefix TEXT PRIMARY KEY,
		date   INTEGER NOT NULL,
		size   INTEGER NOT NULL CHECK (size >= 0)
	);`,
	`CREATE TABLE IF NOT EXISTS releases (
		id        INTEGER PRIMARY KEY,
		file      TEXT NOT NULL UNIQUE REFERENCES files(prefix),
		dist      TEXT NOT NULL CHECK (dist <> ''),
		version   TEXT NOT NULL,
		maturity  TEXT NOT NULL,
		cpanid    TEXT NOT NULL,
		distvname TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_releases_dist ON releases(dist);`,
	`CREATE INDEX IF NOT EXISTS idx_releases_cpanid ON releases(cpanid);`,
	`CREATE VIEW IF NOT EXISTS distributions AS
		SELECT r.dist       AS name,
		       COUNT(*)     AS num_releases,
		       MIN(f.date)  AS first_date,
		       MAX(f.date)  AS latest_date
		FROM releases r
		JOIN files f ON f.prefix = r.file
		GROUP BY r.dist;`,
}
