package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/paultcochrane/BackPAN-Index/pkg/errors"
	"github.com/paultcochrane/BackPAN-Index/pkg/model"
)

const (
	upsertFileSQL = `INSERT INTO files (prefix, date, size) VALUES (:prefix, :date, :size)
		ON CONFLICT(prefix) DO UPDATE SET date = excluded.date, size = excluded.size`

	upsertReleaseSQL = `INSERT INTO releases (file, dist, version, maturity, cpanid, distvname)
		VALUES (:file, :dist, :version, :maturity, :cpanid, :distvname)
		ON CONFLICT(file) DO UPDATE SET
			dist = excluded.dist,
			version = excluded.version,
			maturity = excluded.maturity,
			cpanid = excluded.cpanid,
			distvname = excluded.distvname`
)

// Tx is a write transaction with prepared upsert statements.
type Tx struct {
	tx          *sqlx.Tx
	fileStmt    *sqlx.NamedStmt
	releaseStmt *sqlx.NamedStmt
}

// Begin starts a write transaction.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Mark(fmt.Errorf("begin transaction: %w", err), errors.ErrStore)
	}
	fileStmt, err := tx.PrepareNamedContext(ctx, upsertFileSQL)
	if err != nil {
		_ = tx.Rollback()
		return nil, errors.Mark(fmt.Errorf("prepare file upsert: %w", err), errors.ErrStore)
	}
	releaseStmt, err := tx.PrepareNamedContext(ctx, upsertReleaseSQL)
	if err != nil {
		_ = fileStmt.Close()
		_ = tx.Rollback()
		return nil, errors.Mark(fmt.Errorf("prepare release upsert: %w", err), errors.ErrStore)
	}
	return &Tx{tx: tx, fileStmt: fileStmt, releaseStmt: releaseStmt}, nil
}

// UpsertFile inserts f or replaces the date and size of the file with the same prefix.
func (t *Tx) UpsertFile(ctx context.Context, f model.File) error {
	if _, err := t.fileStmt.ExecContext(ctx, f); err != nil {
		return errors.Mark(fmt.Errorf("upsert file %s: %w", f.Prefix, err), errors.ErrStore)
	}
	return nil
}

// UpsertRelease inserts r or replaces the release owned by the same file.
func (t *Tx) UpsertRelease(ctx context.Context, r model.Release) error {
	if _, err := t.releaseStmt.ExecContext(ctx, r); err != nil {
		return errors.Mark(fmt.Errorf("upsert release %s: %w", r.File, err), errors.ErrStore)
	}
	return nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	t.closeStmts()
	if err := t.tx.Commit(); err != nil {
		return errors.Mark(fmt.Errorf("commit: %w", err), errors.ErrStore)
	}
	return nil
}

// Rollback aborts the transaction. It is safe to call after Commit.
func (t *Tx) Rollback() error {
	t.closeStmts()
	return t.tx.Rollback()
}

func (t *Tx) closeStmts() {
	_ = t.fileStmt.Close()
	_ = t.releaseStmt.Close()
}
