// Package store persists mapped rows in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/agentic-research/caomdb/api"
	"github.com/agentic-research/caomdb/internal/record"
	_ "modernc.org/sqlite"
)

var ErrNoObservation = errors.New("document has no observation row")

// Store writes observation documents to a SQLite database.
type Store struct {
	db     *sql.DB
	tables []*api.Table
}

// Open opens (creating if needed) the database at path. Foreign keys are
// enforced on every connection.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &Store{db: db, tables: api.Tables}, nil
}

func dsn(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// DB exposes the underlying handle for queries.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Prepare creates the tables, dropping existing ones first when drop is set.
func (s *Store) Prepare(ctx context.Context, drop bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	if drop {
		for i := len(s.tables) - 1; i >= 0; i-- {
			if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(s.tables[i].Name)); err != nil {
				return fmt.Errorf("drop %s: %w", s.tables[i].Name, err)
			}
		}
	}
	for _, t := range s.tables {
		for _, stmt := range CreateStatements(t) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("create %s: %w", t.Name, err)
			}
		}
	}
	return tx.Commit()
}

// WriteDocument stores one observation and its planes in a single
// transaction. An observation already stored under the same collection and
// observationID is replaced together with its planes.
func (s *Store) WriteDocument(ctx context.Context, rows []*record.Row) error {
	if len(rows) == 0 || rows[0].Table() != api.ObservationTable {
		return ErrNoObservation
	}
	for _, r := range rows {
		if err := r.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	obs := rows[0]
	collection, _ := obs.Get("collection")
	observationID, _ := obs.Get("observation_id")
	if err := deleteObservation(ctx, tx, collection, observationID); err != nil {
		return err
	}

	for _, r := range rows {
		if err := insert(ctx, tx, r); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func deleteObservation(ctx context.Context, tx *sql.Tx, collection, observationID any) error {
	const match = `SELECT "obsID" FROM "Observation" WHERE "collection" = ? AND "observationID" = ?`
	if _, err := tx.ExecContext(ctx, `DELETE FROM "Plane" WHERE "obsID" IN (`+match+`)`, collection, observationID); err != nil {
		return fmt.Errorf("replace planes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM "Observation" WHERE "collection" = ? AND "observationID" = ?`, collection, observationID); err != nil {
		return fmt.Errorf("replace observation: %w", err)
	}
	return nil
}

func insert(ctx context.Context, tx *sql.Tx, r *record.Row) error {
	names, args := r.Columns()
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(r.Table().Name),
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", "),
	)
	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r, err)
	}
	return nil
}

// Count returns the number of rows in a table.
func (s *Store) Count(ctx context.Context, t *api.Table) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quote(t.Name)).Scan(&n)
	return n, err
}
