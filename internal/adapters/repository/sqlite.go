package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/okian/folio/internal/domain/model"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id       TEXT PRIMARY KEY,
    type     TEXT NOT NULL,
    position INTEGER NOT NULL,
    body     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_type_position ON documents(type, position);
`

// SQLiteStore persists documents in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the database at path. ":memory:" opens a
// private in-memory database. Record count metrics are published until ctx
// is done.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	s := &SQLiteStore{db: db}
	reportCounts(ctx, s, newOptions(opts).metricsUpdateInterval)
	return s, nil
}

// FetchAll returns the bodies of every document of tag ordered by position.
func (s *SQLiteStore) FetchAll(ctx context.Context, tag model.TypeTag) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM documents WHERE type = ? ORDER BY position, id`, tag.String())
	if err != nil {
		return nil, s.wrap("query documents", err)
	}
	defer func() { _ = rows.Close() }()

	out := []json.RawMessage{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("iterate documents", err)
	}
	return out, nil
}

// Put inserts or replaces documents by id in one transaction.
func (s *SQLiteStore) Put(ctx context.Context, docs ...Document) error {
	if err := validateAll(docs); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, d := range docs {
			if err := upsertDocument(ctx, tx, d); err != nil {
				return err
			}
		}
		return nil
	})
}

// Replace swaps every document of tag for docs in one transaction.
func (s *SQLiteStore) Replace(ctx context.Context, tag model.TypeTag, docs ...Document) error {
	if err := validateAll(docs); err != nil {
		return err
	}
	for _, d := range docs {
		if d.Type != tag {
			return fmt.Errorf("%w: %s is %q, not %q", ErrTypeMismatch, d.ID, d.Type, tag)
		}
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE type = ?`, tag.String()); err != nil {
			return fmt.Errorf("delete %s: %w", tag, err)
		}
		for _, d := range docs {
			if err := upsertDocument(ctx, tx, d); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of documents of tag.
func (s *SQLiteStore) Count(ctx context.Context, tag model.TypeTag) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE type = ?`, tag.String()).Scan(&n)
	if err != nil {
		return 0, s.wrap("count documents", err)
	}
	return n, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrap("begin", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) wrap(op string, err error) error {
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// upsertDocument keeps the position of an existing id of the same type and
// appends otherwise.
func upsertDocument(ctx context.Context, tx *sql.Tx, d Document) error {
	var (
		position int64
		existing string
	)
	err := tx.QueryRowContext(ctx, `SELECT type, position FROM documents WHERE id = ?`, d.ID).Scan(&existing, &position)
	switch {
	case errors.Is(err, sql.ErrNoRows), err == nil && existing != d.Type.String():
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(position), -1) + 1 FROM documents WHERE type = ?`, d.Type.String()).Scan(&position); err != nil {
			return fmt.Errorf("next position: %w", err)
		}
	case err != nil:
		return fmt.Errorf("lookup %s: %w", d.ID, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, type, position, body) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET type = excluded.type, position = excluded.position, body = excluded.body`,
		d.ID, d.Type.String(), position, string(d.Body))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", d.ID, err)
	}
	return nil
}
