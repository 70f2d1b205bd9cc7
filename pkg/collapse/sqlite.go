package collapse

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	errs "github.com/sebastiansztangierski/ancestral-scribe/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS collapse_state (
	tree_id    TEXT PRIMARY KEY,
	collapsed  TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore keeps collapse state in a single SQLite table.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (and creates if needed) the database at path.
// If path is empty, defaults to ~/.config/ancestral-scribe/collapse.db.
// The special path ":memory:" opens a private in-memory database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		path = filepath.Join(home, ".config", "ancestral-scribe", "collapse.db")
	}

	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "open sqlite database")
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "create collapse_state table")
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, treeID string) ([]string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT collapsed FROM collapse_state WHERE tree_id = ?`, treeID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query collapse state: %w", err)
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("parse collapse state: %w", err)
	}
	return Normalize(ids), nil
}

func (s *SQLiteStore) Set(ctx context.Context, treeID string, ids []string) error {
	data, err := json.Marshal(Normalize(ids))
	if err != nil {
		return fmt.Errorf("marshal collapse state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO collapse_state (tree_id, collapsed, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(tree_id) DO UPDATE SET
			collapsed = excluded.collapsed,
			updated_at = excluded.updated_at`,
		treeID, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert collapse state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, treeID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM collapse_state WHERE tree_id = ?`, treeID); err != nil {
		return fmt.Errorf("delete collapse state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
