package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS session_values (
	session_id TEXT NOT NULL,
	item_key   TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (session_id, item_key)
)`

// SQLiteSessions persists sessions in a SQLite file so the worker, the
// starter and the confirmation page can share them.
type SQLiteSessions struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) the database at path
func OpenSQLite(ctx context.Context, path string) (*SQLiteSessions, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}
	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate session db: %w", err)
	}
	return &SQLiteSessions{db: db}, nil
}

// Session returns the KV for id
func (s *SQLiteSessions) Session(id string) KV {
	return sqliteKV{db: s.db, id: id}
}

// End discards everything stored for id
func (s *SQLiteSessions) End(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_values WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to end session %s: %w", id, err)
	}
	return nil
}

// Ping checks the database is reachable
func (s *SQLiteSessions) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *SQLiteSessions) Close() error {
	return s.db.Close()
}

type sqliteKV struct {
	db *sql.DB
	id string
}

func (kv sqliteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := kv.db.QueryRowContext(ctx,
		`SELECT value FROM session_values WHERE session_id = ? AND item_key = ?`, kv.id, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (kv sqliteKV) Set(ctx context.Context, key, value string) error {
	_, err := kv.db.ExecContext(ctx, `INSERT INTO session_values (session_id, item_key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (session_id, item_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		kv.id, key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
