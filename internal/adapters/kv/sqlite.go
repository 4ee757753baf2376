package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLite backed key/value store (table kv_store).
type SqliteBackend struct {
	DB *sql.DB
}

func NewSqliteBackend(db *sql.DB) *SqliteBackend {
	return &SqliteBackend{DB: db}
}

// Create the kv_store table if it does not exist.
func (s *SqliteBackend) InitSchema(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("sqlite kv: db is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`)
	if err != nil {
		return fmt.Errorf("sqlite kv: create kv_store table: %w", err)
	}
	return nil
}

func (s *SqliteBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	if s.DB == nil {
		return "", false, errors.New("sqlite kv: db is nil")
	}

	var value string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite kv: get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SqliteBackend) SetItem(ctx context.Context, key string, value string) error {
	if s.DB == nil {
		return errors.New("sqlite kv: db is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO kv_store (
		key,
		value,
		updated_at
	)
	VALUES (?, ?, CURRENT_TIMESTAMP);
	`, key, value)
	if err != nil {
		return fmt.Errorf("sqlite kv: set %q: %w", key, err)
	}
	return nil
}

func (s *SqliteBackend) RemoveItem(ctx context.Context, key string) error {
	if s.DB == nil {
		return errors.New("sqlite kv: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?;`, key); err != nil {
		return fmt.Errorf("sqlite kv: remove %q: %w", key, err)
	}
	return nil
}
