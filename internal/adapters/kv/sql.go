package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLBackend is a Postgres key/value store (table kv_store), used through the pgx stdlib driver.
type SQLBackend struct {
	DB *sql.DB
}

func NewSQLBackend(db *sql.DB) *SQLBackend {
	return &SQLBackend{DB: db}
}

func (s *SQLBackend) InitSchema(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("sql kv: db is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`)
	if err != nil {
		return fmt.Errorf("sql kv: create kv_store table: %w", err)
	}
	return nil
}

func (s *SQLBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	if s.DB == nil {
		return "", false, errors.New("sql kv: db is nil")
	}

	var value string
	err := s.DB.QueryRowContext(ctx, `SELECT value::text FROM kv_store WHERE key = $1;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sql kv: get %q: %w", key, err)
	}
	return value, true, nil
}

// SetItem upserts the value. Values must be valid JSON since the column is JSONB.
func (s *SQLBackend) SetItem(ctx context.Context, key string, value string) error {
	if s.DB == nil {
		return errors.New("sql kv: db is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO kv_store (key, value, updated_at)
	VALUES ($1, $2::jsonb, now())
	ON CONFLICT (key) DO UPDATE
	SET value = EXCLUDED.value,
		updated_at = EXCLUDED.updated_at;
	`, key, value)
	if err != nil {
		return fmt.Errorf("sql kv: set %q: %w", key, err)
	}
	return nil
}

func (s *SQLBackend) RemoveItem(ctx context.Context, key string) error {
	if s.DB == nil {
		return errors.New("sql kv: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1;`, key); err != nil {
		return fmt.Errorf("sql kv: remove %q: %w", key, err)
	}
	return nil
}
