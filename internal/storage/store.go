// Package storage is the guarded persistence layer behind search history and
// user preferences. Nothing in it returns an error or lets a panic escape:
// reads fall back to the supplied default and writes report false.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"carrier-search-portal/internal/platform/logger"
	"carrier-search-portal/internal/platform/metrics"
	"carrier-search-portal/internal/ports"
)

const (
	probeKey   = "__test__"
	probeValue = `"test"`
)

// Store serializes values as JSON over a raw key/value backend.
type Store struct {
	backend ports.KeyValueBackend
}

func NewStore(backend ports.KeyValueBackend) *Store {
	return &Store{backend: backend}
}

// IsAvailable probes the backend with a write-then-delete of a sentinel key.
func (s *Store) IsAvailable(ctx context.Context) (ok bool) {
	if s == nil || s.backend == nil {
		return false
	}
	defer s.recoverFailure(ctx, "probe", probeKey, func() { ok = false })

	if err := s.backend.SetItem(ctx, probeKey, probeValue); err != nil {
		return false
	}
	if err := s.backend.RemoveItem(ctx, probeKey); err != nil {
		return false
	}
	return true
}

// Get decodes the JSON value stored under key, or returns def when storage is
// unavailable, the key is absent, or the stored value is not valid JSON for T.
func Get[T any](ctx context.Context, s *Store, key string, def T) T {
	raw, ok := s.getRaw(ctx, key)
	if !ok {
		return def
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		s.fail(ctx, "get", key, fmt.Errorf("decode stored value: %w", err))
		return def
	}
	return v
}

func (s *Store) getRaw(ctx context.Context, key string) (raw string, ok bool) {
	if !s.IsAvailable(ctx) {
		return "", false
	}
	defer s.recoverFailure(ctx, "get", key, func() { raw, ok = "", false })

	v, found, err := s.backend.GetItem(ctx, key)
	if err != nil {
		s.fail(ctx, "get", key, err)
		return "", false
	}
	if !found || v == "" || v == "null" {
		return "", false
	}
	return v, true
}

// Set stores v as JSON under key and reports whether it was persisted.
func (s *Store) Set(ctx context.Context, key string, v any) (ok bool) {
	if !s.IsAvailable(ctx) {
		return false
	}
	defer s.recoverFailure(ctx, "set", key, func() { ok = false })

	b, err := json.Marshal(v)
	if err != nil {
		s.fail(ctx, "set", key, fmt.Errorf("encode value: %w", err))
		return false
	}
	if err := s.backend.SetItem(ctx, key, string(b)); err != nil {
		s.fail(ctx, "set", key, err)
		return false
	}
	return true
}

// Remove deletes key and reports whether the backend accepted it.
func (s *Store) Remove(ctx context.Context, key string) (ok bool) {
	if !s.IsAvailable(ctx) {
		return false
	}
	defer s.recoverFailure(ctx, "remove", key, func() { ok = false })

	if err := s.backend.RemoveItem(ctx, key); err != nil {
		s.fail(ctx, "remove", key, err)
		return false
	}
	return true
}

func (s *Store) fail(ctx context.Context, op, key string, err error) {
	metrics.RecordStorageFailure(op)
	logger.Ctx(ctx).Warn().Str("op", op).Str("key", key).Err(err).Msg("storage operation failed")
}

// recoverFailure must be deferred directly so recover sees the backend panic.
func (s *Store) recoverFailure(ctx context.Context, op, key string, onPanic func()) {
	if r := recover(); r != nil {
		s.fail(ctx, op, key, fmt.Errorf("backend panic: %v", r))
		onPanic()
	}
}
