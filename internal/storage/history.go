package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"carrier-search-portal/internal/domain"
)

const (
	SearchHistoryKey  = "genlogs_search_history"
	MaxHistoryEntries = 10
)

// History is the bounded, deduplicated list of past searches, newest first.
type History struct {
	store *Store
	now   func() time.Time

	mu     sync.Mutex
	lastID int64
}

func NewHistory(store *Store) *History {
	return &History{store: store, now: time.Now}
}

func (h *History) List(ctx context.Context) []domain.SearchHistoryEntry {
	entries := Get(ctx, h.store, SearchHistoryKey, []domain.SearchHistoryEntry{})
	if entries == nil {
		return []domain.SearchHistoryEntry{}
	}
	return entries
}

// Record moves (from, to) to the front of the history with a fresh id and
// timestamp, keeping at most MaxHistoryEntries. Persistence failures are ignored.
func (h *History) Record(ctx context.Context, from, to string, resultCount int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	history := h.List(ctx)
	now := h.now().UTC()

	id := now.UnixMilli()
	if id <= h.lastID {
		id = h.lastID + 1
	}
	if len(history) > 0 && id <= history[0].ID {
		id = history[0].ID + 1
	}
	h.lastID = id

	history = slices.DeleteFunc(history, func(e domain.SearchHistoryEntry) bool {
		return e.From == from && e.To == to
	})

	updated := make([]domain.SearchHistoryEntry, 0, len(history)+1)
	updated = append(updated, domain.SearchHistoryEntry{
		ID:          id,
		From:        from,
		To:          to,
		ResultCount: resultCount,
		Timestamp:   now.Format("2006-01-02T15:04:05.000Z07:00"),
	})
	updated = append(updated, history...)
	if len(updated) > MaxHistoryEntries {
		updated = updated[:MaxHistoryEntries]
	}

	h.store.Set(ctx, SearchHistoryKey, updated)
}

// Clear removes the persisted list.
func (h *History) Clear(ctx context.Context) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.store.Remove(ctx, SearchHistoryKey)
}

// Available reports whether the backing store accepts writes.
func (h *History) Available(ctx context.Context) bool {
	return h.store.IsAvailable(ctx)
}
