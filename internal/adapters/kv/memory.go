package kv

import (
	"context"
	"errors"
	"sync"
)

var ErrQuotaExceeded = errors.New("kv: quota exceeded")

// MemoryBackend is a process-local key/value backend with an optional byte quota,
// counted over keys plus values.
type MemoryBackend struct {
	mu    sync.Mutex
	items map[string]string
	used  int
	quota int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string]string)}
}

// NewMemoryBackendWithQuota rejects writes that would grow the stored bytes past quota.
func NewMemoryBackendWithQuota(quota int) *MemoryBackend {
	b := NewMemoryBackend()
	b.quota = quota
	return b
}

func (b *MemoryBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	v, ok := b.items[key]
	return v, ok, nil
}

func (b *MemoryBackend) SetItem(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	used := b.used
	if old, ok := b.items[key]; ok {
		used -= len(key) + len(old)
	}
	used += len(key) + len(value)
	if b.quota > 0 && used > b.quota {
		return ErrQuotaExceeded
	}

	b.items[key] = value
	b.used = used
	return nil
}

func (b *MemoryBackend) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.items[key]; ok {
		b.used -= len(key) + len(old)
		delete(b.items, key)
	}
	return nil
}

func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
