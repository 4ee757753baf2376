package ports

import "context"

// Raw string key/value facility underneath the persistent store.
// Implementations may fail on any call; the store swallows those failures.
type KeyValueBackend interface {
	// Return the stored value; ok is false when the key is absent.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key string, value string) error
	RemoveItem(ctx context.Context, key string) error
}
