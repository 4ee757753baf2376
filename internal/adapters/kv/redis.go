package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisPrefix = "portal:"

// RedisBackend stores each key as a plain redis string under a prefix.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (r *RedisBackend) Key(key string) string {
	return r.prefix + key
}

func (r *RedisBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.Key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis kv: get %q: %w", key, err)
	}
	return v, true, nil
}

func (r *RedisBackend) SetItem(ctx context.Context, key string, value string) error {
	if err := r.client.Set(ctx, r.Key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis kv: set %q: %w", key, err)
	}
	return nil
}

func (r *RedisBackend) RemoveItem(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.Key(key)).Err(); err != nil {
		return fmt.Errorf("redis kv: remove %q: %w", key, err)
	}
	return nil
}
