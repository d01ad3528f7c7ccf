package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV implements the KeyValue mirror on a Redis instance. Notification
// entries are written with a TTL so the mirror bounds its own growth; all
// other keys (session state lives in the same store) persist until
// removed, matching the SQLite backend.
type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisKV connects to the Redis instance at addr and verifies the
// connection with a ping.
func NewRedisKV(ctx context.Context, addr string, ttl time.Duration) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}

	return &RedisKV{client: client, ttl: ttl}, nil
}

// Close releases the Redis connection.
func (r *RedisKV) Close() error {
	return r.client.Close()
}

// Get returns the value for key, or ErrNotFound.
func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting key %q: %w", key, err)
	}
	return value, nil
}

// Set inserts or overwrites the value for key. The configured TTL applies
// only to notification entries; session keys must not expire.
func (r *RedisKV) Set(ctx context.Context, key string, value string) error {
	var ttl time.Duration
	if strings.HasPrefix(key, KeyPrefix) {
		ttl = r.ttl
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("setting key %q: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is a no-op.
func (r *RedisKV) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("removing key %q: %w", key, err)
	}
	return nil
}

// Keys returns every stored key beginning with prefix, using SCAN to
// avoid blocking the server on large keyspaces.
func (r *RedisKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning keys with prefix %q: %w", prefix, err)
	}

	return keys, nil
}

// MultiRemove deletes all given keys.
func (r *RedisKV) MultiRemove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("removing %d keys: %w", len(keys), err)
	}
	return nil
}
