package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// New creates a new Redis client.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("platform/cache: ping: %w", err)
	}

	return client, nil
}

// KV is a small typed wrapper over a redis client for string values with TTLs.
type KV struct {
	client *redis.Client
	prefix string
}

// NewKV wraps an existing redis client under a key prefix.
func NewKV(client *redis.Client, prefix string) *KV {
	return &KV{client: client, prefix: prefix}
}

// Get returns the cached value and whether the key was present.
func (kv *KV) Get(ctx context.Context, key string) (string, bool, error) {
	if kv == nil || kv.client == nil {
		return "", false, nil
	}
	val, err := kv.client.Get(ctx, kv.prefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("platform/cache: get: %w", err)
	}
	return val, true, nil
}

// Set stores a value with a TTL.
func (kv *KV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if kv == nil || kv.client == nil {
		return nil
	}
	if err := kv.client.Set(ctx, kv.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("platform/cache: set: %w", err)
	}
	return nil
}

// Delete removes a key.
func (kv *KV) Delete(ctx context.Context, key string) error {
	if kv == nil || kv.client == nil {
		return nil
	}
	if err := kv.client.Del(ctx, kv.prefix+key).Err(); err != nil {
		return fmt.Errorf("platform/cache: delete: %w", err)
	}
	return nil
}
