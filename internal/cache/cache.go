// Package cache stores JSON values in Redis under namespaced keys.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a JSON cache backed by Redis. A Cache without a client is valid and
// caches nothing.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a cache whose entries expire after ttl.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Enabled reports whether values are actually stored.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get decodes the value at key into dest. It reports false on a miss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

// Set stores value at key with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetTTL(ctx, key, value, c.ttl)
}

// SetTTL stores value at key with an explicit TTL.
func (c *Cache) SetTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

// InvalidatePrefix deletes every key starting with prefix.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	if !c.Enabled() {
		return nil
	}
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}
