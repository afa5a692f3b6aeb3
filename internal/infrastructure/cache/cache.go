// Package cache provides the key/value cache injected into the catalog
// services. Values are opaque bytes with a per-key TTL.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// DefaultTTL is used when Set is called with a non-positive ttl.
const DefaultTTL = 30 * time.Minute

// approxEntrySize is the per-entry figure used for memory estimates.
const approxEntrySize = 1024

// Cache is a TTL key/value store.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeleteByPattern removes every key containing pattern, ignoring case,
	// and returns how many were removed.
	DeleteByPattern(ctx context.Context, pattern string) (int, error)
	Exists(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
}

// Stats summarises the cache contents.
type Stats struct {
	Backend      string     `json:"backend"`
	TotalEntries int        `json:"total_entries"`
	OldestEntry  *time.Time `json:"oldest_entry,omitempty"`
	NewestEntry  *time.Time `json:"newest_entry,omitempty"`
	MemoryUsage  int64      `json:"memory_usage"`
}

// GetOrSet returns the cached value for key, or calls load, stores its JSON
// encoding for ttl and returns it. Cache failures fall through to load.
func GetOrSet[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if raw, ok, err := c.Get(ctx, key); err == nil && ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if raw, err := json.Marshal(value); err == nil {
		_ = c.Set(ctx, key, raw, ttl)
	}
	return value, nil
}

// Invalidate removes exact keys and every key matching one of patterns.
func Invalidate(ctx context.Context, c Cache, keys []string, patterns ...string) error {
	if len(keys) > 0 {
		if err := c.Delete(ctx, keys...); err != nil {
			return err
		}
	}
	for _, p := range patterns {
		if _, err := c.DeleteByPattern(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func effectiveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
