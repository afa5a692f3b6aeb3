package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 200

// RedisCache is a Cache shared across processes. All keys are stored under
// prefix so Clear and pattern deletes never touch foreign keys.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache wraps an existing go-redis client.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (r *RedisCache) key(k string) string { return r.prefix + k }

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(key), value, effectiveTTL(ttl)).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.client.Del(ctx, full...).Err()
}

func (r *RedisCache) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	keys, err := r.Keys(ctx)
	if err != nil {
		return 0, err
	}

	needle := strings.ToLower(pattern)
	var matched []string
	for _, k := range keys {
		if strings.Contains(strings.ToLower(k), needle) {
			matched = append(matched, k)
		}
	}
	if err := r.Delete(ctx, matched...); err != nil {
		return 0, err
	}
	return len(matched), nil
}

func (r *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	return n > 0, err
}

// Keys returns every key under the prefix, with the prefix stripped.
func (r *RedisCache) Keys(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}
		for _, k := range batch {
			keys = append(keys, strings.TrimPrefix(k, r.prefix))
		}
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func (r *RedisCache) Clear(ctx context.Context) error {
	keys, err := r.Keys(ctx)
	if err != nil {
		return err
	}
	return r.Delete(ctx, keys...)
}

// Stats reports entry counts only; redis does not keep insertion times.
func (r *RedisCache) Stats(ctx context.Context) (Stats, error) {
	keys, err := r.Keys(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Backend:      "redis",
		TotalEntries: len(keys),
		MemoryUsage:  int64(len(keys)) * approxEntrySize,
	}, nil
}
