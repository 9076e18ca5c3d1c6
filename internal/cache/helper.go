package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by GetJSON when the key is absent or the cache is disabled.
var ErrCacheMiss = errors.New("cache miss")

// GetJSON fetches a key and unmarshals it into dest. Returns ErrCacheMiss
// when the key is absent, the payload is corrupt, or caching is disabled.
func GetJSON(ctx context.Context, key string, dest interface{}) error {
	if client == nil {
		return ErrCacheMiss
	}

	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		// Transport errors count as misses; the hook already recorded them.
		return ErrCacheMiss
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// Corrupt entry: drop it so the next write repopulates cleanly.
		client.Del(ctx, key)
		return ErrCacheMiss
	}
	return nil
}

// SetJSON marshals value and stores it under key with the given TTL.
// Failures are swallowed; the cache is best-effort.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	client.Set(ctx, key, data, ttl)
}

// CacheAside reads key into dest, falling back to load on a miss and
// repopulating the cache with the loaded value.
func CacheAside(ctx context.Context, key string, ttl time.Duration, dest interface{}, load func() (interface{}, error)) error {
	if err := GetJSON(ctx, key, dest); err == nil {
		return nil
	}

	value, err := load()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return err
	}

	SetJSON(ctx, key, value, ttl)
	return nil
}
