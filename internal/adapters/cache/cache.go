// Package cache stores short-lived computed views such as the admin
// dashboard. Values are opaque bytes; Load handles JSON encoding.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Store is a key/value cache with per-entry expiry.
type Store interface {
	// Get returns the value and true on a hit. Misses are not errors.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Load returns the cached value for key or computes it with fn and caches
// the result for ttl. Cache failures are logged and fn's result is used.
// PRE: T round-trips through encoding/json
// POST: fn is called at most once
func Load[T any](ctx context.Context, c Store, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if c != nil {
		raw, ok, err := c.Get(ctx, key)
		if err != nil {
			slog.Warn("cache_get_failed", "key", key, "error", err)
		}
		if ok {
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				return v, nil
			}
			slog.Warn("cache_decode_failed", "key", key)
		}
	}

	v, err := fn(ctx)
	if err != nil || c == nil {
		return v, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Warn("cache_encode_failed", "key", key, "error", err)
		return v, nil
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		slog.Warn("cache_set_failed", "key", key, "error", err)
	}
	return v, nil
}
