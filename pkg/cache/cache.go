// Package cache is the shared TTL cache used by the proximity and privacy services.
//
// It never reports failures to callers: an unreachable or misbehaving backend
// looks like an empty cache, and writes are best-effort.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

type Cache interface {
	// Get returns the raw value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool)
	// SetWithTTL stores value for at most ttl.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Delete removes keys from every tier.
	Delete(ctx context.Context, keys ...string)
	// KeysMatchingPrefix lists live keys starting with prefix.
	KeysMatchingPrefix(ctx context.Context, prefix string) []string
}

// GetJSON reads key and decodes it into T. Undecodable entries count as a miss.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var out T
	raw, ok := c.Get(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		c.Delete(ctx, key)
		var zero T
		return zero, false
	}
	return out, true
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.SetWithTTL(ctx, key, raw, ttl)
}

// DeletePrefix removes every key starting with prefix.
func DeletePrefix(ctx context.Context, c Cache, prefix string) int {
	keys := c.KeysMatchingPrefix(ctx, prefix)
	if len(keys) == 0 {
		return 0
	}
	c.Delete(ctx, keys...)
	return len(keys)
}
