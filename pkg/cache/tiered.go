package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Temutjin2k/campus-radar/pkg/clock"
	"github.com/Temutjin2k/campus-radar/pkg/logger"
	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-radar/pkg/metrics"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

const (
	tierLocal  = "local"
	tierRemote = "redis"

	scanBatch = 200
)

type localEntry struct {
	value     []byte
	expiresAt time.Time
}

// Tiered keeps a small in-process LRU in front of Redis.
//
// With Redis present the local tier caps every entry at localMaxTTL, so invalidations
// issued by another instance are observed within that window. Either tier may be absent.
type Tiered struct {
	local       *lru.Cache[string, localEntry]
	localMaxTTL time.Duration

	remote  redis.UniversalClient
	timeout time.Duration

	clock clock.Clock
	log   logger.Logger
}

type Options struct {
	LocalSize   int
	LocalMaxTTL time.Duration
	Timeout     time.Duration
	Clock       clock.Clock
}

// NewTiered builds the cache. remote may be nil; LocalSize <= 0 disables the local tier.
func NewTiered(remote redis.UniversalClient, opts Options, log logger.Logger) (*Tiered, error) {
	t := &Tiered{
		localMaxTTL: opts.LocalMaxTTL,
		remote:      remote,
		timeout:     opts.Timeout,
		clock:       opts.Clock,
		log:         log,
	}
	if t.clock == nil {
		t.clock = clock.Real{}
	}
	if t.timeout <= 0 {
		t.timeout = 200 * time.Millisecond
	}
	if opts.LocalSize > 0 {
		local, err := lru.New[string, localEntry](opts.LocalSize)
		if err != nil {
			return nil, err
		}
		t.local = local
	}
	return t, nil
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool) {
	space := keyspace(key)

	if t.local != nil {
		if e, ok := t.local.Get(key); ok {
			if t.clock.Now().Before(e.expiresAt) {
				metrics.RecordCacheLookup(tierLocal, space, metrics.CacheHit)
				return e.value, true
			}
			t.local.Remove(key)
		}
		metrics.RecordCacheLookup(tierLocal, space, metrics.CacheMiss)
	}

	if t.remote == nil {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	pipe := t.remote.Pipeline()
	get := pipe.Get(ctx, key)
	pttl := pipe.PTTL(ctx, key)
	_, _ = pipe.Exec(ctx)

	value, err := get.Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheLookup(tierRemote, space, metrics.CacheMiss)
		return nil, false
	}
	if err != nil {
		metrics.RecordCacheLookup(tierRemote, space, metrics.CacheError)
		t.log.Warn(wrap.WithAction(ctx, "cache_get_failed"), "redis get failed, treating as miss", "key", key, "error", err.Error())
		return nil, false
	}

	metrics.RecordCacheLookup(tierRemote, space, metrics.CacheHit)
	t.setLocal(key, value, localTTL(pttl.Val(), t.localMaxTTL))
	return value, true
}

// localTTL bounds a promoted entry by what Redis has left on the key.
// PTTL reports -1 for keys without expiry and -2 (or an error) otherwise.
func localTTL(remaining, limit time.Duration) time.Duration {
	switch {
	case remaining > 0 && (limit <= 0 || remaining < limit):
		return remaining
	case remaining > 0 || remaining == -1:
		return limit
	default:
		return 0
	}
}

func (t *Tiered) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	t.setLocal(key, value, ttl)

	if t.remote == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := t.remote.Set(ctx, key, value, ttl).Err(); err != nil {
		metrics.RecordCacheWrite(tierRemote, keyspace(key), err)
		t.log.Warn(wrap.WithAction(ctx, "cache_set_failed"), "redis set failed", "key", key, "error", err.Error())
		return
	}
	metrics.RecordCacheWrite(tierRemote, keyspace(key), nil)
}

func (t *Tiered) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if t.local != nil {
		for _, k := range keys {
			t.local.Remove(k)
		}
	}

	if t.remote == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := t.remote.Del(ctx, keys...).Err(); err != nil {
		t.log.Warn(wrap.WithAction(ctx, "cache_delete_failed"), "redis delete failed", "keys", len(keys), "error", err.Error())
	}
}

func (t *Tiered) KeysMatchingPrefix(ctx context.Context, prefix string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(k string) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}

	if t.local != nil {
		now := t.clock.Now()
		for _, k := range t.local.Keys() {
			if !strings.HasPrefix(k, prefix) {
				continue
			}
			if e, ok := t.local.Peek(k); ok && now.Before(e.expiresAt) {
				add(k)
			}
		}
	}

	if t.remote == nil {
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	pattern := escapeGlob(prefix) + "*"
	var cursor uint64
	for {
		keys, next, err := t.remote.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			t.log.Warn(wrap.WithAction(ctx, "cache_scan_failed"), "redis scan failed", "prefix", prefix, "error", err.Error())
			return out
		}
		for _, k := range keys {
			add(k)
		}
		if next == 0 {
			return out
		}
		cursor = next
	}
}

func (t *Tiered) setLocal(key string, value []byte, ttl time.Duration) {
	if t.local == nil {
		return
	}
	if t.remote != nil && t.localMaxTTL > 0 && ttl > t.localMaxTTL {
		ttl = t.localMaxTTL
	}
	if ttl <= 0 {
		return
	}
	t.local.Add(key, localEntry{value: value, expiresAt: t.clock.Now().Add(ttl)})
}

// keyspace is the first segment of a key, used as a low-cardinality metric label.
func keyspace(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}

// escapeGlob quotes the characters Redis MATCH treats specially.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
