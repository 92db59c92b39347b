package cache

import (
	"context"
	"io"
	"os"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/Temutjin2k/campus-radar/pkg/clock"
	"github.com/Temutjin2k/campus-radar/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func newLocal(t *testing.T) (*Tiered, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC))
	c, err := NewTiered(nil, Options{LocalSize: 64, LocalMaxTTL: 30 * time.Second, Clock: clk}, logger.New(io.Discard, "test", logger.LevelError))
	if err != nil {
		t.Fatalf("new tiered: %v", err)
	}
	return c, clk
}

func TestTieredLocalExpiry(t *testing.T) {
	ctx := context.Background()
	c, clk := newLocal(t)

	// without a remote the local tier keeps the full ttl
	c.SetWithTTL(ctx, "location:1", []byte("a"), 5*time.Minute)

	clk.Advance(4 * time.Minute)
	if v, ok := c.Get(ctx, "location:1"); !ok || string(v) != "a" {
		t.Fatalf("expected hit before expiry, got %q %v", v, ok)
	}

	clk.Advance(time.Minute)
	if _, ok := c.Get(ctx, "location:1"); ok {
		t.Fatalf("expected miss at expiry")
	}
}

func TestTieredIgnoresNonPositiveTTL(t *testing.T) {
	ctx := context.Background()
	c, _ := newLocal(t)

	c.SetWithTTL(ctx, "k", []byte("v"), 0)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatalf("zero ttl must not store")
	}
}

func TestTieredDeleteAndPrefix(t *testing.T) {
	ctx := context.Background()
	c, clk := newLocal(t)

	c.SetWithTTL(ctx, "nearby:u1:100", []byte("1"), time.Minute)
	c.SetWithTTL(ctx, "nearby:u1:500", []byte("2"), time.Minute)
	c.SetWithTTL(ctx, "nearby:u2:100", []byte("3"), time.Minute)
	c.SetWithTTL(ctx, "nearby:u1:50", []byte("4"), time.Second)

	clk.Advance(2 * time.Second)

	keys := c.KeysMatchingPrefix(ctx, "nearby:u1:")
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "nearby:u1:100" || keys[1] != "nearby:u1:500" {
		t.Fatalf("keys = %v", keys)
	}

	if n := DeletePrefix(ctx, c, "nearby:u1:"); n != 2 {
		t.Fatalf("deleted %d, want 2", n)
	}
	if _, ok := c.Get(ctx, "nearby:u1:100"); ok {
		t.Fatalf("expected key removed")
	}
	if _, ok := c.Get(ctx, "nearby:u2:100"); !ok {
		t.Fatalf("other user's key must survive")
	}

	c.Delete(ctx, "nearby:u2:100")
	if _, ok := c.Get(ctx, "nearby:u2:100"); ok {
		t.Fatalf("expected explicit delete to remove key")
	}
}

func TestGetJSONDropsUndecodable(t *testing.T) {
	ctx := context.Background()
	c, _ := newLocal(t)

	type payload struct {
		Lat float64 `json:"lat"`
	}

	SetJSON(ctx, c, "location:ok", payload{Lat: 51.09}, time.Minute)
	got, ok := GetJSON[payload](ctx, c, "location:ok")
	if !ok || got.Lat != 51.09 {
		t.Fatalf("got %+v %v", got, ok)
	}

	c.SetWithTTL(ctx, "location:bad", []byte("{not json"), time.Minute)
	if _, ok := GetJSON[payload](ctx, c, "location:bad"); ok {
		t.Fatalf("undecodable entry must be a miss")
	}
	if _, ok := c.Get(ctx, "location:bad"); ok {
		t.Fatalf("undecodable entry should have been evicted")
	}
}

func TestTieredUnreachableRemoteLooksEmpty(t *testing.T) {
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	c, err := NewTiered(rdb, Options{Timeout: 100 * time.Millisecond}, logger.New(io.Discard, "test", logger.LevelError))
	if err != nil {
		t.Fatalf("new tiered: %v", err)
	}

	c.SetWithTTL(ctx, "privacy:settings:1", []byte("x"), time.Minute)
	if _, ok := c.Get(ctx, "privacy:settings:1"); ok {
		t.Fatalf("expected miss with unreachable redis and no local tier")
	}
	if keys := c.KeysMatchingPrefix(ctx, "privacy:"); len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
	c.Delete(ctx, "privacy:settings:1")
}

func TestEscapeGlob(t *testing.T) {
	if got := escapeGlob("a*b?[c]\\"); got != `a\*b\?\[c\]\\` {
		t.Fatalf("escapeGlob = %q", got)
	}
	if got := keyspace("privacy:batch:x"); got != "privacy" {
		t.Fatalf("keyspace = %q", got)
	}
}

func TestLocalTTLFollowsRemote(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		max       time.Duration
		want      time.Duration
	}{
		{"remote expires sooner", 2 * time.Second, 15 * time.Second, 2 * time.Second},
		{"remote outlives local cap", time.Hour, 15 * time.Second, 15 * time.Second},
		{"no local cap", time.Minute, 0, time.Minute},
		{"no expiry on remote", -1, 15 * time.Second, 15 * time.Second},
		{"key vanished", -2, 15 * time.Second, 0},
		{"pttl failed", 0, 15 * time.Second, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := localTTL(tt.remaining, tt.max); got != tt.want {
				t.Fatalf("localTTL(%v, %v) = %v, want %v", tt.remaining, tt.max, got, tt.want)
			}
		})
	}
}

func TestTieredPromotionKeepsRemoteExpiry(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	clk := clock.NewFake(time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC))
	c, err := NewTiered(rdb, Options{LocalSize: 16, LocalMaxTTL: 15 * time.Second, Clock: clk}, logger.New(io.Discard, "test", logger.LevelError))
	if err != nil {
		t.Fatalf("new tiered: %v", err)
	}

	key := "nearby:promotion-test:" + strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := rdb.Set(ctx, key, "v", 3*time.Second).Err(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	t.Cleanup(func() { rdb.Del(context.Background(), key) })

	if _, ok := c.Get(ctx, key); !ok {
		t.Fatalf("expected remote hit")
	}
	e, ok := c.local.Peek(key)
	if !ok {
		t.Fatalf("expected promotion into the local tier")
	}
	if left := e.expiresAt.Sub(clk.Now()); left > 3*time.Second {
		t.Fatalf("local entry lives %v, longer than the remote key", left)
	}
}
