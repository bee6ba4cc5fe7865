// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, pageKeyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(host, port, os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestPageCacheSetAndGet(t *testing.T) {
	client := testValkeyClient(t)
	pc := NewPageCache(client, 1*time.Minute)
	ctx := context.Background()

	data, ok := pc.Get(ctx, CalculatorKey("bmi-calculator"))
	if ok || data != nil {
		t.Error("expected cache miss")
	}

	html := []byte("<html><body>BMI</body></html>")
	pc.Set(ctx, CalculatorKey("bmi-calculator"), html)

	data, ok = pc.Get(ctx, CalculatorKey("bmi-calculator"))
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != string(html) {
		t.Errorf("data mismatch: got %q, want %q", data, html)
	}
}

func TestPageCacheInvalidate(t *testing.T) {
	client := testValkeyClient(t)
	pc := NewPageCache(client, 1*time.Minute)
	ctx := context.Background()

	pc.Set(ctx, HomeKey(), []byte("home"))
	if _, ok := pc.Get(ctx, HomeKey()); !ok {
		t.Fatal("expected cache hit before invalidation")
	}

	pc.Invalidate(ctx, HomeKey())

	if _, ok := pc.Get(ctx, HomeKey()); ok {
		t.Error("expected cache miss after invalidation")
	}
}

func TestPageCacheInvalidateAll(t *testing.T) {
	client := testValkeyClient(t)
	pc := NewPageCache(client, 1*time.Minute)
	ctx := context.Background()

	keys := []string{HomeKey(), CategoryKey("health"), CalculatorKey("bmi-calculator")}
	for _, k := range keys {
		pc.Set(ctx, k, []byte(k))
	}

	pc.InvalidateAll(ctx)

	for _, k := range keys {
		if _, ok := pc.Get(ctx, k); ok {
			t.Errorf("expected miss for %q after InvalidateAll", k)
		}
	}
}

func TestNilPageCacheIsNoop(t *testing.T) {
	var pc *PageCache
	ctx := context.Background()

	pc.Set(ctx, HomeKey(), []byte("x"))
	if _, ok := pc.Get(ctx, HomeKey()); ok {
		t.Error("nil cache should never hit")
	}
	pc.Invalidate(ctx, HomeKey())
	pc.InvalidateAll(ctx)
}

func TestKeysAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range []string{HomeKey(), CategoryKey("home"), CalculatorKey("home"), CategoryKey("x"), CalculatorKey("x")} {
		if seen[k] {
			t.Errorf("duplicate cache key %q", k)
		}
		seen[k] = true
	}
}

func TestNewPageCacheDefaultTTL(t *testing.T) {
	pc := NewPageCache(nil, 0)
	if pc.ttl != DefaultPageTTL {
		t.Errorf("expected DefaultPageTTL (%v), got %v", DefaultPageTTL, pc.ttl)
	}
}
