package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestFixedWindowLimiterRedis(t *testing.T) {
	ctx := context.Background()
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", 2, time.Minute)
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}
	limiter.now = func() time.Time { return time.UnixMilli(90_000) }
	if ok, _ := limiter.Allow(ctx, "user-1"); !ok {
		t.Fatalf("first request should pass")
	}
	if ok, _ := limiter.Allow(ctx, "user-1"); !ok {
		t.Fatalf("second request should pass")
	}
	ok, retryAfter := limiter.Allow(ctx, "user-1")
	if ok {
		t.Fatalf("third request should be blocked")
	}
	if retryAfter != 30*time.Second {
		t.Fatalf("expected 30s retry-after, got %s", retryAfter)
	}
	if ok, _ := limiter.Allow(ctx, "user-2"); !ok {
		t.Fatalf("other keys have their own quota")
	}
}

func TestFixedWindowLimiterRedisFailClosed(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", 1, time.Second)
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}
	redis.Close()
	if ok, _ := limiter.Allow(context.Background(), "user-1"); ok {
		t.Fatalf("limiter should fail closed on redis errors")
	}
}

func TestFixedWindowLimiterRequiresRedisAddr(t *testing.T) {
	limiter, err := NewRedisFixedWindowLimiter("", "", "test:ratelimit", 1, time.Second)
	if err == nil || limiter != nil {
		t.Fatalf("expected constructor error for empty redis addr")
	}
	if _, err := NewFixedWindowLimiter(nil, "", 1, time.Second); err == nil {
		t.Fatalf("expected constructor error for nil client")
	}
}
