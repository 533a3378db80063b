package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// FixedWindowLimiter limits requests per key in a fixed time window.
// It uses Redis-backed distributed mode only.
type FixedWindowLimiter struct {
	limit  int
	window time.Duration

	redisClient *redis.Client
	redisPrefix string
	now         func() time.Time
}

// NewRedisFixedWindowLimiter creates a Redis-backed distributed limiter on its own client.
func NewRedisFixedWindowLimiter(addr, password, prefix string, limit int, window time.Duration) (*FixedWindowLimiter, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("rate limiter redis addr is required")
	}
	return NewFixedWindowLimiter(redis.NewClient(&redis.Options{Addr: addr, Password: password}), prefix, limit, window)
}

// NewFixedWindowLimiter creates a limiter on a shared client.
func NewFixedWindowLimiter(client *redis.Client, prefix string, limit int, window time.Duration) (*FixedWindowLimiter, error) {
	if limit <= 0 || window <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	if client == nil {
		return nil, errors.New("rate limiter redis client is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "melify:ratelimit"
	}
	return &FixedWindowLimiter{
		limit:       limit,
		window:      window,
		redisClient: client,
		redisPrefix: prefix,
		now:         time.Now,
	}, nil
}

// Allow reports whether key is within quota and, when it is not, how long
// until the current window ends. On Redis failures it fails closed.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	if l == nil {
		return false, 0
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}
	windowMs := l.window.Milliseconds()
	if windowMs <= 0 {
		return true, 0
	}
	nowMs := l.now().UTC().UnixMilli()
	windowSlot := nowMs / windowMs
	retryAfter := time.Duration((windowSlot+1)*windowMs-nowMs) * time.Millisecond
	redisKey := fmt.Sprintf("%s:%s:%d", l.redisPrefix, key, windowSlot)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	res, err := fixedWindowScript.Run(ctx, l.redisClient, []string{redisKey}, windowMs).Int64()
	if err != nil {
		return false, retryAfter
	}
	if res <= int64(l.limit) {
		return true, 0
	}
	return false, retryAfter
}
