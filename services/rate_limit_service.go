package services

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts hits per key in fixed windows. allowed is false once
// limit is exceeded; retryAfter is then the time until the window resets.
type RateLimiter interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfter time.Duration, err error)
}

// RedisRateLimiter shares counters across instances through Redis.
type RedisRateLimiter struct {
	redis     redis.Cmdable
	keyPrefix string
}

func NewRedisRateLimiter(client redis.Cmdable) *RedisRateLimiter {
	return &RedisRateLimiter{
		redis:     client,
		keyPrefix: "neoevents:ratelimit:",
	}
}

func (s *RedisRateLimiter) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	rKey := s.keyPrefix + key

	pipe := s.redis.TxPipeline()
	incr := pipe.Incr(ctx, rKey)
	pipe.Expire(ctx, rKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	if incr.Val() <= int64(limit) {
		return true, 0, nil
	}

	ttl, err := s.redis.TTL(ctx, rKey).Result()
	if err != nil {
		return false, 0, err
	}
	if ttl < 0 {
		ttl = window
	}
	return false, ttl, nil
}

// MemoryRateLimiter keeps counters in process, for single-instance
// deployments without Redis.
type MemoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

type memoryWindow struct {
	count   int
	resetAt time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

func (m *MemoryRateLimiter) CheckLimit(_ context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		m.sweep(now)
		w = &memoryWindow{resetAt: now.Add(window)}
		m.windows[key] = w
	}
	w.count++

	if w.count > limit {
		return false, w.resetAt.Sub(now), nil
	}
	return true, 0, nil
}

func (m *MemoryRateLimiter) sweep(now time.Time) {
	for k, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, k)
		}
	}
}
