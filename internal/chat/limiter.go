package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/boxboxd/boxboxd/internal/cache"
)

// Limiter enforces one message per user per room per window.
type Limiter interface {
	// Allow reserves the user's slot in the room. A positive duration means
	// the slot is taken and tells how long until it frees up.
	Allow(ctx context.Context, roomID, userID string) (time.Duration, error)
	// Release gives a reserved slot back, used when the message could not be
	// stored.
	Release(ctx context.Context, roomID, userID string)
}

// RedisLimiter keeps one expiring key per user and room.
type RedisLimiter struct {
	cache  *cache.Cache
	window time.Duration
}

// NewRedisLimiter creates a limiter on top of Redis. A non-positive window
// uses DefaultRateWindow.
func NewRedisLimiter(c *cache.Cache, window time.Duration) *RedisLimiter {
	if window <= 0 {
		window = DefaultRateWindow
	}
	return &RedisLimiter{cache: c, window: window}
}

func rateKey(roomID, userID string) string {
	return fmt.Sprintf("chat_rate:%s:%s", roomID, userID)
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, roomID, userID string) (time.Duration, error) {
	key := rateKey(roomID, userID)
	ok, err := l.cache.SetNX(ctx, key, time.Now().Unix(), l.window)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve chat slot: %w", err)
	}
	if ok {
		return 0, nil
	}

	ttl, err := l.cache.TTL(ctx, key)
	if err != nil || ttl <= 0 {
		// The key expired between the two calls or has no TTL; report the
		// full window rather than letting the message through.
		return l.window, nil
	}
	return ttl, nil
}

// Release implements Limiter.
func (l *RedisLimiter) Release(ctx context.Context, roomID, userID string) {
	_ = l.cache.Delete(ctx, rateKey(roomID, userID))
}

// LastMessageFinder reports when a user last wrote in a room.
type LastMessageFinder interface {
	LastMessageAt(ctx context.Context, roomID, userID string) (time.Time, error)
}

// QueryLimiter derives the limit from the message history itself. It needs
// no extra storage but two concurrent sends by the same user can both pass.
type QueryLimiter struct {
	messages LastMessageFinder
	window   time.Duration
	now      func() time.Time
}

// NewQueryLimiter creates a limiter that queries the message store.
func NewQueryLimiter(messages LastMessageFinder, window time.Duration) *QueryLimiter {
	if window <= 0 {
		window = DefaultRateWindow
	}
	return &QueryLimiter{messages: messages, window: window, now: time.Now}
}

// Allow implements Limiter.
func (l *QueryLimiter) Allow(ctx context.Context, roomID, userID string) (time.Duration, error) {
	last, err := l.messages.LastMessageAt(ctx, roomID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to check last message: %w", err)
	}
	if last.IsZero() {
		return 0, nil
	}
	if elapsed := l.now().Sub(last); elapsed < l.window {
		return l.window - elapsed, nil
	}
	return 0, nil
}

// Release implements Limiter.
func (l *QueryLimiter) Release(ctx context.Context, roomID, userID string) {}
