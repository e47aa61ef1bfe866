package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle counts failed logins per email/IP pair in Redis.
// Key format: login_fail:<email>:<ip>
type LoginThrottle struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewLoginThrottle creates a throttle allowing limit failures per window.
func NewLoginThrottle(client *redis.Client, limit int, window time.Duration) *LoginThrottle {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginThrottle{client: client, limit: int64(limit), window: window}
}

// Allowed reports whether another login attempt may proceed.
func (t *LoginThrottle) Allowed(ctx context.Context, email, ip string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(email, ip)).Int64()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n < t.limit, nil
}

// NoteFailure records a failed attempt. The window restarts on each failure.
func (t *LoginThrottle) NoteFailure(ctx context.Context, email, ip string) error {
	key := t.key(email, ip)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("throttle record: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email, ip string) error {
	return t.client.Del(ctx, t.key(email, ip)).Err()
}

func (t *LoginThrottle) key(email, ip string) string {
	return fmt.Sprintf("login_fail:%s:%s", email, ip)
}
