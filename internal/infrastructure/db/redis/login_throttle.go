package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle counts failed logins per account.
// Key format: login_failures:<account_id>
//
// The window starts at the first failure; later failures do not extend it.
type LoginThrottle struct {
	client *redis.Client
}

func NewLoginThrottle(client *redis.Client) *LoginThrottle {
	return &LoginThrottle{client: client}
}

// RecordFailure increments the counter and returns the failures in the
// current window, this one included. The counter is created with its TTL and
// incremented in one MULTI/EXEC, so it can never exist without an expiry.
func (l *LoginThrottle) RecordFailure(ctx context.Context, accountID string, window time.Duration) (int64, error) {
	key := l.key(accountID)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("record login failure: %w", err)
	}
	return incr.Val(), nil
}

func (l *LoginThrottle) Reset(ctx context.Context, accountID string) error {
	if err := l.client.Del(ctx, l.key(accountID)).Err(); err != nil {
		return fmt.Errorf("reset login failures: %w", err)
	}
	return nil
}

func (l *LoginThrottle) key(accountID string) string {
	return "login_failures:" + accountID
}
