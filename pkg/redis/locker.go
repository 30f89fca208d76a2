package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by someone else is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a single-instance mutex on top of SET NX PX. Locks expire after
// the TTL so a crashed holder cannot block a key forever.
type Locker struct {
	client redis.UniversalClient
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// LockerOption configures a Locker.
type LockerOption func(*Locker)

// WithLockTTL sets the lock expiry.
func WithLockTTL(d time.Duration) LockerOption {
	return func(l *Locker) {
		if d > 0 {
			l.ttl = d
		}
	}
}

// WithLockWait sets how long Lock keeps retrying a busy key. Zero means a
// single attempt.
func WithLockWait(d time.Duration) LockerOption {
	return func(l *Locker) {
		if d >= 0 {
			l.wait = d
		}
	}
}

// WithLockRetryInterval sets the pause between attempts on a busy key.
func WithLockRetryInterval(d time.Duration) LockerOption {
	return func(l *Locker) {
		if d > 0 {
			l.retry = d
		}
	}
}

// NewLocker creates a Locker. Defaults: 5s TTL, 2s wait, 25ms retry interval.
func NewLocker(client redis.UniversalClient, opts ...LockerOption) *Locker {
	l := &Locker{client: client, ttl: 5 * time.Second, wait: 2 * time.Second, retry: 25 * time.Millisecond}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewLockerFromConfig creates a Locker with the TTL and wait from cfg.
func NewLockerFromConfig(client redis.UniversalClient, cfg Config) *Locker {
	return NewLocker(client, WithLockTTL(cfg.LockTTL), WithLockWait(cfg.LockWait))
}

// Lock acquires key, waiting up to the configured wait time. The returned
// function releases it.
func (l *Locker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func(ctx context.Context) error {
				return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
			}, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrLockNotAcquired, ctx.Err())
		case <-time.After(l.retry):
		}
	}
}
