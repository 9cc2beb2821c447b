package shared

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// AuditLockKey builds redis keys for the night-audit critical section.
func AuditLockKey(businessDate string) string {
	return fmt.Sprintf("nightaudit:%s:lock", businessDate)
}

// ErrLockHeld indicates another process holds the requested lock.
var ErrLockHeld = errors.New("lock already held")

// Locker acquires redis-backed advisory locks.
type Locker struct {
	client *redislock.Client
}

// NewLocker wraps a redis client for lock acquisition.
func NewLocker(rdb redis.UniversalClient) *Locker {
	return &Locker{client: redislock.New(rdb)}
}

// Acquire obtains the named lock for ttl, without retries. The returned
// release func is safe to call once; release errors are ignored because the
// lock expires on its own.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if l == nil || l.client == nil {
		return nil, errors.New("locker not initialised")
	}
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrLockHeld
		}
		return nil, err
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = lock.Release(releaseCtx)
	}, nil
}
