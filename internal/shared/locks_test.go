package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLocker(client), mr
}

func TestAcquireAndRelease(t *testing.T) {
	locker, _ := newTestLocker(t)
	key := AuditLockKey("2024-03-01")

	release, err := locker.Acquire(context.Background(), key, time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(context.Background(), key, time.Minute)
	require.ErrorIs(t, err, ErrLockHeld)

	release()

	release2, err := locker.Acquire(context.Background(), key, time.Minute)
	require.NoError(t, err)
	release2()
}

func TestAcquireDistinctKeysIndependent(t *testing.T) {
	locker, _ := newTestLocker(t)

	releaseA, err := locker.Acquire(context.Background(), AuditLockKey("2024-03-01"), time.Minute)
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := locker.Acquire(context.Background(), AuditLockKey("2024-03-02"), time.Minute)
	require.NoError(t, err)
	defer releaseB()
}

func TestLockExpiresAfterTTL(t *testing.T) {
	locker, mr := newTestLocker(t)
	key := AuditLockKey("2024-03-01")

	_, err := locker.Acquire(context.Background(), key, time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	release, err := locker.Acquire(context.Background(), key, time.Minute)
	require.NoError(t, err)
	release()
}

func TestAuditLockKeyFormat(t *testing.T) {
	assert.Equal(t, "nightaudit:2024-03-01:lock", AuditLockKey("2024-03-01"))
}
