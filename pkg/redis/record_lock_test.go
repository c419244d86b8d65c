package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLocker_AllOrNothing(t *testing.T) {
	srv := newMiniredisClient(t)
	ctx := context.Background()
	locker := NewRecordLocker(time.Minute)

	unlockA, err := locker.TryLock(ctx, []string{"a", "b"})
	require.NoError(t, err)

	_, err = locker.TryLock(ctx, []string{"c", "b"})
	require.ErrorIs(t, err, ErrLockHeld)
	assert.False(t, srv.Exists(lockKeyPrefix+"c"), "partial acquisition must be released")

	unlockA(ctx)
	assert.False(t, srv.Exists(lockKeyPrefix+"a"))
	assert.False(t, srv.Exists(lockKeyPrefix+"b"))

	unlockB, err := locker.TryLock(ctx, []string{"c", "b"})
	require.NoError(t, err)
	unlockB(ctx)
}

func TestRecordLocker_UnlockOnlyOwnKeys(t *testing.T) {
	srv := newMiniredisClient(t)
	ctx := context.Background()
	locker := NewRecordLocker(time.Second)

	unlock, err := locker.TryLock(ctx, []string{"a"})
	require.NoError(t, err)

	// the lock expired and somebody else took the key
	srv.FastForward(2 * time.Second)
	other, err := locker.TryLock(ctx, []string{"a"})
	require.NoError(t, err)

	unlock(ctx)
	assert.True(t, srv.Exists(lockKeyPrefix+"a"), "stale owner must not release the new owner's lock")

	other(ctx)
	assert.False(t, srv.Exists(lockKeyPrefix+"a"))
}

func TestRecordLocker_ExpiresAfterTTL(t *testing.T) {
	srv := newMiniredisClient(t)
	locker := NewRecordLocker(30 * time.Second)

	_, err := locker.TryLock(context.Background(), []string{"k"})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, srv.TTL(lockKeyPrefix+"k"))
}
