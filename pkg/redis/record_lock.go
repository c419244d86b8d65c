package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another owner holds one of the requested keys.
var ErrLockHeld = errors.New("lock held by another owner")

const lockKeyPrefix = "lock:record:"

// releaseScript deletes a key only when it still carries the owner's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RecordLocker hands out all-or-nothing exclusive locks on record keys.
// It never waits for a held key.
type RecordLocker struct {
	ttl time.Duration
}

// NewRecordLocker creates a locker whose locks expire after ttl if the owner dies.
func NewRecordLocker(ttl time.Duration) *RecordLocker {
	return &RecordLocker{ttl: ttl}
}

// TryLock acquires every key or releases what it took and returns ErrLockHeld.
func (l *RecordLocker) TryLock(ctx context.Context, keys []string) (func(context.Context), error) {
	token := uuid.New().String()
	acquired := make([]string, 0, len(keys))

	unlock := func(ctx context.Context) {
		for _, key := range acquired {
			_ = releaseScript.Run(ctx, client, []string{key}, token).Err()
		}
	}

	for _, key := range keys {
		ok, err := SetNX(ctx, lockKeyPrefix+key, token, l.ttl)
		if err != nil {
			unlock(ctx)
			return nil, err
		}
		if !ok {
			unlock(ctx)
			return nil, ErrLockHeld
		}
		acquired = append(acquired, lockKeyPrefix+key)
	}

	return unlock, nil
}
