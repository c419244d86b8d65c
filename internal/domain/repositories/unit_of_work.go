package repositories

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// UnitOfWork defines the interface for atomic operations
type UnitOfWork interface {
	// Do executes the given function within a transaction scope. A Do nested
	// inside another joins the outer transaction.
	Do(ctx context.Context, fn func(ctx context.Context) error) error

	// Exclusive runs fn like Do while holding exclusive access to the declared
	// writable records. If any of them is held by another unit the call is
	// rejected with ErrRecordLocked; it never waits.
	Exclusive(ctx context.Context, records []common.Address, fn func(ctx context.Context) error) error
}

// RecordLocker grants exclusive access to record identifiers
type RecordLocker interface {
	// TryLock locks every key or none of them.
	TryLock(ctx context.Context, keys []string) (unlock func(context.Context), err error)
}
