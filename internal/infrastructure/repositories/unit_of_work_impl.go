package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"

	domainerrors "wrapchain.backend/internal/domain/errors"
	domainRepos "wrapchain.backend/internal/domain/repositories"
	"wrapchain.backend/pkg/metrics"
	"wrapchain.backend/pkg/redis"
)

type contextKey string

const (
	txKey      contextKey = "tx_db"
	lockSetKey contextKey = "lock_set"
)

var commitTx = func(tx *gorm.DB) error {
	return tx.Commit().Error
}

// lockSet tracks the record locks held by one outermost unit of work so nested
// units reuse them and nothing is released before the outer commit.
type lockSet struct {
	held    map[string]struct{}
	unlocks []func(context.Context)
}

func (s *lockSet) release(ctx context.Context) {
	for i := len(s.unlocks) - 1; i >= 0; i-- {
		s.unlocks[i](ctx)
	}
}

// UnitOfWorkImpl implements UnitOfWork using GORM
type UnitOfWorkImpl struct {
	db     *gorm.DB
	locker domainRepos.RecordLocker
}

// NewUnitOfWork creates a new UnitOfWork. A nil locker disables record locking.
func NewUnitOfWork(db *gorm.DB, locker domainRepos.RecordLocker) domainRepos.UnitOfWork {
	return &UnitOfWorkImpl{db: db, locker: locker}
}

// Do executes the given function within a transaction scope
func (u *UnitOfWorkImpl) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	// nested units join the outer transaction; the outer one commits or rolls back
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	txCtx := context.WithValue(ctx, txKey, tx)
	if err := fn(txCtx); err != nil {
		tx.Rollback()
		return err
	}

	if err := commitTx(tx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Exclusive locks the declared writable records, then runs fn via Do.
func (u *UnitOfWorkImpl) Exclusive(ctx context.Context, records []common.Address, fn func(ctx context.Context) error) error {
	set, nested := ctx.Value(lockSetKey).(*lockSet)
	if !nested {
		set = &lockSet{held: map[string]struct{}{}}
		ctx = context.WithValue(ctx, lockSetKey, set)
		defer set.release(context.WithoutCancel(ctx))
	}

	if err := u.acquire(ctx, set, records); err != nil {
		return err
	}
	return u.Do(ctx, fn)
}

func (u *UnitOfWorkImpl) acquire(ctx context.Context, set *lockSet, records []common.Address) error {
	if u.locker == nil {
		return nil
	}

	var keys []string
	seen := map[string]struct{}{}
	for _, record := range records {
		key := record.Hex()
		if _, ok := set.held[key]; ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)

	unlock, err := u.locker.TryLock(ctx, keys)
	if err != nil {
		if errors.Is(err, redis.ErrLockHeld) {
			metrics.LockConflicts.Inc()
			return domainerrors.RecordLocked("record is in use by another operation, resubmit the call")
		}
		return domainerrors.InternalError(fmt.Errorf("failed to lock records: %w", err))
	}

	for _, key := range keys {
		set.held[key] = struct{}{}
	}
	set.unlocks = append(set.unlocks, unlock)
	return nil
}

// GetDB extracts the Transaction DB from context if present, otherwise returns standard DB
func (u *UnitOfWorkImpl) GetDB(ctx context.Context) *gorm.DB {
	return GetDB(ctx, u.db)
}

// GetDB returns the transaction carried by ctx or the fallback handle.
func GetDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
