package lockmgr

import (
	"context"
	"github.com/ValentinKolb/dSess/lib/async"
	"github.com/ValentinKolb/dSess/lib/collection"
	"time"
)

// AsyncLockManager offers the asynchronous shape of an ILockManager.
// Every method runs the synchronous method on its own goroutine and resolves
// with the same result.
type AsyncLockManager struct {
	lm ILockManager
}

// NewAsyncLockManager wraps lm
func NewAsyncLockManager(lm ILockManager) *AsyncLockManager {
	return &AsyncLockManager{lm: lm}
}

func (a *AsyncLockManager) TryTakeWriteLockAndGetData(ctx context.Context, id string, now time.Time, leaseSeconds int) *async.Future[LockResult] {
	return async.Run(func() (LockResult, error) {
		return a.lm.TryTakeWriteLockAndGetData(ctx, id, now, leaseSeconds)
	})
}

func (a *AsyncLockManager) TryCheckWriteLockAndGetData(ctx context.Context, id string) *async.Future[LockState] {
	return async.Run(func() (LockState, error) {
		return a.lm.TryCheckWriteLockAndGetData(ctx, id)
	})
}

func (a *AsyncLockManager) TryReleaseLockIfLockIdMatch(ctx context.Context, id string, token LockToken, leaseSeconds int) *async.Future[bool] {
	return async.Run(func() (bool, error) {
		return a.lm.TryReleaseLockIfLockIdMatch(ctx, id, token, leaseSeconds)
	})
}

func (a *AsyncLockManager) TryRemoveAndReleaseLock(ctx context.Context, id string, token LockToken) *async.Future[bool] {
	return async.Run(func() (bool, error) {
		return a.lm.TryRemoveAndReleaseLock(ctx, id, token)
	})
}

// TryUpdateAndReleaseLock must not be combined with other uses of data until the future is resolved
func (a *AsyncLockManager) TryUpdateAndReleaseLock(ctx context.Context, id string, token LockToken, data *collection.ChangeTrackingCollection, leaseSeconds int) *async.Future[bool] {
	return async.Run(func() (bool, error) {
		return a.lm.TryUpdateAndReleaseLock(ctx, id, token, data, leaseSeconds)
	})
}

func (a *AsyncLockManager) Set(ctx context.Context, id string, data *collection.ChangeTrackingCollection, leaseSeconds int) *async.Future[struct{}] {
	return async.Run(func() (struct{}, error) {
		return struct{}{}, a.lm.Set(ctx, id, data, leaseSeconds)
	})
}

func (a *AsyncLockManager) UpdateExpiryTime(ctx context.Context, id string, leaseSeconds int) *async.Future[struct{}] {
	return async.Run(func() (struct{}, error) {
		return struct{}{}, a.lm.UpdateExpiryTime(ctx, id, leaseSeconds)
	})
}

// GetLockAge is a local computation and therefore synchronous
func (a *AsyncLockManager) GetLockAge(token LockToken) (time.Duration, error) {
	return a.lm.GetLockAge(token)
}
