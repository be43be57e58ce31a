package lockmgr

import (
	"context"
	"github.com/ValentinKolb/dSess/lib/collection"
	"time"
)

// LockResult is returned when trying to take a lock. If Acquired is false,
// Token, Data and LeaseSeconds describe the current holder so the caller can
// decide whether the lock is stale.
type LockResult struct {
	Acquired     bool
	Token        LockToken
	Data         *collection.ChangeTrackingCollection
	LeaseSeconds int // -1 if the record has no lease
}

// LockState is returned by the read only lock inspection
type LockState struct {
	Locked       bool
	Token        LockToken // empty if not locked
	Data         *collection.ChangeTrackingCollection
	LeaseSeconds int // -1 if the record has no lease
}

// ILockManager defines the interface for the exclusive access protocol of session records.
// Every state changing method is a single atomic operation of the store.
// No method retries, errors of the store are returned to the caller.
type ILockManager interface {
	// TryTakeWriteLockAndGetData takes the lock of the record if it is not locked.
	// The new token embeds now and the lock expires after leaseSeconds.
	// The payload is returned in both cases.
	TryTakeWriteLockAndGetData(ctx context.Context, id string, now time.Time, leaseSeconds int) (LockResult, error)

	// TryCheckWriteLockAndGetData returns the lock state and payload without taking the lock.
	TryCheckWriteLockAndGetData(ctx context.Context, id string) (LockState, error)

	// TryReleaseLockIfLockIdMatch releases the lock if token is the current owner
	// and refreshes the expiration of the record to leaseSeconds.
	// Returns false (and changes nothing) if the token does not match.
	TryReleaseLockIfLockIdMatch(ctx context.Context, id string, token LockToken, leaseSeconds int) (bool, error)

	// TryRemoveAndReleaseLock deletes the record if token is the current owner.
	// Returns false (and changes nothing) if the token does not match.
	TryRemoveAndReleaseLock(ctx context.Context, id string, token LockToken) (bool, error)

	// TryUpdateAndReleaseLock writes the modified entries of data, removes its
	// deleted keys and releases the lock if token is the current owner.
	// On success the change set of data is reset. Returns false (and changes nothing) if the token does not match.
	TryUpdateAndReleaseLock(ctx context.Context, id string, token LockToken, data *collection.ChangeTrackingCollection, leaseSeconds int) (bool, error)

	// Set replaces the whole payload of the record and sets its lease.
	// The lock state is not looked at.
	Set(ctx context.Context, id string, data *collection.ChangeTrackingCollection, leaseSeconds int) error

	// UpdateExpiryTime refreshes the expiration of the payload and the lease without taking the lock.
	UpdateExpiryTime(ctx context.Context, id string, leaseSeconds int) error

	// GetLockAge returns the time since the token was created. No store access.
	GetLockAge(token LockToken) (time.Duration, error)
}
