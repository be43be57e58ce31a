// Package lockmgr implements the exclusive access protocol for session records
// stored in a store.IStore. It lets many processes share one record while only
// one of them at a time may change it.
//
// The lockmgr only ever stores in the provided IStore and has no other internal
// state. Therefore it is safe to be created multiple times on the same store,
// in the same or in different processes.
//
// Core Functionality:
//   - Lock acquisition that returns the payload of the record in the same round trip
//   - Lease based expiration, a crashed holder never blocks a record forever
//   - Release, update and remove operations that verify ownership
//   - Minimal writes: only the modified and deleted keys of a change tracking
//     collection are sent on update
//
// Implementation Approach:
//
//	A record consists of three keys (lock, data and lease, see
//	store.KeyNamespacer.RecordKeys). Every state changing operation is a single
//	Lua script, the read of the lock state, the ownership check and the write
//	can therefore not be interleaved with other clients:
//
//	- Lock Acquisition: If the lock key is missing it is set to a new token
//	  with leaseSeconds as TTL. A lease stored with the record only refreshes
//	  the payload and lease keys. Otherwise nothing changes. In both cases the
//	  current token, payload and lease are returned, so the caller can decide
//	  whether a foreign lock is stale (see GetLockAge).
//
//	- Tokens: "<unix nanos>.<uuid>". The acquisition time is part of the
//	  token, the age of a lock is computed locally without a round trip.
//
//	- Safe Release: Release, update and remove first compare the token with
//	  the current owner. On mismatch the record is not touched and false is
//	  returned. This protects against holders whose lease expired and whose
//	  lock was taken over by another process.
//
// Error Handling:
//
//	Errors of the store are returned unchanged. Nothing is retried, a lock
//	conflict is not an error but a LockResult with Acquired == false.
//	Invalid arguments (empty id, non positive lease) fail with
//	store.RetCInvalidOperation before any store access.
//
// Thread Safety:
//
//	The lock manager is safe for concurrent use. The collections it returns
//	are not and belong to the caller.
//
// Usage Example:
//
//	locks := lockmgr.NewLockManager(conn.Store, conn.Keys, conn.Serializer)
//
//	res, err := locks.TryTakeWriteLockAndGetData(ctx, "S1", time.Now(), 900)
//	if err != nil {
//	    // Handle error
//	}
//
//	if res.Acquired {
//	    res.Data.Set("cart", cart)
//	    ok, err := locks.TryUpdateAndReleaseLock(ctx, "S1", res.Token, res.Data, 900)
//	    // ...
//	} else if age, _ := locks.GetLockAge(res.Token); age > 2*time.Minute {
//	    // the holder probably crashed, apply the own staleness policy
//	}
//
// Metrics:
//
//	dsess_lock_acquired_total, dsess_lock_conflicts_total,
//	dsess_lock_released_total and dsess_lock_release_mismatch_total.
package lockmgr
