// Package cache implements a shared output cache on top of a store.IStore.
//
// The central primitive is AtomicCreate: a single script that writes a value
// only if the key does not exist and otherwise returns the existing value.
// When many processes render the same response at the same time, all of them
// end up with the same cached entry, the first writer wins and nobody
// overwrites it.
//
// Key Components:
//
//   - AtomicCreate: insert-if-absent on a raw key, expiry in milliseconds.
//
//   - ICache: Add, Get, Set and Remove of arbitrary values. Values are
//     serialized with the configured serializer, keys are prefixed with the
//     application name. Expiry times are absolute (UTC).
//
//   - AsyncCache: the asynchronous shape of ICache.
package cache
