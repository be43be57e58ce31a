// Package collection implements the change tracking view over the entries of
// a session record.
//
// A ChangeTrackingCollection is seeded with the raw bytes returned by the lock
// script and hands out values on demand. Every value sits in a ValueWrapper
// that is either still raw or materialized; raw values are only deserialized
// when read and are written back untouched when they were never read.
//
// Change Tracking:
//
//   - Set always marks the key as modified.
//   - Remove, RemoveAt and Clear mark existing keys as deleted.
//   - Get marks the key as modified only if the value is a mutable reference
//     (map, slice, pointer, ...) since the caller may change it in place.
//     Value kinds (numbers, strings, structs) never mark anything.
//   - A key is never modified and deleted at the same time; the last operation wins.
//   - SetDirty(false) acknowledges a successful flush and clears both sets.
//
// Keys are case-insensitive. The casing used when a key is inserted first is
// kept for the whole lifetime of the collection and is the name written to the store.
package collection
