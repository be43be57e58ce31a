// Package store defines the contract of the remote key-value store that all
// session and cache operations are built upon.
//
// The package focuses on:
//   - A unified interface (IStore) for the handful of operations the layer needs:
//     get, set, delete, expire and the atomic execution of a server side script
//   - A structured error type with return codes so callers can tell transport
//     failures from errors reported by the store itself
//   - Key naming (KeyNamespacer) so one store instance can host many applications
//
// Key Components:
//
//   - IStore Interface: every method is one blocking round trip and takes a
//     context.Context. Eval is the only way to combine a read, a condition and a
//     write; implementations must run it without interleaving other clients.
//
//   - Error System: Error carries a RetCode and the cause. RetCConnectionFailure
//     marks transport errors (the connection that produced it has already been
//     replaced), RetCScriptFailure marks error replies of the store, which are
//     kept verbatim. Nothing in this layer retries.
//
//   - KeyNamespacer: turns a logical key into "{app}_{key}" and derives the three
//     keys of a session record (lock, data, lease) sharing one hash tag.
//
// Implementations:
//
//	The Redis implementation lives in "github.com/ValentinKolb/dSess/rpc/client".
//	Tests use the same implementation against an in-process miniredis server
//	(see "github.com/ValentinKolb/dSess/lib/testutil").
package store
