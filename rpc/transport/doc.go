// Package transport defines the abstractions the store client uses to manage
// its connections to the remote store.
//
// Key Components:
//
//   - IConnectionPool: Interface for a pool of physical connections that
//     supports discarding and replacing broken ones.
//
// The subpackages provide the implementations:
//
//   - base: the transport independent ConnectionPool.
//
//   - resp: connections that speak the Redis serialization protocol.
package transport
