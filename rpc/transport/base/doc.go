// Package base provides the transport independent connection pool used by the
// store client. Protocol specific packages (see rpc/transport/resp) only have
// to implement IClientConnector, the pool takes care of reuse and replacement.
//
// The package focuses on:
//   - Lazy creation of connections on first use
//   - Lock-free reuse of idle connections
//   - Replacing connections that are suspected to be broken instead of repairing them
//
// Key Components:
//
//   - IClientConnector: Interface for protocol specific connection creation.
//
//   - ConnectionPool: Free-list of idle connections backed by a lock-free
//     MPMC queue. Dequeue pops an idle connection or connects a new one, Enqueue
//     returns it. The pool never limits the number of live connections, only the
//     number of idle ones: the free-list is bounded by the idle capacity and
//     connections returned to a full free-list are closed. Back-pressure is the
//     responsibility of the caller.
//
//   - ConnectionHandle: A checked-out connection. After a transport failure the
//     handle is passed to ForceReconnect, which closes it (ignoring close errors)
//     and returns a fresh replacement.
//
// Metrics:
//
//	The pool exports the counters dsess_pool_connections_created_total,
//	dsess_pool_reconnects_total, dsess_pool_discarded_total and
//	dsess_pool_teardown_errors_total, labeled with the transport name.
//
// Thread Safety:
//
//	All public methods are thread-safe. A handle belongs to exactly one caller
//	between Dequeue and Enqueue (or ForceReconnect).
package base
