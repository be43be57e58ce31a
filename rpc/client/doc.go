// Package client implements store.IStore on top of a Redis compatible server
// and provides the process wide shared connection.
//
// Key Components:
//
//   - NewRedisStore: Executes every operation on a connection from the pool.
//     Scripts are run with EVALSHA and fall back to EVAL when the server does
//     not know them yet. Errors are classified into store.Error codes:
//     replies of the server are script failures, transport errors are
//     connection failures. After a connection failure the connection is
//     replaced, but the failed operation is never retried.
//
//   - SharedConnection: Pool, store, key namespacer and value serializer of
//     the process. GetSharedConnection creates it once (double checked under
//     a mutex) and returns the same instance afterwards.
//
// Usage:
//
//	conn, err := client.GetSharedConnection(cfg)
//	locks := lockmgr.NewLockManager(conn.Store, conn.Keys, conn.Serializer)
//	defer client.CloseSharedConnection()
package client
