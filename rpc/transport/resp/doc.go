// Package resp creates connections to a Redis compatible store using go-redis.
//
// Every pool connection is a *redis.Client limited to a single socket, with
// retries disabled and the configured connect and operation timeouts. Failed
// operations are therefore reported to the caller as they happen, the caller
// replaces the connection through the pool.
//
// Connection strings are redis URLs (redis:// or rediss://). The options
// abortConnect and abort_connect are removed before parsing: creating a client
// never fails because the server is unreachable, the first operation does.
package resp
