package transport

import (
	"github.com/ValentinKolb/dSess/rpc/transport/base"
	"io"
)

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IConnectionPool is the interface of a pool of physical connections.
// It is implemented by base.ConnectionPool.
type IConnectionPool[C io.Closer] interface {
	// Dequeue returns an idle connection or lazily creates a new one
	Dequeue() (*base.ConnectionHandle[C], error)
	// Enqueue returns a connection for reuse
	Enqueue(h *base.ConnectionHandle[C])
	// ForceReconnect discards a connection suspected to be broken and returns a replacement
	ForceReconnect(h *base.ConnectionHandle[C]) (*base.ConnectionHandle[C], error)
	// Close closes all idle connections
	Close() error
}
