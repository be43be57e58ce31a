package base

import (
	"fmt"
	"github.com/VictoriaMetrics/metrics"
	"github.com/hashicorp/go-multierror"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"io"
	"sync"
	"sync/atomic"
)

var Logger = logger.GetLogger("pool")

const (
	// DefaultIdleCapacity is the number of idle connections kept when no capacity is configured
	DefaultIdleCapacity = 1024
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector[C io.Closer] interface {
	// Connect creates a single connection. It should only fail if no connection
	// object can be created at all, not because the server is unreachable.
	Connect() (C, error)

	// GetName returns the name of the transport type (e.g. "resp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// ConnectionHandle is a checked-out reference to one physical connection
type ConnectionHandle[C io.Closer] struct {
	id   uint64
	conn C
}

// Conn returns the underlying connection
func (h *ConnectionHandle[C]) Conn() C {
	return h.conn
}

// ID returns the id of the connection, unique within its pool
func (h *ConnectionHandle[C]) ID() uint64 {
	return h.id
}

// ConnectionPool keeps a free-list of connections. Connections are created
// lazily on Dequeue and are never repaired in place: a connection suspected
// to be broken is closed and replaced with ForceReconnect.
// The number of live connections is not limited. Unlike an unbounded
// free-list, the number of idle connections is capped at idleCapacity:
// a connection returned to a full free-list is closed, so the pool shrinks
// back to idleCapacity after a burst.
type ConnectionPool[C io.Closer] struct {
	connector IClientConnector[C]
	free      *xsync.MPMCQueueOf[*ConnectionHandle[C]]
	nextID    atomic.Uint64
	closeMu   sync.Mutex
	closed    atomic.Bool

	created        *metrics.Counter
	reconnects     *metrics.Counter
	discarded      *metrics.Counter
	teardownErrors *metrics.Counter
}

// -----------------------------------------------------------
// Pool Factory Method
// -----------------------------------------------------------

// NewConnectionPool creates a new pool for connections created by connector.
// idleCapacity limits how many idle connections are kept (<= 0 uses DefaultIdleCapacity).
func NewConnectionPool[C io.Closer](connector IClientConnector[C], idleCapacity int) *ConnectionPool[C] {
	if idleCapacity <= 0 {
		idleCapacity = DefaultIdleCapacity
	}
	name := connector.GetName()
	return &ConnectionPool[C]{
		connector:      connector,
		free:           xsync.NewMPMCQueueOf[*ConnectionHandle[C]](idleCapacity),
		created:        metrics.GetOrCreateCounter(fmt.Sprintf(`dsess_pool_connections_created_total{transport=%q}`, name)),
		reconnects:     metrics.GetOrCreateCounter(fmt.Sprintf(`dsess_pool_reconnects_total{transport=%q}`, name)),
		discarded:      metrics.GetOrCreateCounter(fmt.Sprintf(`dsess_pool_discarded_total{transport=%q}`, name)),
		teardownErrors: metrics.GetOrCreateCounter(fmt.Sprintf(`dsess_pool_teardown_errors_total{transport=%q}`, name)),
	}
}

// --------------------------------------------------------------------------
// Pool Methods
// --------------------------------------------------------------------------

// Dequeue returns an idle connection or creates a new one
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (p *ConnectionPool[C]) Dequeue() (*ConnectionHandle[C], error) {
	if p.closed.Load() {
		return nil, fmt.Errorf("connection pool is closed")
	}
	if h, ok := p.free.TryDequeue(); ok {
		return h, nil
	}
	return p.connect()
}

// Enqueue returns a connection to the pool for reuse. If the pool already
// holds idleCapacity idle connections (or is closed) the connection is closed instead.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (p *ConnectionPool[C]) Enqueue(h *ConnectionHandle[C]) {
	if h == nil {
		return
	}
	if !p.closed.Load() && p.free.TryEnqueue(h) {
		// Close may have drained the free-list between the check and the enqueue
		if p.closed.Load() {
			p.drainQuietly()
		}
		return
	}
	p.discarded.Inc()
	p.closeQuietly(h)
}

// ForceReconnect closes the given connection and creates a replacement.
// Errors raised while closing are swallowed, the handle is discarded either way.
// The old handle must not be used afterwards.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (p *ConnectionPool[C]) ForceReconnect(h *ConnectionHandle[C]) (*ConnectionHandle[C], error) {
	p.reconnects.Inc()
	if h != nil {
		Logger.Infof("Replacing %s connection %d", p.connector.GetName(), h.id)
		p.closeQuietly(h)
	}
	return p.connect()
}

// Close closes all idle connections. Connections that are checked out are
// closed when they are returned.
func (p *ConnectionPool[C]) Close() error {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()

	p.closed.Store(true)

	var result *multierror.Error
	for {
		h, ok := p.free.TryDequeue()
		if !ok {
			break
		}
		if err := h.conn.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing connection %d: %w", h.id, err))
		}
	}
	return result.ErrorOrNil()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// connect creates a new connection with a new id
func (p *ConnectionPool[C]) connect() (*ConnectionHandle[C], error) {
	conn, err := p.connector.Connect()
	if err != nil {
		return nil, fmt.Errorf("failed to create %s connection: %w", p.connector.GetName(), err)
	}
	h := &ConnectionHandle[C]{
		id:   p.nextID.Add(1),
		conn: conn,
	}
	p.created.Inc()
	Logger.Debugf("Created %s connection %d", p.connector.GetName(), h.id)
	return h, nil
}

// drainQuietly closes all idle connections and only logs errors
func (p *ConnectionPool[C]) drainQuietly() {
	for {
		h, ok := p.free.TryDequeue()
		if !ok {
			return
		}
		p.discarded.Inc()
		p.closeQuietly(h)
	}
}

// closeQuietly closes a connection and only logs errors
func (p *ConnectionPool[C]) closeQuietly(h *ConnectionHandle[C]) {
	if err := h.conn.Close(); err != nil {
		p.teardownErrors.Inc()
		Logger.Debugf("Ignoring error while closing %s connection %d: %v", p.connector.GetName(), h.id, err)
	}
}
