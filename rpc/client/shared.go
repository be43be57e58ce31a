package client

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dSess/lib/store"
	"github.com/ValentinKolb/dSess/rpc/common"
	"github.com/ValentinKolb/dSess/rpc/serializer"
	"github.com/ValentinKolb/dSess/rpc/transport/base"
	"github.com/ValentinKolb/dSess/rpc/transport/resp"
	"github.com/redis/go-redis/v9"
	"sync"
	"sync/atomic"
	"time"
)

// SharedConnection bundles everything that is created once per process to
// talk to the remote store. It is passed to the lock manager and the cache.
type SharedConnection struct {
	Config     common.ClientConfig
	Pool       *base.ConnectionPool[*redis.Client]
	Store      store.IStore
	Keys       store.KeyNamespacer
	Serializer serializer.IValueSerializer
}

var (
	shared   atomic.Pointer[SharedConnection]
	sharedMu sync.Mutex
)

// NewSharedConnection creates the connection pool and store for cfg and warms
// up one connection. An unreachable server is logged, not returned.
func NewSharedConnection(cfg common.ClientConfig) (*SharedConnection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}

	s, err := serializer.FromName(cfg.Serializer)
	if err != nil {
		return nil, err
	}

	connector, err := resp.NewRedisConnector(cfg)
	if err != nil {
		return nil, err
	}

	pool := base.NewConnectionPool[*redis.Client](connector, cfg.PoolIdleCapacity)
	c := &SharedConnection{
		Config:     cfg,
		Pool:       pool,
		Store:      NewRedisStore(pool),
		Keys:       store.NewKeyNamespacer(cfg.ApplicationName),
		Serializer: s,
	}
	c.warmUp()
	return c, nil
}

// GetSharedConnection returns the process wide connection. It is created on
// the first call, later calls return the same instance and ignore cfg.
//
// Thread-safety: concurrent first calls construct exactly one instance.
func GetSharedConnection(cfg common.ClientConfig) (*SharedConnection, error) {
	if c := shared.Load(); c != nil {
		return c, nil
	}

	sharedMu.Lock()
	defer sharedMu.Unlock()

	if c := shared.Load(); c != nil {
		return c, nil
	}

	c, err := NewSharedConnection(cfg)
	if err != nil {
		return nil, err
	}
	shared.Store(c)
	return c, nil
}

// CloseSharedConnection closes the process wide connection (if any).
// The next call to GetSharedConnection creates a new one.
func CloseSharedConnection() error {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	c := shared.Swap(nil)
	if c == nil {
		return nil
	}
	return c.Close()
}

// Close closes all idle connections of the pool
func (c *SharedConnection) Close() error {
	return c.Pool.Close()
}

// warmUp connects one connection so that the first operation does not pay for the handshake
func (c *SharedConnection) warmUp() {
	h, err := c.Pool.Dequeue()
	if err != nil {
		Logger.Warningf("Failed to create initial connection: %v", err)
		return
	}

	timeout := time.Duration(c.Config.ConnectionTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = time.Duration(common.DefaultConnectionTimeoutMs) * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := h.Conn().Ping(ctx).Err(); err != nil {
		Logger.Warningf("Store is not reachable yet, operations will fail until it is: %v", err)
	} else {
		Logger.Debugf("Connected to the store")
	}
	c.Pool.Enqueue(h)
}
