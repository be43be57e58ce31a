package base

import (
	"errors"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeConn records whether it was closed and optionally fails to close
type fakeConn struct {
	closed   atomic.Bool
	closeErr error
}

func (c *fakeConn) Close() error {
	c.closed.Store(true)
	return c.closeErr
}

// fakeConnector hands out fakeConns and remembers them
type fakeConnector struct {
	mu         sync.Mutex
	conns      []*fakeConn
	closeErr   error
	connectErr error
}

func (f *fakeConnector) Connect() (*fakeConn, error) {
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &fakeConn{closeErr: f.closeErr}
	f.conns = append(f.conns, c)
	return c, nil
}

func (f *fakeConnector) GetName() string {
	return "fake"
}

func (f *fakeConnector) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

// TestLazyCreationAndReuse tests that connections are created on demand and reused after Enqueue
func TestLazyCreationAndReuse(t *testing.T) {
	connector := &fakeConnector{}
	pool := NewConnectionPool[*fakeConn](connector, 4)

	if connector.count() != 0 {
		t.Fatalf("connections created before first use: %d", connector.count())
	}

	h1, err := pool.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}
	pool.Enqueue(h1)

	h2, err := pool.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}
	if h2.ID() != h1.ID() {
		t.Errorf("Dequeue() returned connection %d, want reused connection %d", h2.ID(), h1.ID())
	}
	if connector.count() != 1 {
		t.Errorf("connections created = %d, want 1", connector.count())
	}

	// a second concurrent user gets a new connection
	h3, err := pool.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}
	if h3.ID() == h2.ID() {
		t.Error("Dequeue() handed out a connection that is already checked out")
	}
}

// TestForceReconnect tests that a suspect connection is closed and replaced, never repaired
func TestForceReconnect(t *testing.T) {
	tests := []struct {
		name     string
		closeErr error
	}{
		{name: "clean close"},
		{name: "close error is swallowed", closeErr: errors.New("broken pipe")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connector := &fakeConnector{closeErr: tt.closeErr}
			pool := NewConnectionPool[*fakeConn](connector, 4)

			old, err := pool.Dequeue()
			if err != nil {
				t.Fatalf("Dequeue() error = %v", err)
			}

			replacement, err := pool.ForceReconnect(old)
			if err != nil {
				t.Fatalf("ForceReconnect() error = %v", err)
			}
			if !old.Conn().closed.Load() {
				t.Error("ForceReconnect() did not close the old connection")
			}
			if replacement.Conn() == old.Conn() {
				t.Error("ForceReconnect() returned the old connection")
			}
			if replacement.Conn().closed.Load() {
				t.Error("ForceReconnect() returned a closed connection")
			}
		})
	}
}

// TestForceReconnectConnectFailure tests that a failing connector is reported
func TestForceReconnectConnectFailure(t *testing.T) {
	connector := &fakeConnector{}
	pool := NewConnectionPool[*fakeConn](connector, 4)

	h, err := pool.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue() error = %v", err)
	}

	connector.connectErr = errors.New("no client")
	if _, err := pool.ForceReconnect(h); err == nil {
		t.Error("ForceReconnect() error = nil, want connect error")
	}
}

// TestIdleCapacity tests that handles beyond the idle capacity are closed on Enqueue
func TestIdleCapacity(t *testing.T) {
	connector := &fakeConnector{}
	pool := NewConnectionPool[*fakeConn](connector, 2)

	var handles []*ConnectionHandle[*fakeConn]
	for i := 0; i < 3; i++ {
		h, err := pool.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue() error = %v", err)
		}
		handles = append(handles, h)
	}
	for _, h := range handles {
		pool.Enqueue(h)
	}

	closed := 0
	for _, h := range handles {
		if h.Conn().closed.Load() {
			closed++
		}
	}
	if closed != 1 {
		t.Errorf("closed connections = %d, want 1", closed)
	}
}

// TestClose tests that Close closes idle connections and aggregates errors
func TestClose(t *testing.T) {
	connector := &fakeConnector{closeErr: errors.New("close failed")}
	pool := NewConnectionPool[*fakeConn](connector, 4)

	h1, _ := pool.Dequeue()
	h2, _ := pool.Dequeue()
	pool.Enqueue(h1)
	pool.Enqueue(h2)

	err := pool.Close()
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("Close() error = %v, want *multierror.Error", err)
	}
	if len(merr.Errors) != 2 {
		t.Errorf("Close() aggregated %d errors, want 2", len(merr.Errors))
	}

	if _, err := pool.Dequeue(); err == nil {
		t.Error("Dequeue() after Close() should fail")
	}

	// handles returned after close are closed immediately
	h3 := &ConnectionHandle[*fakeConn]{id: 99, conn: &fakeConn{}}
	pool.Enqueue(h3)
	if !h3.Conn().closed.Load() {
		t.Error("Enqueue() after Close() did not close the connection")
	}
}

// TestEnqueueDuringClose tests that no connection stays open when handles are returned while the pool closes
func TestEnqueueDuringClose(t *testing.T) {
	for round := 0; round < 20; round++ {
		connector := &fakeConnector{}
		pool := NewConnectionPool[*fakeConn](connector, 64)

		var handles []*ConnectionHandle[*fakeConn]
		for i := 0; i < 32; i++ {
			h, err := pool.Dequeue()
			if err != nil {
				t.Fatalf("Dequeue() error = %v", err)
			}
			handles = append(handles, h)
		}

		var g errgroup.Group
		for _, h := range handles {
			g.Go(func() error {
				pool.Enqueue(h)
				return nil
			})
		}
		g.Go(func() error {
			return pool.Close()
		})
		if err := g.Wait(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		for _, h := range handles {
			if !h.Conn().closed.Load() {
				t.Fatalf("round %d: connection %d still open after Close()", round, h.ID())
			}
		}
	}
}

// TestConcurrentUse tests that no handle is ever checked out twice at the same time
func TestConcurrentUse(t *testing.T) {
	connector := &fakeConnector{}
	pool := NewConnectionPool[*fakeConn](connector, 64)

	var inUse sync.Map
	var g errgroup.Group
	for w := 0; w < 16; w++ {
		g.Go(func() error {
			for i := 0; i < 200; i++ {
				h, err := pool.Dequeue()
				if err != nil {
					return err
				}
				if _, loaded := inUse.LoadOrStore(h.ID(), true); loaded {
					return errors.New("connection checked out twice")
				}
				inUse.Delete(h.ID())
				pool.Enqueue(h)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
