// Package testutil provides helpers for tests that need a running store.
package testutil

import (
	"github.com/ValentinKolb/dSess/lib/store"
	"github.com/ValentinKolb/dSess/rpc/client"
	"github.com/ValentinKolb/dSess/rpc/common"
	"github.com/ValentinKolb/dSess/rpc/transport/base"
	"github.com/ValentinKolb/dSess/rpc/transport/resp"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"testing"
)

// NewMiniredisStore starts an in-process redis server and returns a store
// connected to it. Server and connections are closed when the test ends.
func NewMiniredisStore(t testing.TB) (store.IStore, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	connector, err := resp.NewRedisConnector(common.ClientConfig{
		ConnectionString:   "redis://" + srv.Addr(),
		OperationTimeoutMs: 1000,
	})
	if err != nil {
		t.Fatalf("failed to create connector: %v", err)
	}

	pool := base.NewConnectionPool[*redis.Client](connector, 64)
	t.Cleanup(func() { _ = pool.Close() })

	return client.NewRedisStore(pool), srv
}
