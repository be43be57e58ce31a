package resp

import (
	"context"
	"github.com/ValentinKolb/dSess/rpc/common"
	"github.com/ValentinKolb/dSess/rpc/transport/base"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"testing"
	"time"
)

func TestToRedisOptions(t *testing.T) {
	tests := []struct {
		name     string
		cfg      common.ClientConfig
		wantAddr string
		wantDB   int
		wantPass string
		wantTLS  bool
		wantErr  bool
	}{
		{
			name:     "discrete",
			cfg:      common.ClientConfig{Host: "cache.local", Port: 6380, AccessKey: "key", DatabaseId: 3},
			wantAddr: "cache.local:6380", wantDB: 3, wantPass: "key",
		},
		{
			name:     "discrete with ssl",
			cfg:      common.ClientConfig{Host: "cache.local", Port: 6380, UseSSL: true},
			wantAddr: "cache.local:6380", wantTLS: true,
		},
		{
			name:     "connection string overrides discrete fields",
			cfg:      common.ClientConfig{Host: "ignored", Port: 1, AccessKey: "ignored", ConnectionString: "redis://:pw@other:6379/5"},
			wantAddr: "other:6379", wantDB: 5, wantPass: "pw",
		},
		{
			name:     "connection string without database uses database id",
			cfg:      common.ClientConfig{DatabaseId: 7, ConnectionString: "redis://other:6379"},
			wantAddr: "other:6379", wantDB: 7,
		},
		{
			name:     "abort connect is stripped",
			cfg:      common.ClientConfig{ConnectionString: "rediss://other:6380?abortConnect=true"},
			wantAddr: "other:6380", wantTLS: true,
		},
		{
			name:    "unsupported scheme",
			cfg:     common.ClientConfig{ConnectionString: "http://other:6379"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToRedisOptions(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ToRedisOptions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Addr != tt.wantAddr {
				t.Errorf("Addr = %q, want %q", got.Addr, tt.wantAddr)
			}
			if got.DB != tt.wantDB {
				t.Errorf("DB = %d, want %d", got.DB, tt.wantDB)
			}
			if got.Password != tt.wantPass {
				t.Errorf("Password = %q, want %q", got.Password, tt.wantPass)
			}
			if (got.TLSConfig != nil) != tt.wantTLS {
				t.Errorf("TLSConfig = %v, want tls %v", got.TLSConfig, tt.wantTLS)
			}
			if got.PoolSize != 1 || got.MaxRetries != -1 {
				t.Errorf("PoolSize = %d, MaxRetries = %d, want 1 and -1", got.PoolSize, got.MaxRetries)
			}
		})
	}
}

func TestTimeouts(t *testing.T) {
	got, err := ToRedisOptions(common.ClientConfig{Host: "h", Port: 1, ConnectionTimeoutMs: 250, OperationTimeoutMs: 40})
	if err != nil {
		t.Fatalf("ToRedisOptions() error = %v", err)
	}
	if got.DialTimeout != 250*time.Millisecond {
		t.Errorf("DialTimeout = %v, want 250ms", got.DialTimeout)
	}
	if got.ReadTimeout != 40*time.Millisecond || got.WriteTimeout != 40*time.Millisecond {
		t.Errorf("ReadTimeout = %v, WriteTimeout = %v, want 40ms", got.ReadTimeout, got.WriteTimeout)
	}
}

// TestConnectUnreachable tests that a client is created even if no server is listening
func TestConnectUnreachable(t *testing.T) {
	connector, err := NewRedisConnector(common.ClientConfig{Host: "127.0.0.1", Port: 1, ConnectionTimeoutMs: 50})
	if err != nil {
		t.Fatalf("NewRedisConnector() error = %v", err)
	}
	client, err := connector.Connect()
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if err := client.Ping(context.Background()).Err(); err == nil {
		t.Error("Ping() error = nil, want connection error")
	}
}

func TestConnect(t *testing.T) {
	srv := miniredis.RunT(t)

	connector, err := NewRedisConnector(common.ClientConfig{ConnectionString: "redis://" + srv.Addr() + "?abortConnect=false"})
	if err != nil {
		t.Fatalf("NewRedisConnector() error = %v", err)
	}
	if connector.GetName() != TransportName {
		t.Errorf("GetName() = %q, want %q", connector.GetName(), TransportName)
	}

	client, err := connector.Connect()
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

// TestConnectOptionsNotShared tests that clients never share their options
func TestConnectOptionsNotShared(t *testing.T) {
	connector, err := NewRedisConnector(common.ClientConfig{Host: "127.0.0.1", Port: 6379})
	if err != nil {
		t.Fatalf("NewRedisConnector() error = %v", err)
	}
	a, _ := connector.Connect()
	b, _ := connector.Connect()
	defer a.Close()
	defer b.Close()

	if a.Options() == b.Options() {
		t.Error("Connect() returned clients sharing one *redis.Options")
	}
}

// TestPoolConcurrentConnect tests that many pool users can create and use connections at the same time
func TestPoolConcurrentConnect(t *testing.T) {
	srv := miniredis.RunT(t)

	connector, err := NewRedisConnector(common.ClientConfig{ConnectionString: "redis://" + srv.Addr()})
	if err != nil {
		t.Fatalf("NewRedisConnector() error = %v", err)
	}
	pool := base.NewConnectionPool[*redis.Client](connector, 64)
	defer pool.Close()

	ctx := context.Background()
	var g errgroup.Group
	for w := 0; w < 16; w++ {
		g.Go(func() error {
			for i := 0; i < 10; i++ {
				h, err := pool.Dequeue()
				if err != nil {
					return err
				}
				if err := h.Conn().Ping(ctx).Err(); err != nil {
					return err
				}
				pool.Enqueue(h)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("worker error = %v", err)
	}
}
