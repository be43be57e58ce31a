package resp

import (
	"crypto/tls"
	"fmt"
	"github.com/ValentinKolb/dSess/rpc/common"
	"github.com/ValentinKolb/dSess/rpc/transport/base"
	"github.com/redis/go-redis/v9"
	"net/url"
	"strings"
	"time"
)

// TransportName is the name of this transport in logs and metrics
const TransportName = "resp"

// abortConnectOptions are connection string options that are always removed.
// Creating a client never fails because the server is unreachable.
var abortConnectOptions = []string{"abortConnect", "abort_connect", "abortconnect"}

// --------------------------------------------------------------------------
// Connector (implements base.IClientConnector)
// --------------------------------------------------------------------------

type redisConnector struct {
	options *redis.Options
}

// NewRedisConnector creates a connector that creates one go-redis client per
// pool connection. Each client holds a single socket so that the pool (and not
// the client) decides about reuse and replacement.
func NewRedisConnector(cfg common.ClientConfig) (base.IClientConnector[*redis.Client], error) {
	options, err := ToRedisOptions(cfg)
	if err != nil {
		return nil, err
	}
	return &redisConnector{options: options}, nil
}

// Connect creates a new client. go-redis dials lazily, so this never fails
// because the server is unreachable.
// Every client gets its own copy of the options, go-redis modifies and keeps them.
func (c *redisConnector) Connect() (*redis.Client, error) {
	options := *c.options
	return redis.NewClient(&options), nil
}

func (c *redisConnector) GetName() string {
	return TransportName
}

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// ToRedisOptions converts the client configuration to go-redis options.
// A connection string overrides the discrete host, port, access key and ssl settings.
func ToRedisOptions(cfg common.ClientConfig) (*redis.Options, error) {
	var options *redis.Options

	if cfg.ConnectionString != "" {
		connStr, hasDB, err := normalizeConnectionString(cfg.ConnectionString)
		if err != nil {
			return nil, err
		}
		options, err = redis.ParseURL(connStr)
		if err != nil {
			return nil, fmt.Errorf("invalid connection string: %w", err)
		}
		if !hasDB {
			options.DB = cfg.DatabaseId
		}
	} else {
		options = &redis.Options{
			Addr:     cfg.Address(),
			Password: cfg.AccessKey,
			DB:       cfg.DatabaseId,
		}
		if cfg.UseSSL {
			options.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
				ServerName: cfg.Host,
			}
		}
	}

	if cfg.ConnectionTimeoutMs > 0 {
		options.DialTimeout = time.Duration(cfg.ConnectionTimeoutMs) * time.Millisecond
	}
	if cfg.OperationTimeoutMs > 0 {
		options.ReadTimeout = time.Duration(cfg.OperationTimeoutMs) * time.Millisecond
		options.WriteTimeout = options.ReadTimeout
	}

	// one socket per client, the pool manages reuse
	options.PoolSize = 1
	options.MinIdleConns = 0
	// failed operations are reported, never retried
	options.MaxRetries = -1
	// script replies are decoded as RESP2 arrays
	options.Protocol = 2
	options.ContextTimeoutEnabled = true

	return options, nil
}

// normalizeConnectionString removes the abort-connect options from a redis URL
// and reports whether the URL selects a database.
func normalizeConnectionString(s string) (string, bool, error) {
	u, err := url.Parse(s)
	if err != nil {
		return "", false, fmt.Errorf("invalid connection string: %w", err)
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return "", false, fmt.Errorf("invalid connection string: unsupported scheme %q (expected redis or rediss)", u.Scheme)
	}

	query := u.Query()
	for _, name := range abortConnectOptions {
		query.Del(name)
	}
	u.RawQuery = query.Encode()

	hasDB := strings.Trim(u.Path, "/") != "" || query.Has("db")
	return u.String(), hasDB, nil
}
