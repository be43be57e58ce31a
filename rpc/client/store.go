package client

import (
	"context"
	"errors"
	"github.com/ValentinKolb/dSess/lib/store"
	"github.com/ValentinKolb/dSess/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/redis/go-redis/v9"
	"io"
	"net"
	"time"
)

var Logger = logger.GetLogger("store")

// NewRedisStore creates a store.IStore that executes every operation on a
// connection taken from pool. A connection that fails with a transport error is
// replaced before the error is returned, so the next operation uses a fresh one.
func NewRedisStore(pool transport.IConnectionPool[*redis.Client]) store.IStore {
	return &redisStore{
		pool:    pool,
		scripts: xsync.NewMapOf[string, *redis.Script](),
	}
}

type redisStore struct {
	pool    transport.IConnectionPool[*redis.Client]
	scripts *xsync.MapOf[string, *redis.Script] // script source -> script (with cached sha)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (s *redisStore) Get(ctx context.Context, key string) (value []byte, loaded bool, err error) {
	err = s.invoke(func(c *redis.Client) (err error) {
		value, err = c.Get(ctx, key).Bytes()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte, expireIn time.Duration) (err error) {
	if expireIn < 0 {
		return store.NewError(store.RetCInvalidOperation, "negative expiration")
	}
	return s.invoke(func(c *redis.Client) error {
		return c.Set(ctx, key, value, expireIn).Err()
	})
}

func (s *redisStore) Delete(ctx context.Context, key string) (err error) {
	return s.invoke(func(c *redis.Client) error {
		return c.Del(ctx, key).Err()
	})
}

func (s *redisStore) Expire(ctx context.Context, key string, expireIn time.Duration) (ok bool, err error) {
	err = s.invoke(func(c *redis.Client) (err error) {
		ok, err = c.PExpire(ctx, key, expireIn).Result()
		return err
	})
	return ok, err
}

func (s *redisStore) Eval(ctx context.Context, script *store.Script, keys []string, args ...interface{}) (result interface{}, err error) {
	sc, _ := s.scripts.LoadOrCompute(script.Source, func() *redis.Script {
		return redis.NewScript(script.Source)
	})

	err = s.invoke(func(c *redis.Client) (err error) {
		// Run uses EVALSHA and falls back to EVAL if the script is not cached by the server
		result, err = sc.Run(ctx, c, keys, args...).Result()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		Logger.Debugf("Script %s failed: %v", script.Name, err)
		return nil, err
	}
	return result, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// invoke runs fn on a pooled connection. redis.Nil is returned unwrapped, all
// other errors are wrapped in a store.Error. On a transport failure the
// connection is replaced and the error is returned without retrying.
func (s *redisStore) invoke(fn func(c *redis.Client) error) error {
	h, err := s.pool.Dequeue()
	if err != nil {
		return store.WrapError(store.RetCConnectionFailure, err)
	}

	err = fn(h.Conn())
	if err == nil || errors.Is(err, redis.Nil) {
		s.pool.Enqueue(h)
		return err
	}

	code := classifyError(err)
	if code != store.RetCConnectionFailure {
		s.pool.Enqueue(h)
		return store.WrapError(code, err)
	}

	Logger.Warningf("Connection %d failed, replacing it: %v", h.ID(), err)
	replacement, rerr := s.pool.ForceReconnect(h)
	if rerr != nil {
		Logger.Warningf("Failed to replace connection %d: %v", h.ID(), rerr)
	} else {
		s.pool.Enqueue(replacement)
	}
	return store.WrapError(code, err)
}

// classifyError maps go-redis errors to store return codes
func classifyError(err error) store.RetCode {
	var redisErr redis.Error
	var netErr net.Error

	switch {
	case errors.As(err, &redisErr):
		return store.RetCScriptFailure
	case errors.Is(err, context.Canceled):
		return store.RetCInternalError
	case errors.As(err, &netErr),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, redis.ErrClosed):
		return store.RetCConnectionFailure
	default:
		return store.RetCInternalError
	}
}
