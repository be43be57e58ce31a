package cache

import (
	"context"
	"github.com/ValentinKolb/dSess/lib/async"
	"time"
)

// AsyncCache offers the asynchronous shape of an ICache
type AsyncCache struct {
	c ICache
}

// NewAsyncCache wraps c
func NewAsyncCache(c ICache) *AsyncCache {
	return &AsyncCache{c: c}
}

func (a *AsyncCache) Add(ctx context.Context, key string, entry interface{}, utcExpiry time.Time) *async.Future[interface{}] {
	return async.Run(func() (interface{}, error) {
		return a.c.Add(ctx, key, entry, utcExpiry)
	})
}

// GetResult is the result of an asynchronous Get
type GetResult struct {
	Value interface{}
	Found bool
}

func (a *AsyncCache) Get(ctx context.Context, key string) *async.Future[GetResult] {
	return async.Run(func() (GetResult, error) {
		value, found, err := a.c.Get(ctx, key)
		return GetResult{Value: value, Found: found}, err
	})
}

func (a *AsyncCache) Set(ctx context.Context, key string, entry interface{}, utcExpiry time.Time) *async.Future[struct{}] {
	return async.Run(func() (struct{}, error) {
		return struct{}{}, a.c.Set(ctx, key, entry, utcExpiry)
	})
}

func (a *AsyncCache) Remove(ctx context.Context, key string) *async.Future[struct{}] {
	return async.Run(func() (struct{}, error) {
		return struct{}{}, a.c.Remove(ctx, key)
	})
}
