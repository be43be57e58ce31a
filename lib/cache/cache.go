package cache

import (
	"context"
	"github.com/ValentinKolb/dSess/lib/store"
	"github.com/ValentinKolb/dSess/lib/util"
	"github.com/ValentinKolb/dSess/rpc/serializer"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"time"
)

var Logger = logger.GetLogger("cache")

var (
	hitCounter   = metrics.NewCounter("dsess_cache_hits_total")
	missCounter  = metrics.NewCounter("dsess_cache_misses_total")
	addCounter   = metrics.NewCounter("dsess_cache_adds_total")
	addLostRaces = metrics.NewCounter("dsess_cache_add_existing_total")
)

// ICache is a shared cache of serialized values (e.g. rendered responses).
// Keys are namespaced with the application name.
type ICache interface {
	// Add stores entry if key is not cached yet and returns the cached entry,
	// which is entry itself or the value that was already cached.
	Add(ctx context.Context, key string, entry interface{}, utcExpiry time.Time) (interface{}, error)
	// Get returns the cached entry. The boolean reports whether the key was found.
	Get(ctx context.Context, key string) (interface{}, bool, error)
	// Set stores entry unconditionally. A zero utcExpiry means no expiration.
	Set(ctx context.Context, key string, entry interface{}, utcExpiry time.Time) error
	// Remove deletes the entry
	Remove(ctx context.Context, key string) error
}

type cacheImpl struct {
	store      store.IStore
	keys       store.KeyNamespacer
	serializer serializer.IValueSerializer
	clock      util.Clock
}

// Option configures the cache
type Option func(*cacheImpl)

// WithClock sets the clock used to turn absolute expiry times into durations
func WithClock(clock util.Clock) Option {
	return func(c *cacheImpl) {
		c.clock = clock
	}
}

// NewCache creates a cache on top of st
func NewCache(st store.IStore, keys store.KeyNamespacer, s serializer.IValueSerializer, opts ...Option) ICache {
	c := &cacheImpl{
		store:      st,
		keys:       keys,
		serializer: s,
		clock:      util.RealClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --------------------------------------------------------------------------
// Interface Methods (docu see ICache)
// --------------------------------------------------------------------------

func (c *cacheImpl) Add(ctx context.Context, key string, entry interface{}, utcExpiry time.Time) (interface{}, error) {
	data, err := c.serializer.Serialize(entry)
	if err != nil {
		return nil, err
	}

	winner, err := AtomicCreate(ctx, c.store, c.keys.Key(key), data, utcExpiry.Sub(c.clock.Now()))
	if err != nil {
		return nil, err
	}

	addCounter.Inc()
	if string(winner) != string(data) {
		addLostRaces.Inc()
		Logger.Debugf("Key %s was already cached", key)
	}
	return c.serializer.Deserialize(winner)
}

func (c *cacheImpl) Get(ctx context.Context, key string) (interface{}, bool, error) {
	data, ok, err := c.store.Get(ctx, c.keys.Key(key))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		missCounter.Inc()
		return nil, false, nil
	}
	hitCounter.Inc()

	value, err := c.serializer.Deserialize(data)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *cacheImpl) Set(ctx context.Context, key string, entry interface{}, utcExpiry time.Time) error {
	var ttl time.Duration
	if !utcExpiry.IsZero() {
		ttl = utcExpiry.Sub(c.clock.Now())
		if ttl < time.Millisecond {
			// already expired
			return c.store.Delete(ctx, c.keys.Key(key))
		}
	}

	data, err := c.serializer.Serialize(entry)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.keys.Key(key), data, ttl)
}

func (c *cacheImpl) Remove(ctx context.Context, key string) error {
	return c.store.Delete(ctx, c.keys.Key(key))
}
