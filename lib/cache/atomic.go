package cache

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dSess/lib/store"
	"time"
)

// KEYS[1] = key, ARGV[1] = payload, ARGV[2] = expiry in milliseconds
var addIfAbsentScript = store.NewScript("add-if-absent", `
local current = redis.call('GET', KEYS[1])
if not current then
	redis.call('PSETEX', KEYS[1], ARGV[2], ARGV[1])
	return ARGV[1]
end
return current
`)

// AtomicCreate stores payload under key if the key does not exist and returns
// payload, otherwise it leaves the store untouched and returns the existing
// value. All concurrent creators of a key observe the same winning value.
// The ttl must be at least one millisecond. The key is used as is.
func AtomicCreate(ctx context.Context, st store.IStore, key string, payload []byte, ttl time.Duration) ([]byte, error) {
	ms := ttl.Milliseconds()
	if ms < 1 {
		return nil, store.NewError(store.RetCInvalidOperation, fmt.Sprintf("expiry must be at least 1ms, got %v", ttl))
	}

	reply, err := st.Eval(ctx, addIfAbsentScript, []string{key}, payload, ms)
	if err != nil {
		return nil, err
	}

	switch v := reply.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("unexpected script reply %T", reply))
	}
}
