package lockmgr

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dSess/lib/collection"
	"github.com/ValentinKolb/dSess/lib/store"
	"github.com/ValentinKolb/dSess/lib/util"
	"github.com/ValentinKolb/dSess/rpc/serializer"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"strconv"
	"time"
)

var Logger = logger.GetLogger("lockmgr")

var (
	acquiredCounter        = metrics.NewCounter("dsess_lock_acquired_total")
	conflictCounter        = metrics.NewCounter("dsess_lock_conflicts_total")
	releasedCounter        = metrics.NewCounter("dsess_lock_released_total")
	releaseMismatchCounter = metrics.NewCounter("dsess_lock_release_mismatch_total")
)

type lockMgrImpl struct {
	store      store.IStore
	keys       store.KeyNamespacer
	serializer serializer.IValueSerializer
	clock      util.Clock
}

// Option configures the lock manager
type Option func(*lockMgrImpl)

// WithClock sets the clock used by GetLockAge
func WithClock(clock util.Clock) Option {
	return func(lm *lockMgrImpl) {
		lm.clock = clock
	}
}

// NewLockManager creates a lock manager for the records of one application.
// The lock manager holds no state besides its arguments, any number of lock
// managers (in any number of processes) can work on the same store.
func NewLockManager(st store.IStore, keys store.KeyNamespacer, s serializer.IValueSerializer, opts ...Option) ILockManager {
	lm := &lockMgrImpl{
		store:      st,
		keys:       keys,
		serializer: s,
		clock:      util.RealClock{},
	}
	for _, opt := range opts {
		opt(lm)
	}
	return lm
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (lm *lockMgrImpl) TryTakeWriteLockAndGetData(ctx context.Context, id string, now time.Time, leaseSeconds int) (LockResult, error) {
	if err := validate(id, leaseSeconds); err != nil {
		return LockResult{}, err
	}

	token := newLockToken(now)
	reply, err := lm.store.Eval(ctx, takeLockScript, lm.keys.RecordKeys(id).List(), string(token), leaseSeconds)
	if err != nil {
		return LockResult{}, err
	}

	flag, holder, data, lease, err := lm.parseLockReply(reply)
	if err != nil {
		return LockResult{}, err
	}

	if flag {
		acquiredCounter.Inc()
		Logger.Debugf("Acquired lock of %s", id)
	} else {
		conflictCounter.Inc()
		Logger.Debugf("Lock of %s is held by %s", id, holder)
	}

	return LockResult{
		Acquired:     flag,
		Token:        holder,
		Data:         data,
		LeaseSeconds: lease,
	}, nil
}

func (lm *lockMgrImpl) TryCheckWriteLockAndGetData(ctx context.Context, id string) (LockState, error) {
	if id == "" {
		return LockState{}, store.NewError(store.RetCInvalidOperation, "empty id")
	}

	reply, err := lm.store.Eval(ctx, checkLockScript, lm.keys.RecordKeys(id).List())
	if err != nil {
		return LockState{}, err
	}

	locked, holder, data, lease, err := lm.parseLockReply(reply)
	if err != nil {
		return LockState{}, err
	}

	return LockState{
		Locked:       locked,
		Token:        holder,
		Data:         data,
		LeaseSeconds: lease,
	}, nil
}

func (lm *lockMgrImpl) TryReleaseLockIfLockIdMatch(ctx context.Context, id string, token LockToken, leaseSeconds int) (bool, error) {
	if err := validate(id, leaseSeconds); err != nil {
		return false, err
	}

	reply, err := lm.store.Eval(ctx, releaseLockScript, lm.keys.RecordKeys(id).List(), string(token), leaseSeconds)
	if err != nil {
		return false, err
	}
	return lm.released(id, reply)
}

func (lm *lockMgrImpl) TryRemoveAndReleaseLock(ctx context.Context, id string, token LockToken) (bool, error) {
	if id == "" {
		return false, store.NewError(store.RetCInvalidOperation, "empty id")
	}

	reply, err := lm.store.Eval(ctx, removeScript, lm.keys.RecordKeys(id).List(), string(token))
	if err != nil {
		return false, err
	}
	return lm.released(id, reply)
}

func (lm *lockMgrImpl) TryUpdateAndReleaseLock(ctx context.Context, id string, token LockToken, data *collection.ChangeTrackingCollection, leaseSeconds int) (bool, error) {
	if err := validate(id, leaseSeconds); err != nil {
		return false, err
	}

	args := []interface{}{string(token), leaseSeconds}
	if data == nil {
		args = append(args, 0)
	} else {
		deleted := data.DeletedKeys()
		args = append(args, len(deleted))
		for _, key := range deleted {
			args = append(args, key)
		}
		pairs, err := modifiedPairs(data)
		if err != nil {
			return false, err
		}
		args = append(args, pairs...)
	}

	reply, err := lm.store.Eval(ctx, updateScript, lm.keys.RecordKeys(id).List(), args...)
	if err != nil {
		return false, err
	}

	ok, err := lm.released(id, reply)
	if ok && data != nil {
		data.SetDirty(false)
	}
	return ok, err
}

func (lm *lockMgrImpl) Set(ctx context.Context, id string, data *collection.ChangeTrackingCollection, leaseSeconds int) error {
	if err := validate(id, leaseSeconds); err != nil {
		return err
	}

	args := []interface{}{leaseSeconds}
	if data != nil {
		entries, err := data.Entries()
		if err != nil {
			return err
		}
		for _, key := range data.Keys() {
			args = append(args, key, entries[key])
		}
	}

	if _, err := lm.store.Eval(ctx, setScript, lm.keys.RecordKeys(id).List(), args...); err != nil {
		return err
	}
	if data != nil {
		data.SetDirty(false)
	}
	return nil
}

func (lm *lockMgrImpl) UpdateExpiryTime(ctx context.Context, id string, leaseSeconds int) error {
	if err := validate(id, leaseSeconds); err != nil {
		return err
	}

	_, err := lm.store.Eval(ctx, expireScript, lm.keys.RecordKeys(id).List(), leaseSeconds)
	return err
}

func (lm *lockMgrImpl) GetLockAge(token LockToken) (time.Duration, error) {
	acquiredAt, err := token.AcquiredAt()
	if err != nil {
		return 0, store.WrapError(store.RetCInvalidOperation, err)
	}
	return lm.clock.Now().Sub(acquiredAt), nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func validate(id string, leaseSeconds int) error {
	if id == "" {
		return store.NewError(store.RetCInvalidOperation, "empty id")
	}
	if leaseSeconds <= 0 {
		return store.NewError(store.RetCInvalidOperation, fmt.Sprintf("lease must be positive, got %d seconds", leaseSeconds))
	}
	return nil
}

// released evaluates the 0/1 reply of the release scripts
func (lm *lockMgrImpl) released(id string, reply interface{}) (bool, error) {
	n, ok := reply.(int64)
	if !ok {
		return false, unexpectedReply(reply)
	}
	if n == 1 {
		releasedCounter.Inc()
		Logger.Debugf("Released lock of %s", id)
		return true, nil
	}
	releaseMismatchCounter.Inc()
	Logger.Debugf("Lock of %s is not held by the given token, nothing changed", id)
	return false, nil
}

// parseLockReply decodes {flag, token, {field, value, ...}, lease}
func (lm *lockMgrImpl) parseLockReply(reply interface{}) (bool, LockToken, *collection.ChangeTrackingCollection, int, error) {
	values, ok := reply.([]interface{})
	if !ok || len(values) != 4 {
		return false, "", nil, 0, unexpectedReply(reply)
	}

	flag, ok1 := values[0].(int64)
	token, ok2 := values[1].(string)
	fields, ok3 := values[2].([]interface{})
	lease, ok4 := values[3].(int64)
	if !ok1 || !ok2 || !ok3 || !ok4 || len(fields)%2 != 0 {
		return false, "", nil, 0, unexpectedReply(reply)
	}

	data := collection.New(lm.serializer)
	for i := 0; i < len(fields); i += 2 {
		name, ok1 := fields[i].(string)
		value, ok2 := fields[i+1].(string)
		if !ok1 || !ok2 {
			return false, "", nil, 0, unexpectedReply(reply)
		}
		data.AddSerializedData(name, []byte(value))
	}

	return flag == 1, LockToken(token), data, int(lease), nil
}

// modifiedPairs returns the field/value pairs of the modified entries in key order
func modifiedPairs(data *collection.ChangeTrackingCollection) ([]interface{}, error) {
	entries, err := data.ModifiedEntries()
	if err != nil {
		return nil, err
	}
	pairs := make([]interface{}, 0, 2*len(entries))
	for _, key := range data.ModifiedKeys() {
		value, ok := entries[key]
		if !ok {
			continue
		}
		pairs = append(pairs, key, value)
	}
	return pairs, nil
}

func unexpectedReply(reply interface{}) error {
	return store.NewError(store.RetCInternalError, "unexpected script reply: "+strconv.Quote(fmt.Sprintf("%v", reply)))
}
