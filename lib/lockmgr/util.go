package lockmgr

import (
	"fmt"
	"github.com/google/uuid"
	"strconv"
	"strings"
	"time"
)

// LockToken identifies the owner of a lock. It has the form
// "<acquisition time in unix nanoseconds>.<random uuid>" and is compared by value.
type LockToken string

// newLockToken creates a new unique token that embeds now
func newLockToken(now time.Time) LockToken {
	return LockToken(strconv.FormatInt(now.UnixNano(), 10) + "." + uuid.NewString())
}

// AcquiredAt decodes the acquisition time embedded in the token
func (t LockToken) AcquiredAt() (time.Time, error) {
	prefix, _, found := strings.Cut(string(t), ".")
	if !found {
		return time.Time{}, fmt.Errorf("malformed lock token %q", t)
	}
	nanos, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed lock token %q: %w", t, err)
	}
	return time.Unix(0, nanos).UTC(), nil
}

func (t LockToken) String() string {
	return string(t)
}
