package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Script is a server side script that the store executes atomically.
// Source is the Lua source code, Name is only used for logging and errors.
type Script struct {
	Name   string
	Source string
}

// NewScript creates a new named script
func NewScript(name, source string) *Script {
	return &Script{Name: name, Source: source}
}

// IStore is the generic interface for interacting with the remote key–value store.
// Every method is a blocking round trip. Implementations must execute Eval
// without interleaving operations of other clients on the keys it touches.
type IStore interface {
	// Get returns the value for a key. The boolean return value indicates whether a value for the key was found.
	Get(ctx context.Context, key string) (value []byte, loaded bool, err error)
	// Set inserts or updates a key–value pair. A zero expireIn means no expiration.
	Set(ctx context.Context, key string, value []byte, expireIn time.Duration) (err error)
	// Delete deletes a key–value pair. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) (err error)
	// Expire sets the time to live of a key. The boolean reports whether the key existed.
	Expire(ctx context.Context, key string, expireIn time.Duration) (ok bool, err error)
	// Eval executes the script atomically against the given keys and arguments.
	// Arguments may be strings, byte slices or integers. A nil script result is returned as nil.
	Eval(ctx context.Context, script *Script, keys []string, args ...interface{}) (result interface{}, err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode),
// an error message and optionally the underlying cause.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
	Err  error   // The cause (may be nil)
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("store error (%s): %s", e.Code, e.Msg)
}

// Unwrap returns the cause of the error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new store error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new store error with the given code that wraps err.
// The message of err is kept verbatim.
func WrapError(code RetCode, err error) *Error {
	return &Error{
		Code: code,
		Msg:  err.Error(),
		Err:  err,
	}
}

// IsConnectionFailure reports whether err is a transport level failure
func IsConnectionFailure(err error) bool {
	return hasCode(err, RetCConnectionFailure)
}

// IsScriptFailure reports whether err is an error returned by the store while executing a command or script
func IsScriptFailure(err error) bool {
	return hasCode(err, RetCScriptFailure)
}

// IsInvalidOperation reports whether err was raised because of invalid arguments
func IsInvalidOperation(err error) bool {
	return hasCode(err, RetCInvalidOperation)
}

func hasCode(err error, code RetCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess           RetCode = iota // 0: Command executed successfully.
	RetCInternalError                    // 1: Command failed due to an internal error.
	RetCInvalidOperation                 // 2: Invalid operation (e.g. bad arguments).
	RetCConnectionFailure                // 3: Transport failure, the connection was replaced.
	RetCScriptFailure                    // 4: The store rejected the command or script.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCConnectionFailure:
		return "ConnectionFailure"
	case RetCScriptFailure:
		return "ScriptFailure"
	default:
		return "Unknown"
	}
}
