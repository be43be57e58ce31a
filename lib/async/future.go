// Package async provides the asynchronous call shape of the library.
//
// Every asynchronous method is the synchronous method executed on its own
// goroutine: it suspends at the same round trip and resolves with exactly the
// same result and error. There is no ordering guarantee between futures.
package async

import (
	"context"
)

// Future holds the eventual result of an asynchronous call
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Run starts fn on a new goroutine and returns a future for its result
func Run[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn()
	}()
	return f
}

// Done returns a channel that is closed once the result is available
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the result is available and returns it
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.value, f.err
}

// WaitContext waits for the result or until ctx is done.
// A cancelled wait does not cancel the underlying operation.
func (f *Future[T]) WaitContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
