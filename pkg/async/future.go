package async

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Future is a single-assignment container for a value that is produced
// asynchronously. The zero value is not usable; construct one with Go,
// Resolve or Reject.
//
// A Future completes at most once and its result is immutable afterwards.
// Completion always happens on a goroutine other than the one that created
// the Future, so the result is never observable within the creating call
// frame.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go runs fn in a new goroutine and returns a Future for its result.
// Panics in fn are recovered and surfaced as errors.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
			}
		}()
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Resolve returns a Future that completes with the given value on a later
// goroutine scheduling, never synchronously.
func Resolve[T any](val T) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		f.val = val
		close(f.done)
	}()
	return f
}

// Reject returns a Future that completes with the given error on a later
// goroutine scheduling, never synchronously.
func Reject[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		f.err = err
		close(f.done)
	}()
	return f
}

// Await blocks until the Future completes or ctx is cancelled, whichever
// comes first. On cancellation the underlying operation keeps running; only
// the wait is abandoned.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel that is closed when the Future completes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
