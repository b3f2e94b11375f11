package saveload

import (
	"context"
	"sync"
)

// Future is a one-shot completion handle resolved by a later cycle start.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(v T) {
	f.once.Do(func() {
		f.val = v
		close(f.done)
	})
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result returns the value and whether it is available yet.
func (f *Future[T]) Result() (T, bool) {
	select {
	case <-f.done:
		return f.val, true
	default:
		var zero T
		return zero, false
	}
}

// Wait blocks until the result is available or ctx ends. Cancelling ctx
// abandons the wait only; the session keeps running.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
