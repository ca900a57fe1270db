// Package future provides a single-assignment result cell that many goroutines
// can wait on.
//
// A Future is completed exactly once with a value and an error. Every waiter
// blocked in Result or Wait is released together when that happens, and every
// callback registered with OnComplete is invoked once, outside the future's lock.
//
//	f := future.NewFuture[string]()
//	go func() { f.Complete("done", nil) }()
//	v, err := f.Result()
package future

import (
	"context"
	"sync"
)

type Result[T any] struct {
	Data T
	Err  error
}

type Future[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	result    Result[T]
	completed bool
	callbacks []func(Result[T])
}

func NewFuture[T any]() *Future[T] {
	return &Future[T]{
		done: make(chan struct{}),
	}
}

// Complete sets the result. Only the first call has an effect; it returns false
// when the future was already completed.
func (f *Future[T]) Complete(data T, err error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.completed = true
	f.result = Result[T]{Data: data, Err: err}
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(f.result)
	}
	return true
}

// Done is closed once the future is completed.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

func (f *Future[T]) IsComplete() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// Result blocks until the future is completed.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.result.Data, f.result.Err
}

// Wait blocks until the future is completed or ctx is done. The context error is
// returned when ctx wins; the future itself is left untouched.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result.Data, f.result.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Peek returns the result without blocking. ok is false while the future is pending.
func (f *Future[T]) Peek() (r Result[T], ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.completed
}

// OnComplete registers fn to run when the future completes. If it already has,
// fn runs immediately on the calling goroutine.
func (f *Future[T]) OnComplete(fn func(Result[T])) {
	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	r := f.result
	f.mu.Unlock()
	fn(r)
}
