package work

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/kubev2v/taskrunner/pkg/scheduler"
)

// WithTimeout bounds w by d. A non-positive d returns w unchanged.
func WithTimeout(w scheduler.Work, d time.Duration) scheduler.Work {
	if d <= 0 {
		return w
	}
	return func(ctx context.Context) (any, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return w(ctx)
	}
}

type retryOptions struct {
	initialInterval time.Duration
	maxInterval     time.Duration
	onRetry         func(attempt int, err error, next time.Duration)
}

type RetryOption func(*retryOptions)

func WithInitialInterval(d time.Duration) RetryOption {
	return func(o *retryOptions) {
		o.initialInterval = d
	}
}

func WithMaxInterval(d time.Duration) RetryOption {
	return func(o *retryOptions) {
		o.maxInterval = d
	}
}

// OnRetry registers fn, called before every new attempt with the number of the
// failed attempt and the delay before the next one.
func OnRetry(fn func(attempt int, err error, next time.Duration)) RetryOption {
	return func(o *retryOptions) {
		o.onRetry = fn
	}
}

// WithRetry runs w up to retries+1 times with exponential backoff until it
// succeeds. Cancellation of the work context is never retried. The value of the
// last attempt is returned.
func WithRetry(w scheduler.Work, retries int, opts ...RetryOption) scheduler.Work {
	if retries <= 0 {
		return w
	}

	o := retryOptions{
		initialInterval: 500 * time.Millisecond,
		maxInterval:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return func(ctx context.Context) (any, error) {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = o.initialInterval
		b.MaxInterval = o.maxInterval

		var (
			attempt int
			last    any
		)
		operation := func() (any, error) {
			attempt++
			v, err := w(ctx)
			last = v
			if err != nil && ctx.Err() != nil {
				return v, backoff.Permanent(err)
			}
			return v, err
		}

		retryOpts := []backoff.RetryOption{
			backoff.WithBackOff(b),
			backoff.WithMaxTries(uint(retries + 1)),
		}
		if o.onRetry != nil {
			retryOpts = append(retryOpts, backoff.WithNotify(func(err error, next time.Duration) {
				o.onRetry(attempt, err, next)
			}))
		}

		v, err := backoff.Retry(ctx, operation, retryOpts...)
		if err != nil {
			return last, err
		}
		return v, nil
	}
}
