package service

import (
	"context"
	"errors"
	"time"

	"wallet-ledger/internal/core/domain"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 10 * time.Millisecond
)

// RetryPolicy controls how many times a conflicting append is retried and
// how long to wait between attempts.
type RetryPolicy struct {
	MaxRetries int
	// Backoff returns the wait after the given failed attempt (0-based).
	Backoff func(attempt int) time.Duration
}

// DefaultRetryPolicy retries three times, waiting 10ms, 20ms and 40ms.
func DefaultRetryPolicy() RetryPolicy {
	return NewRetryPolicy(defaultMaxRetries, defaultBaseDelay)
}

// NewRetryPolicy builds an exponential policy: base * 2^attempt.
func NewRetryPolicy(maxRetries int, base time.Duration) RetryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return RetryPolicy{
		MaxRetries: maxRetries,
		Backoff:    ExponentialBackoff(base),
	}
}

// ExponentialBackoff returns a backoff function yielding base * 2^attempt.
func ExponentialBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base << attempt
	}
}

// isConflict reports whether err is the only retryable failure.
func isConflict(err error) bool {
	var conflict *domain.ConcurrentModificationError
	return errors.As(err, &conflict)
}

// run calls op until it succeeds, fails with a non-conflict error, or the
// retry budget is spent. onRetry is invoked before each wait.
func (p RetryPolicy) run(ctx context.Context, op func(attempt int) error, onRetry func(attempt int, wait time.Duration, err error)) error {
	for attempt := 0; ; attempt++ {
		err := op(attempt)
		if err == nil || !isConflict(err) || attempt >= p.MaxRetries {
			return err
		}

		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		if onRetry != nil {
			onRetry(attempt, wait, err)
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
