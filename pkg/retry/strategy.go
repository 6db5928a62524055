package retry

import (
	"context"
	"errors"
	"time"

	"github.com/code-payments/syrup-cpi-demo/pkg/retry/backoff"
)

// Strategy determines whether or not an action should be retried. Strategies
// are allowed to delay.
type Strategy func(ctx context.Context, attempts uint, err error) bool

// Limit returns a strategy that limits the total number of attempts.
// maxAttempts should be >= 1, since the action is evaluated first.
func Limit(maxAttempts uint) Strategy {
	return func(_ context.Context, attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors returns a strategy that specifies which errors can be retried.
func RetriableErrors(retriableErrors ...error) Strategy {
	return func(_ context.Context, _ uint, err error) bool {
		for _, e := range retriableErrors {
			if errors.Is(err, e) {
				return true
			}
		}
		return false
	}
}

// NonRetriableErrors returns a strategy that specifies which errors should not be retried.
func NonRetriableErrors(nonRetriableErrors ...error) Strategy {
	return func(_ context.Context, _ uint, err error) bool {
		for _, e := range nonRetriableErrors {
			if errors.Is(err, e) {
				return false
			}
		}
		return true
	}
}

// Backoff returns a strategy that delays the next attempt by the duration the
// backoff strategy provides. The wait is abandoned, and no further attempts are
// made, once ctx is done.
func Backoff(strategy backoff.Strategy) Strategy {
	return func(ctx context.Context, attempts uint, _ error) bool {
		return sleeperImpl.Sleep(ctx, strategy(attempts)) == nil
	}
}

type sleeper interface {
	Sleep(context.Context, time.Duration) error
}

type realSleeper struct{}

func (r *realSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var sleeperImpl sleeper = &realSleeper{}
