// Package backoff provides delay strategies for retry.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// Strategy returns the amount of time to wait before the next attempt.
// Attempts start at 1.
type Strategy func(attempts uint) time.Duration

// Constant always waits for interval.
func Constant(interval time.Duration) Strategy {
	return func(uint) time.Duration {
		return interval
	}
}

// Linear waits baseDelay * attempts.
//
// Ex. Linear(2*time.Second) = 2s, 4s, 6s, 8s, ...
func Linear(baseDelay time.Duration) Strategy {
	return func(attempts uint) time.Duration {
		if delay := baseDelay * time.Duration(attempts); delay >= 0 {
			return delay
		}
		return math.MaxInt64
	}
}

// Exponential waits baseDelay * base^(attempts - 1).
//
// Ex. Exponential(2*time.Second, 3) = 2s, 6s, 18s, 54s, ...
func Exponential(baseDelay time.Duration, base float64) Strategy {
	return func(attempts uint) time.Duration {
		f := float64(baseDelay) * math.Pow(base, float64(attempts-1))
		if f >= math.MaxInt64 || f < 0 {
			return math.MaxInt64
		}
		return time.Duration(f)
	}
}

// BinaryExponential is Exponential with a base of 2.
func BinaryExponential(baseDelay time.Duration) Strategy {
	return Exponential(baseDelay, 2)
}

// Capped limits the delay produced by strategy to max.
func Capped(strategy Strategy, max time.Duration) Strategy {
	return func(attempts uint) time.Duration {
		if delay := strategy(attempts); delay < max {
			return delay
		}
		return max
	}
}

// WithJitter spreads the delay produced by strategy by +/- jitter percent.
// For example, a 100ms delay with a jitter of 0.1 lands between 90ms and 110ms.
func WithJitter(strategy Strategy, jitter float64) Strategy {
	return func(attempts uint) time.Duration {
		delay := strategy(attempts)
		return time.Duration(float64(delay) * (1 + (rand.Float64()*jitter*2 - jitter)))
	}
}
