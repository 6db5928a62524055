package retry

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/code-payments/syrup-cpi-demo/pkg/retry/backoff"
)

func TestLimit(t *testing.T) {
	ctx := context.Background()
	strategy := Limit(2)

	// One iteration has been executed. Try again.
	assert.True(t, strategy(ctx, 1, errors.New("test")))
	// Two iterations have been executed. Do not try again.
	assert.False(t, strategy(ctx, 2, errors.New("test")))

	counter, err := Retry(ctx, func(context.Context) error {
		return errors.New("test")
	}, Limit(2))

	assert.EqualError(t, err, "test")
	assert.Equal(t, uint(2), counter)
}

func TestRetriableErrors(t *testing.T) {
	ctx := context.Background()
	retriableErrors := []error{
		errors.New("retriableA"),
		errors.New("retriableB"),
	}

	strategy := RetriableErrors(retriableErrors...)
	for _, err := range retriableErrors {
		assert.True(t, strategy(ctx, 1, err))
		assert.True(t, strategy(ctx, 1, errors.Wrap(err, "wrapper")))
	}
	assert.False(t, strategy(ctx, 2, errors.New("unexpected")))
}

func TestNonRetriableErrors(t *testing.T) {
	ctx := context.Background()
	nonRetriableErrors := []error{
		errors.New("nonRetriableA"),
		errors.New("nonRetriableB"),
	}

	strategy := NonRetriableErrors(nonRetriableErrors...)
	for _, err := range nonRetriableErrors {
		assert.False(t, strategy(ctx, 1, err))
		assert.False(t, strategy(ctx, 1, errors.Wrap(err, "wrapper")))
	}
	assert.True(t, strategy(ctx, 1, errors.New("unexpected")))
}

func TestBackoff(t *testing.T) {
	ts := &testSleeper{}
	sleeperImpl = ts
	defer func() { sleeperImpl = &realSleeper{} }()

	strategy := Backoff(backoff.Capped(backoff.Linear(100*time.Millisecond), 300*time.Millisecond))
	for i := uint(1); i <= 5; i++ {
		assert.True(t, strategy(context.Background(), i, errors.New("test-error")))
	}

	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond,
		300 * time.Millisecond,
		300 * time.Millisecond,
	}, ts.sleepTimes)
}

func TestBackoff_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	strategy := Backoff(backoff.Constant(time.Hour))
	assert.False(t, strategy(ctx, 1, errors.New("test-error")))
}

type testSleeper struct {
	sleepTimes []time.Duration
}

func (t *testSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t.sleepTimes = append(t.sleepTimes, d)
	return ctx.Err()
}
