package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/sneakers/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTemporary = errors.New("temporary")

func fastPolicy(attempts int) retry.Policy {
	return retry.Policy{
		MaxAttempts: attempts,
		Backoff:     retry.ConstantBackoff(time.Millisecond),
	}
}

func TestDo(t *testing.T) {
	t.Run("SucceedsAfterFailures", func(t *testing.T) {
		calls := 0
		err := retry.Do(t.Context(), fastPolicy(5), func() error {
			calls++
			if calls < 3 {
				return errTemporary
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("ExhaustsAttempts", func(t *testing.T) {
		calls := 0
		err := retry.Do(t.Context(), fastPolicy(4), func() error {
			calls++
			return errTemporary
		})
		assert.ErrorIs(t, err, errTemporary)
		assert.Equal(t, 4, calls)
	})

	t.Run("StopsOnPermanentError", func(t *testing.T) {
		permanent := errors.New("permanent")
		p := fastPolicy(5)
		p.ShouldRetry = func(err error) bool { return errors.Is(err, errTemporary) }

		calls := 0
		err := retry.Do(t.Context(), p, func() error {
			calls++
			return permanent
		})
		assert.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("ZeroAttemptsRunsOnce", func(t *testing.T) {
		calls := 0
		_ = retry.Do(t.Context(), retry.Policy{}, func() error {
			calls++
			return errTemporary
		})
		assert.Equal(t, 1, calls)
	})

	t.Run("CancelledBeforeStart", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		called := false
		err := retry.Do(ctx, fastPolicy(3), func() error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})

	t.Run("CancelledDuringPause", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		p := retry.Policy{
			MaxAttempts: 3,
			Backoff:     retry.ConstantBackoff(time.Hour),
		}

		err := retry.Do(ctx, p, func() error {
			cancel()
			return errTemporary
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, errTemporary)
	})
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	v, err := retry.DoWithResult(t.Context(), fastPolicy(3), func() (int, error) {
		calls++
		if calls == 1 {
			return 0, errTemporary
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestExponentialBackoff(t *testing.T) {
	b := retry.ExponentialBackoff(10 * time.Millisecond)

	for attempt, base := range map[int]time.Duration{
		1: 10 * time.Millisecond,
		2: 20 * time.Millisecond,
		3: 40 * time.Millisecond,
	} {
		d := b(attempt)
		assert.GreaterOrEqual(t, d, base)
		assert.Less(t, d, base+base/2)
	}
}
