// Package retry runs a fallible call a bounded number of times
// with a backoff between attempts.
package retry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

const defaultDelay = 100 * time.Millisecond

// A Backoff returns the pause after the given failed attempt, counting from 1.
type Backoff func(attempt int) time.Duration

type ShouldRetry func(error) bool

type Policy struct {
	MaxAttempts int
	Backoff     Backoff
	// MaxDelay caps a single pause when non-zero.
	MaxDelay    time.Duration
	ShouldRetry ShouldRetry
}

func (p *Policy) normalize() {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}

	if p.Backoff == nil {
		p.Backoff = ExponentialBackoff(defaultDelay)
	}

	if p.ShouldRetry == nil {
		p.ShouldRetry = alwaysRetry
	}
}

func (p Policy) pause(attempt int) time.Duration {
	d := p.Backoff(attempt)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

func alwaysRetry(error) bool {
	return true
}

// ExponentialBackoff doubles delay on every attempt and adds up to
// half of it as jitter.
func ExponentialBackoff(delay time.Duration) Backoff {
	return func(attempt int) time.Duration {
		base := (1 << (attempt - 1)) * delay
		if half := int64(base / 2); half > 0 {
			return base + time.Duration(rand.Int64N(half))
		}
		return base
	}
}

func ConstantBackoff(delay time.Duration) Backoff {
	return func(int) time.Duration {
		return delay
	}
}

func Do(ctx context.Context, p Policy, fn func() error) error {
	_, err := DoWithResult(ctx, p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult calls fn until it succeeds, returns an error that
// should not be retried, or runs out of attempts. The last error of fn
// is returned.
func DoWithResult[T any](
	ctx context.Context, p Policy, fn func() (T, error),
) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	p.normalize()
	timer := time.NewTimer(0)
	<-timer.C
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if attempt >= p.MaxAttempts || !p.ShouldRetry(err) {
			return zero, err
		}

		timer.Reset(p.pause(attempt))
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%w: %w", ctx.Err(), err)
		case <-timer.C:
		}
	}
}
