// Package retry wraps a single unreliable external call with bounded
// retries and exponential backoff. Only errors classified transient by
// generation.IsTransient are retried; everything else propagates
// immediately.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/sproutlab/sprout-api/internal/generation"
)

// ErrExhausted marks a failure after all retry attempts were spent. The
// last observed provider error is wrapped alongside it.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy bounds the retry loop.
type Policy struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// BaseDelay is the delay before the first retry; subsequent delays
	// double, with jitter in [0.5, 1.0] of the computed value.
	BaseDelay time.Duration

	// MaxDelay caps a single delay. Zero means uncapped.
	MaxDelay time.Duration
}

// DefaultPolicy returns the policy used by job executors: three retries
// starting at two seconds.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// Do invokes fn, retrying transient failures up to policy.MaxRetries
// times with exponential backoff and jitter. Permanent errors and
// context cancellation return immediately. After exhaustion the returned
// error wraps both ErrExhausted and the last attempt's error.
func Do[T any](ctx context.Context, logger *slog.Logger, policy Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	maxRetries := policy.MaxRetries
	if maxRetries < 0 {
		logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	baseDelay := policy.BaseDelay
	if baseDelay <= 0 {
		logger.WarnContext(ctx, "invalid retry base delay, using default", "base_delay", "2s")
		baseDelay = 2 * time.Second
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.InfoContext(ctx, "call succeeded after retry", "attempt", attempt+1)
			}
			return result, nil
		}
		lastErr = err

		if !generation.IsTransient(err) {
			logger.WarnContext(ctx, "permanent error, not retrying", "error", err)
			return zero, err
		}

		if attempt >= maxRetries {
			break
		}

		// delay = base * 2^attempt * jitter, jitter in [0.5, 1.0]
		backoff := float64(baseDelay) * math.Pow(2, float64(attempt))
		jitter := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoff * jitter)
		if policy.MaxDelay > 0 && delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}

		logger.InfoContext(ctx, "transient error, retrying after delay",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1,
			"delay", delay,
			"error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}

	logger.WarnContext(ctx, "maximum retry attempts reached", "max_retries", maxRetries)
	return zero, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, maxRetries+1, lastErr)
}
