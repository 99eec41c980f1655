package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sproutlab/sprout-api/internal/generation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	result, err := Do(context.Background(), testLogger(), fastPolicy(3), func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

func TestDo_RecoversFromTransientFailures(t *testing.T) {
	t.Parallel()

	// Fails transiently twice, then succeeds; with a retry bound of 3
	// the call must complete.
	calls := 0
	result, err := Do(context.Background(), testLogger(), fastPolicy(3), func(ctx context.Context) (int, error) {
		calls++
		if calls <= 2 {
			return 0, fmt.Errorf("%w: rate limited", generation.ErrTransientFailure)
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	// Four transient failures against a bound of 3: the error must
	// reference exhaustion and wrap the last failure, not the first.
	calls := 0
	_, err := Do(context.Background(), testLogger(), fastPolicy(3), func(ctx context.Context) (string, error) {
		calls++
		return "", fmt.Errorf("%w: failure %d", generation.ErrTransientFailure, calls)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
	assert.Contains(t, err.Error(), "failure 4")
	assert.Equal(t, 4, calls)
}

func TestDo_PermanentErrorNotRetried(t *testing.T) {
	t.Parallel()

	permanent := fmt.Errorf("%w: unreadable image", generation.ErrInvalidInput)

	calls := 0
	_, err := Do(context.Background(), testLogger(), fastPolicy(3), func(ctx context.Context) (string, error) {
		calls++
		return "", permanent
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 1, calls)
}

func TestDo_ContentBlockedNotRetried(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := Do(context.Background(), testLogger(), fastPolicy(3), func(ctx context.Context) (string, error) {
		calls++
		return "", generation.ErrContentBlocked
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrContentBlocked)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelledDuringDelay(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	policy := Policy{MaxRetries: 3, BaseDelay: time.Hour}
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, testLogger(), policy, func(ctx context.Context) (string, error) {
			return "", fmt.Errorf("%w: timeout", generation.ErrTransientFailure)
		})
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, generation.ErrTransientFailure)
		assert.Contains(t, err.Error(), context.Canceled.Error())
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not observe context cancellation")
	}
}

func TestDo_InvalidPolicyFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	// Negative bounds must not panic or loop forever.
	calls := 0
	result, err := Do(context.Background(), testLogger(), Policy{MaxRetries: -1, BaseDelay: -time.Second}, func(ctx context.Context) (bool, error) {
		calls++
		return true, nil
	})

	require.NoError(t, err)
	assert.True(t, result)
	assert.Equal(t, 1, calls)
}

func TestDefaultPolicy(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	assert.Equal(t, 3, p.MaxRetries)
	assert.Equal(t, 2*time.Second, p.BaseDelay)
}

func TestErrExhaustedUnwrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("%w after 4 attempts: %w", ErrExhausted, errors.New("boom"))
	assert.ErrorIs(t, wrapped, ErrExhausted)
}
