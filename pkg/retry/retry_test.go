package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/dealspot/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTemporary = errors.New("temporary")

func TestDo(t *testing.T) {
	cfg := retry.Config{
		MaxAttempts: 3,
		Backoff:     retry.ConstantBackoff(time.Millisecond),
	}

	t.Run("SucceedsAfterRetries", func(t *testing.T) {
		var calls int
		err := retry.Do(t.Context(), cfg, func() error {
			calls++
			if calls < 3 {
				return errTemporary
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("ReturnsLastError", func(t *testing.T) {
		var calls int
		err := retry.Do(t.Context(), cfg, func() error {
			calls++
			return errTemporary
		})
		assert.ErrorIs(t, err, errTemporary)
		assert.Equal(t, 3, calls)
	})

	t.Run("NotRetryable", func(t *testing.T) {
		errFatal := errors.New("fatal")
		c := cfg
		c.ShouldRetry = func(err error) bool {
			return !errors.Is(err, errFatal)
		}

		var calls int
		err := retry.Do(t.Context(), c, func() error {
			calls++
			return errFatal
		})
		assert.ErrorIs(t, err, errFatal)
		assert.Equal(t, 1, calls)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err := retry.Do(ctx, cfg, func() error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDoWithResult(t *testing.T) {
	v, err := retry.DoWithResult(
		t.Context(), retry.Config{}, func() (int, error) {
			return 42, nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestExponentialBackoff(t *testing.T) {
	b := retry.ExponentialBackoff(10*time.Millisecond, 40*time.Millisecond)

	tests := []struct {
		attempt  int
		min, max time.Duration
	}{
		{1, 10 * time.Millisecond, 15 * time.Millisecond},
		{2, 20 * time.Millisecond, 30 * time.Millisecond},
		{3, 40 * time.Millisecond, 60 * time.Millisecond},
		{10, 40 * time.Millisecond, 60 * time.Millisecond},
	}
	for _, tt := range tests {
		d := b(tt.attempt)
		assert.GreaterOrEqual(t, d, tt.min, "attempt %d", tt.attempt)
		assert.Less(t, d, tt.max, "attempt %d", tt.attempt)
	}
}
