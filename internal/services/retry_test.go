package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iTeLLiiX/CraftConnect/internal/errs"
)

func TestRetryPolicy_NextDelay(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3, InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}

	assert.Equal(t, 100*time.Millisecond, p.NextDelay(1))
	assert.Equal(t, 200*time.Millisecond, p.NextDelay(2))
	assert.Equal(t, 400*time.Millisecond, p.NextDelay(3))
	// Clamped to the ceiling.
	assert.Equal(t, time.Second, p.NextDelay(10))
	// Out-of-range attempts fall back to the first delay.
	assert.Equal(t, 100*time.Millisecond, p.NextDelay(0))
}

func TestRetryPolicy_DoRetriesTransientOnly(t *testing.T) {
	p := RetryPolicy{MaxRetries: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 2}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return errs.Transient("flaky", errors.New("db locked"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "one retry after a transient failure")

	calls = 0
	err = p.Do(context.Background(), func() error {
		calls++
		return errs.Validation("bad input")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "validation errors are not retried")

	calls = 0
	err = p.Do(context.Background(), func() error {
		calls++
		return errs.Transient("still down", errors.New("db locked"))
	})
	require.Error(t, err)
	assert.True(t, errs.IsTransient(err))
	assert.Equal(t, 2, calls, "retries are bounded")
}

func TestRetryPolicy_DoHonorsContext(t *testing.T) {
	p := RetryPolicy{MaxRetries: 5, InitialDelay: 50 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := p.Do(ctx, func() error {
		calls++
		return errs.Transient("down", errors.New("unreachable"))
	})
	require.Error(t, err)
	assert.LessOrEqual(t, calls, 2, "cancellation stops the retry loop")
}
