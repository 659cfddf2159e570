package services

import (
	"context"
	"math"
	"time"

	"github.com/iTeLLiiX/CraftConnect/internal/errs"
)

// RetryPolicy defines exponential backoff parameters for read retries.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// readRetry is the default policy for read paths: one automatic retry
// after a short pause, then surface the error.
var readRetry = RetryPolicy{MaxRetries: 1, InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}

// NextDelay returns the delay for a given attempt (1-based) with clamping.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = 100 * time.Millisecond
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}

	delay := float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1))
	d := time.Duration(delay)
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = 100 * time.Millisecond
	}
	return d
}

// bound caps a service call at the configured query timeout so no request
// hangs on the backend's defaults.
func bound(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Do runs op, retrying transient failures per the policy. Terminal errors
// (validation, authorization, not-found) are returned immediately.
func (r RetryPolicy) Do(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = op()
		if err == nil || !errs.IsTransient(err) || attempt >= r.MaxRetries {
			return err
		}
		select {
		case <-time.After(r.NextDelay(attempt + 1)):
		case <-ctx.Done():
			return err
		}
	}
}
