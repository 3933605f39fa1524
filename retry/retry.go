package retry

import (
	"context"
	"fmt"
	"time"
)

// BackoffFunc returns the delay to sleep before attempt n (1-based counting
// of the attempt that just failed).
type BackoffFunc func(attempt int, baseDelay time.Duration) time.Duration

// Exponential doubles the base delay on every failed attempt: base, 2*base,
// 4*base, ...
func Exponential(attempt int, baseDelay time.Duration) time.Duration {
	return baseDelay << (attempt - 1)
}

// Fixed sleeps the base delay between every attempt.
func Fixed(_ int, baseDelay time.Duration) time.Duration {
	return baseDelay
}

type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Backoff     BackoffFunc
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Backoff:     Exponential,
	}
}

// Permanent wraps an error that should not be retried. Do returns the
// underlying error immediately when an operation yields one.
type Permanent struct {
	Err error
}

func (p *Permanent) Error() string { return p.Err.Error() }
func (p *Permanent) Unwrap() error { return p.Err }

// Do runs op until it succeeds, the policy is exhausted, or ctx is done.
// The last error is returned after the final attempt.
func Do(ctx context.Context, policy Policy, op func(ctx context.Context) error) error {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.Backoff == nil {
		policy.Backoff = Exponential
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		if perm, ok := err.(*Permanent); ok {
			return perm.Err
		}
		lastErr = err

		if attempt == policy.MaxAttempts {
			break
		}

		delay := policy.Backoff(attempt, policy.BaseDelay)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted after attempt %d: %w", attempt, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", policy.MaxAttempts, lastErr)
}
