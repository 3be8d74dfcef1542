package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// StatusError marks an upstream HTTP-status failure. These are the only
// failures the default policies retry; network-level errors propagate
// immediately.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

// IsStatus reports whether err is (or wraps) a StatusError.
func IsStatus(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// Policy is an explicit retry-policy value: how many attempts, how the
// backoff grows, and which errors are worth another attempt.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Retryable   func(error) bool
}

// Upstream is the policy both the token manager and the search executor use:
// 3 attempts, exponential backoff from 2s capped at 10s, retrying only on
// upstream status failures.
var Upstream = Policy{
	MaxAttempts: 3,
	BaseDelay:   2 * time.Second,
	MaxDelay:    10 * time.Second,
	Retryable:   IsStatus,
}

// Delay returns the backoff before retry attempt i (0-based). Doubles each
// attempt, clamped at MaxDelay.
func (p Policy) Delay(i int) time.Duration {
	d := p.BaseDelay << i
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Do runs fn up to p.MaxAttempts times, sleeping p.Delay(i) between attempts.
// Non-retryable errors (and context cancellation) end the loop immediately;
// the last error is returned once attempts are exhausted.
func Do(ctx context.Context, p Policy, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var last error
	for i := 0; i < attempts; i++ {
		last = fn()
		if last == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(last) {
			return last
		}
		if i == attempts-1 {
			break
		}
		if !sleepCtx(ctx, p.Delay(i)) {
			return ctx.Err()
		}
	}
	return last
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
