package llm

import (
	"context"
	"time"

	"github.com/nfujita/rivulet/provider"
)

// Retry configuration defaults. Rate-limit rejections are the only
// errors worth retrying here; everything else fails fast.
const (
	defaultMaxAttempts = 3
	initialDelay       = 1 * time.Second
	maxDelay           = 8 * time.Second
	backoffMultiplier  = 2
)

// RetryPolicy bounds the exponential backoff applied to rate-limited
// calls.
type RetryPolicy struct {
	MaxAttempts int
	Initial     time.Duration
	Max         time.Duration
}

// DefaultRetryPolicy returns the policy used by the demo scenarios.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: defaultMaxAttempts,
		Initial:     initialDelay,
		Max:         maxDelay,
	}
}

// Retry executes op, retrying with exponential backoff while the error
// is a rate-limit rejection and attempts remain. Any other error, or
// context cancellation, ends the loop immediately.
func Retry(ctx context.Context, policy RetryPolicy, op func(context.Context) error) error {
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy()
	}

	delay := policy.Initial
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !provider.IsRateLimited(lastErr) {
			return lastErr
		}
		if attempt == policy.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= backoffMultiplier
		if delay > policy.Max {
			delay = policy.Max
		}
	}

	return lastErr
}
