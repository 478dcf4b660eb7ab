package worker

import (
	"context"
	"time"

	"review-bot-go/internal/github"
)

// RetryPolicy is the single retry policy applied to diff source
// fetches: bounded exponential backoff, retrying only failures the
// source classified as transient or rate-limited. Permanent failures
// (not-found, auth) surface immediately.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Do runs fn up to MaxRetries+1 times. onRetry, if set, is invoked
// before each backoff sleep.
func (p RetryPolicy) Do(ctx context.Context, fn func() error, onRetry func(attempt int, err error)) error {
	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !github.IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == p.MaxRetries {
			break
		}
		if onRetry != nil {
			onRetry(attempt+1, lastErr)
		}
		backoff := p.BaseDelay << uint(attempt)
		if p.MaxDelay > 0 && backoff > p.MaxDelay {
			backoff = p.MaxDelay
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return lastErr
}
