package utils

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig retries an operation with doubling delays between attempts.
// Export sinks and snapshots use it; the Yelp request is never retried.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *Logger
}

// Do runs fn until it succeeds, MaxAttempts is reached or ctx is done.
// A cancelled ctx stops the wait between attempts and is returned as is.
func (r *RetryConfig) Do(ctx context.Context, op string, fn func() error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt, delay := 1, r.BaseDelay; ; attempt, delay = attempt+1, delay*2 {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		r.Logger.Warn("[retry] %s: attempt %d/%d: %v (next in %v)", op, attempt, attempts, err, delay)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s: %w (last error: %v)", op, ctx.Err(), err)
		case <-timer.C:
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts, err)
}
