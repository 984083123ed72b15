package scan

import (
	"context"
	"time"
)

// maxRetryDelay caps the exponential backoff. Explorer rate limits
// recover within seconds, waiting longer just stalls the scan.
const maxRetryDelay = 5 * time.Second

func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = nextDelay(delay)
	}
}

func nextDelay(delay time.Duration) time.Duration {
	delay *= 2
	if delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}
