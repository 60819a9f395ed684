package retry

import (
	"context"
	"fmt"
	"time"
)

// Config controls WithRetry. When Backoff is set the delay grows linearly
// with the attempt number. ShouldRetry, when non-nil, decides whether an
// error is worth another attempt; permanent errors are returned immediately.
type Config struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool
	ShouldRetry func(error) bool
}

// WithRetry runs fn up to config.MaxAttempts times, waiting between
// attempts. It stops early when ctx is cancelled or when ShouldRetry
// rejects the error.
func WithRetry(ctx context.Context, config Config, fn func() error) error {
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}

		if config.ShouldRetry != nil && !config.ShouldRetry(err) {
			return err
		}
		if attempt == config.MaxAttempts {
			return fmt.Errorf("failed after %d attempts: %w", config.MaxAttempts, err)
		}

		delay := config.Delay
		if config.Backoff {
			delay = time.Duration(attempt) * config.Delay
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil
}
