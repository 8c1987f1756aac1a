package errors

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig configures bounded retry with exponential backoff.
// Every external capability (embedding, inference, search, page fetch)
// is called through Retry so the pipeline either gets a result or a
// deterministic failure, never an unbounded hang.
type RetryConfig struct {
	MaxRetries   int           // Retry attempts, not counting the initial attempt
	InitialDelay time.Duration // Delay before first retry
	MaxDelay     time.Duration // Cap for the backoff delay
	Multiplier   float64       // Backoff multiplier
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     16 * time.Second,
		Multiplier:   2.0,
	}
}

// Retry executes fn with exponential backoff.
// Non-retryable DeckErrors fail immediately. Context cancellation is
// honored between attempts and during backoff waits.
func Retry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		// Structured errors tell us whether retrying can help.
		if GetCode(err) != "" && !IsRetryable(err) {
			return err
		}

		if attempt >= cfg.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("failed after %d retries: %w", cfg.MaxRetries, lastErr)
}
