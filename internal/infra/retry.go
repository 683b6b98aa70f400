package infra

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// RetryConfig configures retry behavior for transient fetch failures.
type RetryConfig struct {
	MaxAttempts    int           // total attempts, including the first
	InitialBackoff time.Duration // doubles after each failed attempt
	MaxBackoff     time.Duration // backoff ceiling
}

// DefaultRetryConfig returns the retry defaults used against EDGAR.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     8 * time.Second,
	}
}

// ErrMaxRetriesExceeded indicates all retry attempts failed.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")

// RetryableFunc is a fetch that can be retried.
type RetryableFunc func(ctx context.Context) ([]byte, error)

// WithRetry executes fn with exponential backoff on transient failures.
// Permanent failures (4xx other than 429) return immediately; transient ones
// (5xx, 429, timeouts, connection errors) are retried up to
// cfg.MaxAttempts total attempts. There is no sleep after the last attempt.
func WithRetry(ctx context.Context, cfg RetryConfig, operation string, fn RetryableFunc) ([]byte, error) {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		data, err := fn(ctx)
		if err == nil {
			return data, nil
		}
		if !IsTransient(err) {
			return nil, err
		}
		lastErr = err

		if attempt < cfg.MaxAttempts-1 {
			backoff := calculateBackoff(cfg, attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				// Next attempt.
			}
		}
	}

	return nil, fmt.Errorf("%w for %s: %v", ErrMaxRetriesExceeded, operation, lastErr)
}

// calculateBackoff computes exponential backoff: initial * 2^attempt, capped.
func calculateBackoff(cfg RetryConfig, attempt int) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(2, float64(attempt))
	if backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}
	return time.Duration(backoff)
}

// IsTransient reports whether an error is worth retrying: server-side HTTP
// failures (5xx), throttling (429), timeouts, and connection-level errors.
// Client errors (other 4xx) and caller cancellation are permanent. Request
// timeouts surface as wrapped context.DeadlineExceeded and stay retryable;
// a cancelled parent context ends the retry loop on its next iteration.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var httpErr *ErrHTTP
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500 || httpErr.StatusCode == 429
	}

	// Anything else came out of the transport: timeouts, connection resets,
	// truncated bodies. EDGAR sheds load by dropping connections, so retry.
	return true
}
