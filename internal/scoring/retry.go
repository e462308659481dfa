package scoring

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// retryConfig holds backoff settings for LLM scoring calls
type retryConfig struct {
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	multiplier     float64
	timeout        time.Duration
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		maxRetries:     2,
		initialBackoff: 1 * time.Second,
		maxBackoff:     10 * time.Second,
		multiplier:     2.0,
		timeout:        30 * time.Second,
	}
}

// retryWithBackoff runs fn with per-attempt timeouts and exponential
// backoff. Non-retriable errors (auth, bad request) return immediately.
func retryWithBackoff(ctx context.Context, cfg retryConfig, fn func(context.Context) error) error {
	var lastErr error
	backoff := cfg.initialBackoff

	for attempt := 0; attempt <= cfg.maxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetriable(err) || attempt == cfg.maxRetries {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}

		backoff = time.Duration(float64(backoff) * cfg.multiplier)
		if backoff > cfg.maxBackoff {
			backoff = cfg.maxBackoff
		}
	}

	return lastErr
}

// isRetriable classifies errors worth retrying: timeouts, transient network
// failures, rate limits, and provider 5xx responses.
func isRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"rate limit", "429", "500", "502", "503", "504",
		"overloaded", "connection refused", "connection reset", "timeout",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
