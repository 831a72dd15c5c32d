package rpc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/goran-ethernal/HolderIndexor/pkg/config"
)

// retryableError checks if an error should trigger a retry.
func retryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Network errors
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Connection errors
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	// Timeout errors
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return true
	}

	if isRateLimitError(err) {
		return true
	}

	// Temporary server errors
	if strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504") ||
		strings.Contains(errStr, "bad gateway") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "gateway timeout") {
		return true
	}

	// Connection pool exhausted
	if strings.Contains(errStr, "connection pool") ||
		strings.Contains(errStr, "no available connection") {
		return true
	}

	return false
}

// rawBackoff is the exponential backoff for an attempt before capping and jitter.
func rawBackoff(attempt int, cfg *config.RetryConfig, rateLimited bool) float64 {
	if attempt <= 1 {
		return 0
	}

	backoff := float64(cfg.InitialBackoff.Duration) * math.Pow(cfg.BackoffMultiplier, float64(attempt-2))
	if rateLimited && cfg.RateLimitMultiplier > 1 {
		backoff *= cfg.RateLimitMultiplier
	}
	return backoff
}

// calculateBackoff computes the backoff duration for a given attempt with jitter.
func calculateBackoff(attempt int, cfg *config.RetryConfig) time.Duration {
	return jitter(math.Min(rawBackoff(attempt, cfg, false), float64(cfg.MaxBackoff.Duration)))
}

// jitter adds +/-25% noise to a backoff.
func jitter(backoff float64) time.Duration {
	if backoff <= 0 {
		return 0
	}

	jitterRange := backoff * 0.25
	backoff += (rand.Float64() * 2 * jitterRange) - jitterRange //nolint:gosec

	if backoff < 0 {
		backoff = 0
	}

	return time.Duration(backoff)
}

// RetryPolicy retries transient upstream failures with exponential backoff.
// Rate limit responses back off faster (rate_limit_multiplier) and once that
// backoff would pass max_backoff, or the attempts run out, ErrRateLimited is returned.
// A nil policy or a policy without config runs the operation once.
type RetryPolicy struct {
	cfg *config.RetryConfig
}

// NewRetryPolicy creates a retry policy from config.
func NewRetryPolicy(cfg *config.RetryConfig) *RetryPolicy {
	return &RetryPolicy{cfg: cfg}
}

// Do executes fn until it succeeds, fails with a non-retryable error, or the budget is spent.
// It respects context cancellation and deadlines.
func (p *RetryPolicy) Do(ctx context.Context, operation string, fn func() error) error {
	if p == nil || p.cfg == nil {
		return fn()
	}
	cfg := p.cfg

	var lastErr error
	startTime := time.Now()

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled before attempt %d: %w", attempt, err)
		}

		err := fn()
		if err == nil {
			if attempt > 1 {
				RPCRetrySuccessInc(operation)
			}
			return nil
		}

		lastErr = err

		if !retryableError(err) {
			return fmt.Errorf("non-retryable error on attempt %d/%d: %w", attempt, cfg.MaxAttempts, err)
		}

		if attempt >= cfg.MaxAttempts {
			break
		}

		rateLimited := isRateLimitError(err)
		raw := rawBackoff(attempt+1, cfg, rateLimited)
		if rateLimited && raw > float64(cfg.MaxBackoff.Duration) {
			RPCMethodError(operation, "rate_limited")
			return fmt.Errorf("%w: backoff ceiling %v reached on attempt %d/%d (last error: %w)",
				ErrRateLimited, cfg.MaxBackoff.Duration, attempt, cfg.MaxAttempts, err)
		}

		backoffDuration := jitter(math.Min(raw, float64(cfg.MaxBackoff.Duration)))
		if backoffDuration > 0 {
			select {
			case <-time.After(backoffDuration):
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during backoff (attempt %d/%d): %w",
					attempt, cfg.MaxAttempts, ctx.Err())
			}
		}

		RPCRetryInc(operation)
	}

	if isRateLimitError(lastErr) {
		RPCMethodError(operation, "rate_limited")
		return fmt.Errorf("%w: all %d attempts failed after %v (last error: %w)",
			ErrRateLimited, cfg.MaxAttempts, time.Since(startTime), lastErr)
	}

	return fmt.Errorf("all %d attempts failed after %v (last error: %w)",
		cfg.MaxAttempts, time.Since(startTime), lastErr)
}
