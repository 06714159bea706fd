package downloader

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/billmal071/libgenfic/internal/config"
)

// RetryConfig holds retry settings
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
}

// RetryConfigFrom reads the retry settings of the network section
func RetryConfigFrom(n config.NetworkConfig) RetryConfig {
	rc := RetryConfig{
		MaxAttempts: n.RetryAttempts,
		BaseDelay:   n.RetryBaseDelay,
		MaxDelay:    n.RetryMaxDelay,
		Multiplier:  n.RetryMultiplier,
	}
	if rc.MaxAttempts <= 0 {
		rc.MaxAttempts = 1
	}
	if rc.Multiplier < 1 {
		rc.Multiplier = 1
	}
	if rc.MaxDelay < rc.BaseDelay {
		rc.MaxDelay = rc.BaseDelay
	}
	return rc
}

// StatusError is returned when the server answers with a non-200 status
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: server returned %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// ErrorCategory categorizes errors for retry decisions
type ErrorCategory int

const (
	// ErrorRetryable marks temporary failures
	ErrorRetryable ErrorCategory = iota
	// ErrorNonRetryable marks permanent failures
	ErrorNonRetryable
	// ErrorRateLimited waits the maximum delay before the next attempt
	ErrorRateLimited
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrorRetryable:
		return "retryable"
	case ErrorRateLimited:
		return "rate-limited"
	default:
		return "non-retryable"
	}
}

var retryablePatterns = []string{
	"connection reset",
	"connection refused",
	"no such host",
	"temporary failure",
	"timeout",
	"eof",
	"broken pipe",
}

// CategorizeError determines how an error should be handled
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ErrorRetryable
	}
	if errors.Is(err, ErrHTMLContent) || errors.Is(err, context.Canceled) {
		return ErrorNonRetryable
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusTooManyRequests:
			return ErrorRateLimited
		case http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return ErrorRetryable
		default:
			return ErrorNonRetryable
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorRetryable
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(msg, pattern) {
			return ErrorRetryable
		}
	}
	return ErrorNonRetryable
}

// CalculateBackoff returns base * multiplier^attempt capped at MaxDelay, with ±25% jitter
func CalculateBackoff(attempt int, cfg RetryConfig) time.Duration {
	if attempt <= 0 {
		return cfg.BaseDelay
	}

	delay := float64(cfg.BaseDelay)
	for i := 0; i < attempt; i++ {
		delay *= cfg.Multiplier
	}
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}

	jitter := delay * 0.25 * (rand.Float64()*2 - 1)
	return time.Duration(delay + jitter)
}

// RetryOperation runs operation until it succeeds, fails permanently or
// runs out of attempts. The last error is returned.
func RetryOperation(ctx context.Context, cfg RetryConfig, operation func(attempt int) error) error {
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation(attempt)
		if lastErr == nil {
			return nil
		}

		var wait time.Duration
		switch CategorizeError(lastErr) {
		case ErrorNonRetryable:
			return lastErr
		case ErrorRateLimited:
			wait = cfg.MaxDelay
		default:
			wait = CalculateBackoff(attempt, cfg)
		}

		if attempt == cfg.MaxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return lastErr
}
