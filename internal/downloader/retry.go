package downloader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/iconidentify/tikgrab/internal/domain"
)

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns the default media download retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  2 * time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}

// StatusError is a CDN response status that is neither success nor a known
// media failure.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// throttledError carries the server's Retry-After hint.
type throttledError struct {
	after time.Duration
}

func (e *throttledError) Error() string {
	return fmt.Sprintf("%v (retry after %s)", domain.ErrRateLimited, e.after)
}

func (e *throttledError) Unwrap() error {
	return domain.ErrRateLimited
}

// classifyStatus maps a media CDN response status to an error. Signed CDN
// links answer 401, 403, 404 or 410 once their signature lapses; retrying
// those cannot succeed, only a fresh resolve can.
func classifyStatus(resp *http.Response) error {
	switch code := resp.StatusCode; {
	case code == http.StatusOK:
		return nil
	case code == http.StatusUnauthorized, code == http.StatusForbidden,
		code == http.StatusNotFound, code == http.StatusGone:
		return domain.ErrURLExpired
	case code == http.StatusTooManyRequests:
		if after := retryAfter(resp.Header.Get("Retry-After"), time.Now()); after > 0 {
			return &throttledError{after: after}
		}
		return domain.ErrRateLimited
	default:
		return &StatusError{Code: code}
	}
}

// retryAfter parses a Retry-After value given in seconds or as an HTTP date.
func retryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}

// isRetryableError reports whether a failed media download may succeed on a
// later attempt: throttling, server errors and transport failures.
func isRetryableError(err error) bool {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return true
	case errors.Is(err, domain.ErrURLExpired):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= http.StatusInternalServerError
	}
	return true
}

// RetryWithCheck executes fn with exponential backoff while shouldRetry
// accepts the returned error. A Retry-After hint on the error stretches the
// next delay, still capped at MaxDelay.
func RetryWithCheck[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func() (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	var lastErr error
	var zero T

	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	delay := cfg.InitialDelay

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !shouldRetry(err) || attempt == cfg.MaxAttempts-1 {
			break
		}

		wait := delay
		var te *throttledError
		if errors.As(err, &te) && te.after > wait {
			wait = te.after
		}
		if cfg.MaxDelay > 0 && wait > cfg.MaxDelay {
			wait = cfg.MaxDelay
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return zero, lastErr
}
