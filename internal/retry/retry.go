// Package retry holds the retry policy shared by the transport middleware.
package retry

import (
	"net/http"
	"strconv"
	"time"
)

// ShouldRetry reports whether an HTTP status code indicates a retryable
// failure. Retryable outcomes are:
//   - 429 (Too Many Requests) - rate limit exceeded
//   - 5xx (Server Errors) - transient server-side issues
//
// 4xx client errors other than 429 are deterministic and never retried.
func ShouldRetry(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}

// Backoff returns the exponential backoff delay before retrying after the
// given zero-based attempt: baseDelay * 2^attempt.
func Backoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return baseDelay * time.Duration(1<<attempt)
}

// ParseRetryAfter parses a Retry-After header value and returns the duration
// to wait. The header can contain either a number of seconds (e.g. "120") or
// an HTTP-date. Returns 0 if the header is empty or cannot be parsed.
func ParseRetryAfter(retryAfterHeader string) time.Duration {
	if retryAfterHeader == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(retryAfterHeader); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}

	return 0
}
