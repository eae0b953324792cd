package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/weanime/streamgate/resilience"
)

// ErrNotFound is returned when the upstream has no entry for the requested
// anime/episode. Never retried.
var ErrNotFound = errors.New("provider: content not found")

// ValidationError reports a malformed request. Surfaced to the caller
// immediately without touching any provider, never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "provider: invalid request: " + e.Reason
}

// NetworkError wraps a connection-level failure. Retryable.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "provider: network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RateLimitError reports an HTTP 429-equivalent response. Retryable after
// backoff.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider: rate limit exceeded, retry after %s", e.RetryAfter)
	}
	return "provider: rate limit exceeded"
}

// UpstreamError reports a non-2xx, non-429 provider response. Retryable
// only for 5xx-equivalent statuses.
type UpstreamError struct {
	Provider string
	Status   int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider: %s responded with status %d", e.Provider, e.Status)
}

// IsRetryable classifies an error per the engine's taxonomy: network,
// timeout, rate-limit, and upstream 5xx failures are transient; validation,
// not-found, upstream 4xx, circuit-open, and cancellation are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}

	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return true
	}

	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Status >= 500
	}

	if errors.Is(err, resilience.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return false
}

// statusError maps a non-2xx upstream response onto the error taxonomy.
func statusError(provider string, resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		var retryAfter time.Duration
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return &RateLimitError{RetryAfter: retryAfter}
	default:
		return &UpstreamError{Provider: provider, Status: resp.StatusCode}
	}
}
