package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrTimeout indicates a single call exceeded its deadline while the
// caller's context was still alive.
type ErrTimeout struct {
	After time.Duration
	Err   error
}

func (e *ErrTimeout) Error() string {
	if e.After > 0 {
		return fmt.Sprintf("LLM call timed out after %s: %v", e.After, e.Err)
	}
	return fmt.Sprintf("LLM call timed out: %v", e.Err)
}

func (e *ErrTimeout) Unwrap() error { return e.Err }

// ErrInvalidRequest indicates the provider refused the request itself
// (bad parameters, auth, unknown model). Retrying cannot help.
type ErrInvalidRequest struct {
	StatusCode int
	Err        error
}

func (e *ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid LLM request (status %d): %v", e.StatusCode, e.Err)
}

func (e *ErrInvalidRequest) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the LLM returned content that does not
// conform to the requested schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// RetryError is the final error of a call made through the retry decorator.
// Exhausted is set when every attempt failed with a retryable error.
type RetryError struct {
	Attempts  int
	Exhausted bool
	Err       error
}

func (e *RetryError) Error() string {
	if e.Exhausted {
		return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("attempt %d failed: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error { return e.Err }

// Attempts reports how many attempts produced err. Errors that did not
// pass through the retry decorator count as one attempt.
func Attempts(err error) int {
	var re *RetryError
	if errors.As(err, &re) {
		return re.Attempts
	}
	return 1
}

// IsTransient reports whether err is one of the retryable failure kinds:
// rate limiting, timeout or an unavailable service.
func IsTransient(err error) bool {
	var (
		rl      *ErrRateLimit
		to      *ErrTimeout
		unavail *ErrProviderUnavailable
	)
	return errors.As(err, &rl) || errors.As(err, &to) || errors.As(err, &unavail)
}

// IsCancellation reports whether err came from the caller's context.
func IsCancellation(err error) bool {
	var to *ErrTimeout
	if errors.As(err, &to) {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// classifyStatus maps an HTTP status from a provider SDK onto the typed
// error taxonomy. retryAfter is used only for 429.
func classifyStatus(status int, retryAfter time.Duration, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: retryAfter, Err: err}
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return &ErrTimeout{Err: err}
	case status >= 500:
		return &ErrProviderUnavailable{Err: err}
	case status >= 400:
		return &ErrInvalidRequest{StatusCode: status, Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	var secs float64
	if _, err := fmt.Sscanf(v, "%g", &secs); err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// transportError classifies failures that carry no HTTP status. Context
// errors pass through untouched so callers can tell cancellation apart.
func transportError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ErrProviderUnavailable{Err: err}
}
