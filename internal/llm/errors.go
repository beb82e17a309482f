package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter <= 0 {
		return fmt.Sprintf("rate limited: %v", e.Err)
	}
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the model answered, but not in the
// requested schema.
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

// ErrRequestRejected indicates the provider refused the request itself:
// bad credentials, an unknown model or a malformed payload.
type ErrRequestRejected struct {
	Status int
	Err    error
}

func (e *ErrRequestRejected) Error() string {
	return fmt.Sprintf("LLM request rejected (%d): %v", e.Status, e.Err)
}

func (e *ErrRequestRejected) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// MalformedContent returns the model output carried by err when the model
// answered but the answer is unusable: invalid against the schema or
// truncated. ok is false for transport and availability failures.
func MalformedContent(err error) (content json.RawMessage, ok bool) {
	var inv *ErrInvalidResponse
	if errors.As(err, &inv) {
		return inv.Content, true
	}
	var trunc *ErrMaxTokensExceeded
	if errors.As(err, &trunc) {
		return trunc.Content, true
	}
	return nil, false
}

// IsTransient reports whether retrying the same request may succeed.
// Cancellation, deadlines, rejected requests and truncation are never
// transient. Malformed output is handled separately by the retry decorator.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var rejected *ErrRequestRejected
	if errors.As(err, &rejected) {
		return false
	}
	var trunc *ErrMaxTokensExceeded
	return !errors.As(err, &trunc)
}

// Outcome labels err for metrics: "ok" for nil, otherwise the failure class.
func Outcome(err error) string {
	var (
		rl       *ErrRateLimit
		rejected *ErrRequestRejected
		inv      *ErrInvalidResponse
		trunc    *ErrMaxTokensExceeded
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &rl):
		return "rate_limited"
	case errors.As(err, &rejected):
		return "rejected"
	case errors.As(err, &inv):
		return "invalid"
	case errors.As(err, &trunc):
		return "truncated"
	default:
		return "unavailable"
	}
}
