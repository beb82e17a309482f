package llm

import (
	"encoding/json"
	"net/http"
	"time"
)

// Normalized stop reasons reported in Response.StopReason.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// completion is one provider answer before the structured-output contract
// has been applied.
type completion struct {
	content json.RawMessage
	stop    string
	usage   Usage
	model   string
}

// finish turns c into a Response. Structured output cut off at the token
// limit is an ErrMaxTokensExceeded; otherwise it must satisfy req.Schema
// when validate is set.
func finish(req Request, c completion, validate bool) (*Response, error) {
	if req.Schema != nil {
		if c.stop == StopMaxTokens {
			return nil, &ErrMaxTokensExceeded{Content: c.content}
		}
		if validate {
			if err := validateResponse(req.Schema, c.content); err != nil {
				return nil, err
			}
		}
	}
	if c.stop == "" {
		c.stop = StopEnd
	}
	return &Response{
		Content:    c.content,
		Usage:      c.usage,
		Model:      c.model,
		StopReason: c.stop,
	}, nil
}

// statusError classifies a failed HTTP exchange with a provider. status is
// zero when no response was received.
func statusError(status int, wait time.Duration, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: wait, Err: err}
	case status == http.StatusRequestTimeout:
		return &ErrProviderUnavailable{Err: err}
	case status >= 400 && status < 500:
		return &ErrRequestRejected{Status: status, Err: err}
	default:
		return &ErrProviderUnavailable{Err: err}
	}
}
