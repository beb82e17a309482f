package llm

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
	// StopReason defaults to StopEnd. StopMaxTokens on a structured request
	// yields ErrMaxTokensExceeded, as with a real provider.
	StopReason string
	// Delay holds the response back; a cancelled context ends the wait early.
	Delay time.Duration
}

// MockProvider is a deterministic Provider for tests and the "mock"
// provider setting. Canned responses are served in FIFO order. Output is
// not schema-validated, so tests can feed malformed payloads to decoders.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
	// Purposes holds the purpose label of each call, in order.
	Purposes []string
	// Fallback answers calls once the canned queue is empty. When nil an
	// empty queue yields ErrProviderUnavailable.
	Fallback func(ctx context.Context, req Request) MockResponse
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response, then falls back to Fallback,
// then to ErrProviderUnavailable.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.Purposes = append(m.Purposes, PurposeFrom(ctx))
	var resp MockResponse
	queued := len(m.responses) > 0
	if queued {
		resp = m.responses[0]
		m.responses = m.responses[1:]
	}
	fallback := m.Fallback
	m.mu.Unlock()

	if !queued {
		if fallback == nil {
			return nil, &ErrProviderUnavailable{Err: nil}
		}
		resp = fallback(ctx, req)
	}

	if resp.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(resp.Delay):
		}
	}

	if resp.Err != nil {
		return nil, resp.Err
	}

	return finish(req, completion{
		content: resp.Content,
		stop:    resp.StopReason,
		usage:   resp.Usage,
		model:   "mock",
	}, false)
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
