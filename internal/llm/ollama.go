package llm

import (
	"context"
	"encoding/json"
	"strings"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434/v1"
	defaultOllamaModel   = "gemma3:4b"
)

// OllamaProvider talks to a local Ollama server through its OpenAI-compatible
// endpoint. Small local models often wrap JSON in code fences, so responses
// are unwrapped but not schema-validated.
type OllamaProvider struct {
	*OpenAIProvider
}

// NewOllamaProvider creates a provider for a local Ollama server. No API key
// is required.
func NewOllamaProvider(cfg OllamaConfig) (*OllamaProvider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}

	inner, err := newOpenAIProviderRaw(OpenAIConfig{
		// The SDK always sends an Authorization header; Ollama ignores it.
		APIKey:  "ollama",
		Model:   model,
		BaseURL: baseURL,
	})
	if err != nil {
		return nil, err
	}
	inner.lenient = true

	return &OllamaProvider{OpenAIProvider: inner}, nil
}

func (p *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := p.OpenAIProvider.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.Schema != nil {
		resp.Content = json.RawMessage(stripCodeFence(string(resp.Content)))
	}
	return resp, nil
}

// stripCodeFence removes a surrounding markdown code fence such as
// ```json ... ``` if present.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		t = t[i+1:]
	} else {
		return s
	}
	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}
