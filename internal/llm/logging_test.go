package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/somilnegi/AI-Interview-Prep-App/internal/store"
)

func openEventRepo(t *testing.T) store.EventRepo {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s.EventRepo()
}

func TestLogging_RecordsSuccess(t *testing.T) {
	repo := openEventRepo(t)
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"question":"Explain eventual consistency."}`),
		Usage:   Usage{InputTokens: 120, OutputTokens: 15},
	})
	p := WithLogging(mock, "mock", repo, zaptest.NewLogger(t))

	ctx := WithSession(WithPurpose(context.Background(), "question-gen"), "sess-42")
	_, err := p.Generate(ctx, Request{
		System:   "You are an interviewer.",
		Messages: []Message{{Role: RoleUser, Content: "Ask a question."}},
		Schema:   &Schema{Name: "interview-question", Definition: map[string]any{"type": "object"}},
	})
	require.NoError(t, err)

	events, err := repo.QueryLLMEvents(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, "mock", e.Provider)
	assert.Equal(t, "question-gen", e.Purpose)
	assert.Equal(t, "sess-42", e.SessionID)
	assert.Equal(t, 120, e.InputTokens)
	assert.True(t, e.Success)
	assert.Contains(t, e.RequestBody, "[system]")
	assert.Contains(t, e.RequestBody, "[schema: interview-question]")
	assert.Contains(t, e.ResponseBody, "eventual consistency")
}

func TestLogging_RecordsFailure(t *testing.T) {
	repo := openEventRepo(t)
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("connection refused")}})
	p := WithLogging(mock, "mock", repo, zaptest.NewLogger(t))

	_, err := p.Generate(WithPurpose(context.Background(), "answer-score"), Request{})
	require.Error(t, err)

	events, err := repo.QueryLLMEvents(context.Background(), store.QueryOpts{Purpose: "answer-score"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Success)
	assert.Contains(t, events[0].ErrorMessage, "connection refused")
}

func TestLogging_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, "mock", nil, nil)

	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())
}
