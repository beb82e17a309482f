package interview

import (
	"context"
	"fmt"

	"github.com/somilnegi/AI-Interview-Prep-App/internal/difficulty"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/llm"
)

// LLM purposes recorded on every request event.
const (
	PurposeQuestion = "question-gen"
	PurposeScore    = "answer-score"
)

// Config controls the LLM requests issued by LLMGateway.
type Config struct {
	QuestionMaxTokens   int
	EvaluationMaxTokens int
	Temperature         float64
}

// DefaultConfig returns recommended request settings.
func DefaultConfig() Config {
	return Config{
		QuestionMaxTokens:   256,
		EvaluationMaxTokens: 1024,
		Temperature:         0.7,
	}
}

// LLMGateway implements Gateway on top of an llm.Provider.
type LLMGateway struct {
	provider llm.Provider
	cfg      Config
}

// NewLLMGateway creates a gateway backed by provider.
func NewLLMGateway(provider llm.Provider, cfg Config) *LLMGateway {
	return &LLMGateway{provider: provider, cfg: cfg}
}

func (g *LLMGateway) AskQuestion(ctx context.Context, role string, level difficulty.Level) (string, error) {
	ctx = llm.WithPurpose(ctx, PurposeQuestion)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      questionSystemPrompt,
		Messages:    llm.UserPrompt(buildQuestionMessage(role, level)),
		Schema:      QuestionSchema,
		MaxTokens:   g.cfg.QuestionMaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return "", classify("question", err)
	}
	return DecodeQuestion(resp.Content)
}

func (g *LLMGateway) ScoreAnswer(ctx context.Context, question, answer string) (Evaluation, error) {
	ctx = llm.WithPurpose(ctx, PurposeScore)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:    evaluationSystemPrompt,
		Messages:  llm.UserPrompt(buildEvaluationMessage(question, answer)),
		Schema:    EvaluationSchema,
		MaxTokens: g.cfg.EvaluationMaxTokens,
		// Scoring should be repeatable.
		Temperature: 0,
	})
	if err != nil {
		return Evaluation{}, classify("evaluation", err)
	}
	return DecodeEvaluation(resp.Content)
}

// classify turns provider errors that mean "the model answered, but not in
// the requested shape" into a *FormatError.
func classify(what string, err error) error {
	if raw, ok := llm.MalformedContent(err); ok {
		return &FormatError{What: what, Raw: string(raw), Err: err}
	}
	return fmt.Errorf("LLM %s request failed: %w", what, err)
}
