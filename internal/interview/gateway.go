// Package interview generates interview questions and scores candidate
// answers through an LLM provider.
package interview

import (
	"context"

	"github.com/somilnegi/AI-Interview-Prep-App/internal/difficulty"
)

// Evaluation is the decoded result of scoring one answer.
type Evaluation struct {
	Score          float64 `json:"score"`
	KeyMistakes    string  `json:"keyMistakes"`
	ImprovedAnswer string  `json:"improvedAnswer"`
}

// Gateway produces questions and evaluations from an external text
// generation service.
type Gateway interface {
	// AskQuestion returns the text of one interview question for role at
	// the given level.
	AskQuestion(ctx context.Context, role string, level difficulty.Level) (string, error)

	// ScoreAnswer evaluates answer against question. A response that cannot
	// be decoded is reported as a *FormatError.
	ScoreAnswer(ctx context.Context, question, answer string) (Evaluation, error)
}
