package interview

import "github.com/somilnegi/AI-Interview-Prep-App/internal/llm"

// QuestionSchema is the structured output requested for question generation.
var QuestionSchema = &llm.Schema{
	Name:        "interview-question",
	Description: "A single interview question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question text, with no numbering, answer or commentary",
			},
		},
		"required":             []any{"question"},
		"additionalProperties": false,
	},
}

// EvaluationSchema is the structured output requested for answer scoring.
var EvaluationSchema = &llm.Schema{
	Name:        "answer-evaluation",
	Description: "A score and feedback for one interview answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "number",
				"description": "Score from 0 (no credit) to 10 (excellent)",
			},
			"keyMistakes": map[string]any{
				"type":        "string",
				"description": "The most important mistakes or omissions in the answer",
			},
			"improvedAnswer": map[string]any{
				"type":        "string",
				"description": "A stronger version of the candidate's answer",
			},
		},
		"required":             []any{"score", "keyMistakes", "improvedAnswer"},
		"additionalProperties": false,
	},
}
