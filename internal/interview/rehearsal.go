package interview

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"

	"github.com/somilnegi/AI-Interview-Prep-App/internal/difficulty"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/llm"
)

var rehearsalQuestions = map[difficulty.Level][]string{
	difficulty.Easy: {
		"What is the difference between a process and a thread?",
		"Explain what an HTTP status code of 404 means and when a server returns it.",
		"What does a database index do?",
	},
	difficulty.Medium: {
		"How would you design a cache for a read-heavy API, and how do you keep it consistent?",
		"Explain how a deadlock happens and two ways to prevent it.",
		"Walk through what happens between typing a URL and the page rendering.",
	},
	difficulty.Hard: {
		"Design a rate limiter shared by many API server instances. What are the failure modes?",
		"How would you migrate a large table to a new schema without downtime?",
		"Explain how you would make a distributed job queue deliver each job exactly once, or why you cannot.",
	},
}

// Rehearsal returns a scripted responder for llm.MockProvider so the
// service can be exercised end to end without a model. Questions cycle per
// difficulty; answers are scored by length.
func Rehearsal() func(ctx context.Context, req llm.Request) llm.MockResponse {
	var asked atomic.Uint64
	return func(ctx context.Context, req llm.Request) llm.MockResponse {
		prompt := ""
		if len(req.Messages) > 0 {
			prompt = req.Messages[len(req.Messages)-1].Content
		}
		var v any
		switch llm.PurposeFrom(ctx) {
		case PurposeQuestion:
			level := difficulty.Coerce(promptField(prompt, "Difficulty:"))
			qs := rehearsalQuestions[level]
			n := asked.Add(1) - 1
			v = map[string]any{"question": qs[n%uint64(len(qs))]}
		case PurposeScore:
			v = rehearsalEvaluation(promptField(prompt, "Answer:"))
		default:
			return llm.MockResponse{Err: &llm.ErrRequestRejected{Status: 400}}
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return llm.MockResponse{Err: err}
		}
		return llm.MockResponse{Content: raw}
	}
}

func rehearsalEvaluation(answer string) map[string]any {
	words := len(strings.Fields(answer))
	ev := map[string]any{
		"improvedAnswer": "State the core idea first, then give a concrete example and the main trade-off.",
	}
	switch {
	case words < 5:
		ev["score"], ev["keyMistakes"] = 2, "The answer is too short to show understanding."
	case words < 20:
		ev["score"], ev["keyMistakes"] = 5, "Correct direction, but no example or trade-offs."
	case words < 50:
		ev["score"], ev["keyMistakes"] = 7, "Solid, though the trade-offs are only touched on."
	default:
		ev["score"], ev["keyMistakes"] = 9, "Thorough. Could be more concise."
	}
	return ev
}

// promptField returns the text after the first line starting with label.
// The answer field runs to the end of the prompt.
func promptField(prompt, label string) string {
	i := strings.Index(prompt, label)
	if i < 0 {
		return ""
	}
	rest := prompt[i+len(label):]
	if label != "Answer:" {
		if j := strings.IndexByte(rest, '\n'); j >= 0 {
			rest = rest[:j]
		}
	}
	return strings.TrimSpace(rest)
}
