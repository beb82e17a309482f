package interview

import (
	"fmt"
	"strings"

	"github.com/somilnegi/AI-Interview-Prep-App/internal/difficulty"
)

const questionSystemPrompt = `You are a technical interviewer running a mock interview.

Rules:
- Ask exactly one question suited to the candidate's target role and the requested difficulty.
- Do not include explanations, answers, bullet points, numbering or extra commentary.
- Respond with a JSON object: {"question": "..."}.`

const evaluationSystemPrompt = `You are a technical interviewer evaluating a candidate's answer.

Rules:
- Score the answer from 0 to 10.
- List the key mistakes or omissions in one short paragraph.
- Write an improved answer the candidate could have given.
- Respond ONLY with a JSON object: {"score": 0-10, "keyMistakes": "...", "improvedAnswer": "..."}.`

func buildQuestionMessage(role string, level difficulty.Level) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Role: %s\n", role)
	fmt.Fprintf(&b, "Difficulty: %s\n", level.Label())
	return b.String()
}

func buildEvaluationMessage(question, answer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", question)
	fmt.Fprintf(&b, "Answer: %s\n", answer)
	return b.String()
}
