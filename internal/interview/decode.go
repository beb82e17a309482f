package interview

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DecodeEvaluation parses an answer evaluation. It accepts a bare JSON
// object, one wrapped in a markdown code fence, or one embedded in
// surrounding prose. score must be a number or a numeric string;
// keyMistakes and improvedAnswer must be strings.
func DecodeEvaluation(raw []byte) (Evaluation, error) {
	obj, err := extractObject(string(raw))
	if err != nil {
		return Evaluation{}, &FormatError{What: "evaluation", Raw: string(raw), Err: err}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return Evaluation{}, &FormatError{What: "evaluation", Raw: string(raw), Err: err}
	}

	var ev Evaluation
	if ev.Score, err = decodeScore(fields["score"]); err != nil {
		return Evaluation{}, &FormatError{What: "evaluation", Raw: string(raw), Err: err}
	}
	if ev.KeyMistakes, err = decodeText(fields, "keyMistakes"); err != nil {
		return Evaluation{}, &FormatError{What: "evaluation", Raw: string(raw), Err: err}
	}
	if ev.ImprovedAnswer, err = decodeText(fields, "improvedAnswer"); err != nil {
		return Evaluation{}, &FormatError{What: "evaluation", Raw: string(raw), Err: err}
	}
	return ev, nil
}

// DecodeQuestion parses a generated question. Structured responses carry the
// text in a "question" field; anything not shaped like a JSON object is taken
// as the question text itself. The result is trimmed and never empty.
func DecodeQuestion(raw []byte) (string, error) {
	text := strings.TrimSpace(unfence(string(raw)))
	if strings.HasPrefix(text, "{") {
		var out struct {
			Question *string `json:"question"`
		}
		if err := json.Unmarshal([]byte(text), &out); err != nil {
			return "", &FormatError{What: "question", Raw: string(raw), Err: err}
		}
		if out.Question == nil {
			return "", &FormatError{What: "question", Raw: string(raw), Err: errors.New(`missing "question" field`)}
		}
		text = strings.TrimSpace(*out.Question)
	}
	if text == "" {
		return "", &FormatError{What: "question", Raw: string(raw), Err: errors.New("empty question text")}
	}
	return text, nil
}

func decodeScore(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New(`missing "score" field`)
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf(`"score" is not a number: %s`, raw)
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf(`"score" is not a number: %q`, s)
	}
	return n, nil
}

func decodeText(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return "", fmt.Errorf("missing %q field", name)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%q is not a string", name)
	}
	return strings.TrimSpace(s), nil
}

// extractObject returns the outermost {...} span of s after removing a code
// fence.
func extractObject(s string) (string, error) {
	s = unfence(s)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return "", errors.New("no JSON object in response")
	}
	return s[start : end+1], nil
}

func unfence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```")
	nl := strings.IndexByte(t, '\n')
	if nl < 0 {
		return s
	}
	t = strings.TrimSpace(t[nl+1:])
	return strings.TrimSuffix(t, "```")
}
