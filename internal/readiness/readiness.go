// Package readiness classifies a finished interview session as READY or
// NOT_READY from its average score and final difficulty.
package readiness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Label is the binary readiness outcome.
type Label string

const (
	Ready    Label = "READY"
	NotReady Label = "NOT_READY"
)

// Verdict is a decoded classifier result. Confidence is passed through as
// reported by the classifier, without clamping.
type Verdict struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

// String renders the verdict in the "label,confidence" wire form.
func (v Verdict) String() string {
	l := "0"
	if v.Label == Ready {
		l = "1"
	}
	return l + "," + strconv.FormatFloat(v.Confidence, 'f', -1, 64)
}

// Classifier produces a readiness verdict. difficultyOrdinal is 1 (easy)
// through 3 (hard). A reply that cannot be decoded is a *FormatError.
type Classifier interface {
	Classify(ctx context.Context, avgScore float64, difficultyOrdinal int) (Verdict, error)
}

// FormatError reports a classifier reply that could not be decoded.
type FormatError struct {
	Raw string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("undecodable classifier output %q: %v", e.Raw, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// IsFormatError reports whether err is or wraps a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// ParseVerdict decodes classifier output. Two forms are accepted:
// "label,confidence" and {"label": ..., "confidence": ...}. A label of "1"
// means READY; any other label means NOT_READY.
func ParseVerdict(text string) (Verdict, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Verdict{}, &FormatError{Raw: text, Err: errors.New("empty output")}
	}

	var label, conf string
	if strings.HasPrefix(s, "{") {
		var obj struct {
			Label      json.RawMessage `json:"label"`
			Confidence json.RawMessage `json:"confidence"`
		}
		if err := json.Unmarshal([]byte(s), &obj); err != nil {
			return Verdict{}, &FormatError{Raw: text, Err: err}
		}
		label = unquote(obj.Label)
		conf = unquote(obj.Confidence)
	} else {
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return Verdict{}, &FormatError{Raw: text, Err: fmt.Errorf("expected 2 fields, got %d", len(parts))}
		}
		label = strings.TrimSpace(parts[0])
		conf = strings.TrimSpace(parts[1])
	}

	if label == "" {
		return Verdict{}, &FormatError{Raw: text, Err: errors.New("missing label")}
	}
	c, err := strconv.ParseFloat(conf, 64)
	if err != nil {
		return Verdict{}, &FormatError{Raw: text, Err: fmt.Errorf("confidence: %w", err)}
	}
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return Verdict{}, &FormatError{Raw: text, Err: fmt.Errorf("confidence is not finite: %s", conf)}
	}

	v := Verdict{Label: NotReady, Confidence: c}
	if label == "1" {
		v.Label = Ready
	}
	return v, nil
}

// unquote returns a JSON scalar as text: strings lose their quotes, numbers
// keep their literal form, null becomes "".
func unquote(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}
