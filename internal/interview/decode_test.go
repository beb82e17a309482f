package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvaluation(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		score float64
	}{
		{"plain object", `{"score":7,"keyMistakes":"Missed indexes.","improvedAnswer":"Mention B-trees."}`, 7},
		{"fractional", `{"score":6.5,"keyMistakes":"a","improvedAnswer":"b"}`, 6.5},
		{"string score", `{"score":"8","keyMistakes":"a","improvedAnswer":"b"}`, 8},
		{"code fence", "```json\n{\"score\":4,\"keyMistakes\":\"a\",\"improvedAnswer\":\"b\"}\n```", 4},
		{"surrounding prose", "Here is the evaluation:\n{\"score\": 9, \"keyMistakes\": \"a\", \"improvedAnswer\": \"b\"}\nGood luck!", 9},
		{"out of range kept", `{"score":14,"keyMistakes":"a","improvedAnswer":"b"}`, 14},
		{"empty texts", `{"score":0,"keyMistakes":"","improvedAnswer":""}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeEvaluation([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.score, ev.Score)
		})
	}
}

func TestDecodeEvaluation_Fields(t *testing.T) {
	ev, err := DecodeEvaluation([]byte(`{"score":7,"keyMistakes":"  Missed indexes. ","improvedAnswer":"Mention B-trees."}`))
	require.NoError(t, err)
	assert.Equal(t, "Missed indexes.", ev.KeyMistakes)
	assert.Equal(t, "Mention B-trees.", ev.ImprovedAnswer)
}

func TestDecodeEvaluation_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ``},
		{"prose only", `I think the answer was pretty good, maybe a 7.`},
		{"malformed", `{"score":7,"keyMistakes":"a"`},
		{"missing score", `{"keyMistakes":"a","improvedAnswer":"b"}`},
		{"null score", `{"score":null,"keyMistakes":"a","improvedAnswer":"b"}`},
		{"range score", `{"score":"0-10","keyMistakes":"a","improvedAnswer":"b"}`},
		{"nan score", `{"score":"NaN","keyMistakes":"a","improvedAnswer":"b"}`},
		{"bool score", `{"score":true,"keyMistakes":"a","improvedAnswer":"b"}`},
		{"missing keyMistakes", `{"score":5,"improvedAnswer":"b"}`},
		{"array keyMistakes", `{"score":5,"keyMistakes":["a","b"],"improvedAnswer":"b"}`},
		{"missing improvedAnswer", `{"score":5,"keyMistakes":"a"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvaluation([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, IsFormatError(err), "expected FormatError, got %T", err)
		})
	}
}

func TestDecodeQuestion(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"structured", `{"question":"  What is a goroutine leak? "}`, "What is a goroutine leak?"},
		{"fenced", "```json\n{\"question\":\"Explain CAP.\"}\n```", "Explain CAP."},
		{"plain text", "\nWhat is the difference between TCP and UDP?\n", "What is the difference between TCP and UDP?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeQuestion([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeQuestion_Failures(t *testing.T) {
	for _, raw := range []string{``, `   `, `{"question":"   "}`, `{"text":"What?"}`, `{"question":`} {
		_, err := DecodeQuestion([]byte(raw))
		require.Error(t, err, "input %q", raw)
		assert.True(t, IsFormatError(err))
	}
}
