package readiness

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// CommandClassifier runs an external predictor as
// "<Path> <Args...> <avgScore> <difficultyOrdinal>" and parses its standard
// output with ParseVerdict.
type CommandClassifier struct {
	Path string
	Args []string
}

// NewCommandClassifier builds a classifier from a command line such as
// "python3 ml/predict.py".
func NewCommandClassifier(command string) (*CommandClassifier, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty classifier command")
	}
	return &CommandClassifier{Path: fields[0], Args: fields[1:]}, nil
}

func (c *CommandClassifier) Classify(ctx context.Context, avgScore float64, difficultyOrdinal int) (Verdict, error) {
	args := append([]string{}, c.Args...)
	args = append(args,
		strconv.FormatFloat(avgScore, 'f', -1, 64),
		strconv.Itoa(difficultyOrdinal),
	)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return Verdict{}, fmt.Errorf("run classifier: %w", ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return Verdict{}, fmt.Errorf("run classifier: %w: %s", err, msg)
		}
		return Verdict{}, fmt.Errorf("run classifier: %w", err)
	}
	return ParseVerdict(lastLine(stdout.String()))
}

// lastLine returns the final non-empty line, so predictors that print
// warnings before their result still decode.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
