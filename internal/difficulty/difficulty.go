package difficulty

import (
	"fmt"
	"strings"
)

// Level is the difficulty band questions are generated at.
type Level string

const (
	Easy   Level = "EASY"
	Medium Level = "MEDIUM"
	Hard   Level = "HARD"
)

// Default is the level used when a caller does not ask for a valid one.
const Default = Medium

// Levels lists all levels from easiest to hardest.
var Levels = []Level{Easy, Medium, Hard}

// Ordinal returns the numeric encoding passed to the readiness classifier
// (EASY=1, MEDIUM=2, HARD=3). Unknown levels map to 0.
func (l Level) Ordinal() int {
	switch l {
	case Easy:
		return 1
	case Medium:
		return 2
	case Hard:
		return 3
	}
	return 0
}

// Valid reports whether l is one of the three known levels.
func (l Level) Valid() bool {
	return l.Ordinal() != 0
}

// Label is the lowercase form used in prompts.
func (l Level) Label() string {
	return strings.ToLower(string(l))
}

func (l Level) String() string {
	return string(l)
}

// Parse converts user input into a Level, case-insensitively.
func Parse(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return l, nil
}

// Coerce is Parse with a fallback to Default for anything unrecognized.
func Coerce(s string) Level {
	l, err := Parse(s)
	if err != nil {
		return Default
	}
	return l
}

func (l Level) up() Level {
	switch l {
	case Easy:
		return Medium
	case Medium:
		return Hard
	}
	return l
}

func (l Level) down() Level {
	switch l {
	case Hard:
		return Medium
	case Medium:
		return Easy
	}
	return l
}
