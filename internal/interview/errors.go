package interview

import (
	"errors"
	"fmt"
)

// FormatError reports an upstream response that arrived but could not be
// decoded into the expected shape.
type FormatError struct {
	What string // "question" or "evaluation"
	Raw  string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("undecodable %s response: %v", e.What, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// IsFormatError reports whether err is or wraps a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
