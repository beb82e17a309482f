package session

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Service matches exactly one of these
// with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthorization  = errors.New("not authorized")
	ErrNotFound       = errors.New("session not found")
	ErrInvalidState   = errors.New("invalid session state")
	ErrUpstream       = errors.New("upstream call failed")
	ErrUpstreamFormat = errors.New("upstream response undecodable")
	ErrStorage        = errors.New("storage failure")
)

// Error is returned by every Service operation. Kind is one of the Err*
// sentinels and Err, if set, is the underlying cause.
type Error struct {
	Kind error
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or nil if err did not come from Service.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}

func newError(kind error, op, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: cause}
}
