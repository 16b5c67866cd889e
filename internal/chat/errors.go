package chat

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the router wraps exactly one of them.
var (
	ErrValidation = errors.New("validation")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not_found")
	ErrAuth       = errors.New("auth")
	ErrForbidden  = errors.New("forbidden")
	ErrState      = errors.New("state")
)

var errConnClosed = errors.New("connection closed")

// Error carries a human-readable message for the client plus its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...any) error { return newError(ErrValidation, format, args...) }
func conflictf(format string, args ...any) error   { return newError(ErrConflict, format, args...) }
func notFoundf(format string, args ...any) error   { return newError(ErrNotFound, format, args...) }
func forbiddenf(format string, args ...any) error  { return newError(ErrForbidden, format, args...) }
func statef(format string, args ...any) error      { return newError(ErrState, format, args...) }

// Code returns the wire name of err's kind, or "internal".
func Code(err error) string {
	for _, kind := range []error{ErrValidation, ErrConflict, ErrNotFound, ErrAuth, ErrForbidden, ErrState} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal"
}
