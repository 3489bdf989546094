// Package errors defines the failure kinds shared by the parse, check,
// and execute passes. Every pass reports its first violation as an *Error
// and stops; the driver decides what to do with it.
package errors

import "fmt"

// Kind classifies a failure.
type Kind string

const (
	UnexpectedToken        Kind = "UnexpectedToken"
	TrailingTokensAfterEnd Kind = "TrailingTokensAfterEnd"
	DuplicateDeclaration   Kind = "DuplicateDeclaration"
	UndeclaredVariable     Kind = "UndeclaredVariable"
	UninitializedVariable  Kind = "UninitializedVariable"
	InputExhausted         Kind = "InputExhausted"
)

// Error carries a Kind and a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind carried by err, or the empty string when err
// is not an *Error from this package.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}
