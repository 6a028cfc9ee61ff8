package driver

import (
	"errors"
	"fmt"
)

// Kind categorizes driver failures
type Kind string

const (
	KindConfig     Kind = "config"
	KindIO         Kind = "io"
	KindFormat     Kind = "format"
	KindExhausted  Kind = "exhausted"
	KindExtraction Kind = "extraction"
)

// Error is a driver failure. Page is 1-based and zero when the failure is
// not tied to a page.
type Error struct {
	Kind Kind
	Page int
	Err  error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("%s error on page %d: %v", e.Kind, e.Page, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, page int, err error) *Error {
	return &Error{Kind: kind, Page: page, Err: err}
}

// IsKind reports whether err is a driver Error of the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// ExitCode maps an error returned by Run or Lookup to a process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if !errors.As(err, &e) {
		return 1
	}
	switch e.Kind {
	case KindConfig:
		return 2
	case KindIO:
		return 3
	case KindFormat:
		return 4
	case KindExhausted:
		return 5
	case KindExtraction:
		return 6
	default:
		return 1
	}
}
