// Package errors defines the coded errors shared by the sort core, the CLI
// and the HTTP service.
//
// Every failure a user can cause carries a [Code]. The CLI prints the message
// without the code, the server returns both as JSON and picks a status from
// the code. Codes are grouped by prefix:
//
//   - INVALID_*: rejected before any work started
//   - UNSUPPORTED_TRAVERSAL: a traversal that is accepted by configuration but
//     has no implementation
//   - WORKER_FAILURE: a sort pass broke down after it started
//   - INTERNAL_ERROR: anything else
//
// Constructors mirror fmt:
//
//	errors.New(errors.ErrCodeInvalidConfig, "interval must be >= 1, got %d", n)
//	errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a machine-readable error class.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"  // unreadable or oversized image bytes
	ErrCodeInvalidConfig Code = "INVALID_CONFIG" // sort options or presets
	ErrCodeInvalidFormat Code = "INVALID_FORMAT" // unknown or unencodable image format
	ErrCodeInvalidPath   Code = "INVALID_PATH"   // file paths and I/O on them

	ErrCodeUnsupportedTraversal Code = "UNSUPPORTED_TRAVERSAL"
	ErrCodeWorkerFailure        Code = "WORKER_FAILURE"
	ErrCodeInternal             Code = "INTERNAL_ERROR"
)

// IsValidation reports whether c describes a request that was refused before
// any work started.
func (c Code) IsValidation() bool {
	return strings.HasPrefix(string(c), "INVALID_") || c == ErrCodeUnsupportedTraversal
}

// Error is an error with a code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return code != "" && GetCode(err) == code
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage is the message of the outermost *Error, without its code, or
// err.Error() for uncoded errors.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

// IsValidation reports whether err carries a validation code.
func IsValidation(err error) bool {
	return GetCode(err).IsValidation()
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
