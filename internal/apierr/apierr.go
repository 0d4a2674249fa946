// Package apierr defines the closed error taxonomy shared by the transport
// gateway, query engine, and entity controllers. Every failure crossing a
// component boundary is one of these kinds; callers branch on KindOf rather
// than string-matching messages.
package apierr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	NetworkFailure    Kind = "network_failure"
	Unauthorized      Kind = "unauthorized"
	NotFound          Kind = "not_found"
	ValidationFailure Kind = "validation_failure"
	Timeout           Kind = "timeout"
	Unknown           Kind = "unknown"
)

// Error is a classified failure with an operator-readable message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Message returns the human-readable message for an error chain. For
// unclassified errors it falls back to Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
