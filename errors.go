package nativeapp

import (
	"fmt"
	"strings"
)

// Kind categorizes a bridge error.
type Kind string

const (
	KindInvalidDescriptor Kind = "invalid_descriptor"
	KindRevisionMismatch  Kind = "revision_mismatch"
	KindNoEngine          Kind = "no_engine"
	KindEngineCreate      Kind = "engine_create"
	KindEngine            Kind = "engine"
	KindInvalidHandle     Kind = "invalid_handle"
	KindDestroyed         Kind = "destroyed"
	KindLibrary           Kind = "library"
	KindUnsupported       Kind = "unsupported"
)

// Error is the structured error returned by bridge operations.
type Error struct {
	Cause  error
	Op     string
	Kind   Kind
	Detail string
}

// Sentinels for use with errors.Is. Matching is by Kind only.
var (
	ErrInvalidDescriptor = &Error{Kind: KindInvalidDescriptor}
	ErrRevisionMismatch  = &Error{Kind: KindRevisionMismatch}
	ErrNoEngine          = &Error{Kind: KindNoEngine}
	ErrInvalidHandle     = &Error{Kind: KindInvalidHandle}
	ErrDestroyed         = &Error{Kind: KindDestroyed}
	ErrUnsupported       = &Error{Kind: KindUnsupported}
)

func (e *Error) Error() string {
	var b strings.Builder

	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// newError builds an *Error with a formatted detail message.
func newError(op string, kind Kind, cause error, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Op:     op,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// InvalidDescriptor reports a descriptor that cannot be used to create an App.
func InvalidDescriptor(op, detail string, args ...any) *Error {
	return newError(op, KindInvalidDescriptor, nil, detail, args...)
}

// RevisionMismatch reports a descriptor whose fields do not fit its header revision.
func RevisionMismatch(op, detail string, args ...any) *Error {
	return newError(op, KindRevisionMismatch, nil, detail, args...)
}

// EngineError wraps a failure reported by the engine.
func EngineError(op string, cause error) *Error {
	return newError(op, KindEngine, cause, "")
}

// LibraryError wraps a failure to load or bind the native library.
func LibraryError(op string, cause error) *Error {
	return newError(op, KindLibrary, cause, "")
}
