package zcaperr

import (
	"fmt"
	"io"

	"go.zcap.dev/capability/errors"
)

// Error is a typed failure reported by a capability engine operation. It
// carries a sealed Kind for caller-side pattern matching plus the
// teacher's stack-carrying error as its cause, so %+v still prints a
// stack trace in development.
type Error struct {
	kind   Kind
	detail string
	cause  error
}

// New builds an Error of the given kind from a plain message. The
// stacktrace starts at New itself, followed by its caller.
func New(kind Kind, msg string) error {
	return &Error{kind: kind, cause: errors.WithStack(fmt.Errorf("%s", msg))}
}

// Newf builds an Error of the given kind from a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap annotates an existing error with a kind and a prefix message,
// preserving its stacktrace if it has one.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, cause: errors.Wrap(err, msg)}
}

// WithDetail builds a CaveatFailed-style Error carrying a free-form detail
// string alongside the kind (e.g. the caveat type that failed).
func WithDetail(kind Kind, msg, detail string) error {
	return &Error{kind: kind, detail: detail, cause: errors.WithStack(fmt.Errorf("%s", msg))}
}

// Error returns the underlying message, prefixed with the error kind.
func (e *Error) Error() string {
	if e.detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.kind, e.cause.Error(), e.detail)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.cause.Error())
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// Kind returns the error's sealed category.
func (e *Error) Kind() Kind {
	return e.kind
}

// Detail returns the caveat-specific (or otherwise free-form) detail
// string attached to the error, if any.
func (e *Error) Detail() string {
	return e.detail
}

// Format delegates to the underlying cause's formatter when available,
// so "%+v" still prints a stack trace.
func (e *Error) Format(s fmt.State, verb rune) {
	if f, ok := e.cause.(fmt.Formatter); ok {
		f.Format(s, verb)
		return
	}
	_, _ = io.WriteString(s, e.Error())
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var ze *Error
	if errors.As(err, &ze) {
		return ze.kind == kind
	}
	return false
}

// KindOf extracts the sealed kind from err, if it carries one.
func KindOf(err error) (Kind, bool) {
	var ze *Error
	if errors.As(err, &ze) {
		return ze.kind, true
	}
	return "", false
}

// DetailOf extracts the detail string from err, if it carries one.
func DetailOf(err error) string {
	var ze *Error
	if errors.As(err, &ze) {
		return ze.detail
	}
	return ""
}
