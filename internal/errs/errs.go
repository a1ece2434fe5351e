// Package errs defines the error taxonomy for handler resolution.
//
// Every failure surfaced by the spec parser, the loaders, the resolver, and
// the middleware registry carries one of the kinds below, so callers can
// decide with errors.Is whether a failure is recoverable (try the next
// resolution source) or fatal (abort startup).
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a resolution failure.
type Kind int

const (
	// KindInvalidSpec marks a malformed handler spec string.
	KindInvalidSpec Kind = iota
	// KindFileNotFound marks a script file absent under every search path.
	KindFileNotFound
	// KindModuleLoad marks a script or module that exists but cannot be
	// parsed, evaluated, or bound. Never downgraded to "not found".
	KindModuleLoad
	// KindNotFound marks a loaded namespace missing the named attribute.
	KindNotFound
	// KindNotCallable marks a resolved value that is not invokable.
	KindNotCallable
	// KindRegistration marks a rejected middleware or formatter registration.
	KindRegistration
)

func (k Kind) String() string {
	switch k {
	case KindInvalidSpec:
		return "invalid handler spec"
	case KindFileNotFound:
		return "handler file not found"
	case KindModuleLoad:
		return "module load failed"
	case KindNotFound:
		return "handler not found"
	case KindNotCallable:
		return "handler not callable"
	case KindRegistration:
		return "registration rejected"
	default:
		return "unknown error"
	}
}

// Error is the concrete error type carrying a Kind and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports kind equality, so errors.Is(err, &Error{Kind: k}) and the
// sentinel helpers below both work.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind wrapping a cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Kind sentinels for errors.Is checks.
var (
	ErrInvalidSpec  = &Error{Kind: KindInvalidSpec}
	ErrFileNotFound = &Error{Kind: KindFileNotFound}
	ErrModuleLoad   = &Error{Kind: KindModuleLoad}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrNotCallable  = &Error{Kind: KindNotCallable}
	ErrRegistration = &Error{Kind: KindRegistration}
)

// IsRecoverable reports whether err may be treated as "not found, try the
// next resolution source". Only absent files and absent attributes qualify;
// a broken script is always fatal.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrFileNotFound) || errors.Is(err, ErrNotFound)
}
