package throw

import (
	"errors"
	"fmt"

	"braces.dev/throw/internal/pc"
)

// New returns an error that formats as the given text, similar to errors.New,
// raised at the call site.
//
// This helper is a shorter alternative to throw.Raise(errors.New(...)).
//
//go:noinline
func New(text string) *Error[error] {
	return RaiseAt(Point{pc: pc.GetCaller(0)}, errors.New(text))
}

// NewAt is [New] with an explicitly provided call site.
func NewAt(p Point, text string) *Error[error] {
	return RaiseAt(p, errors.New(text))
}

// Errorf formats according to a format specifier, similar to fmt.Errorf,
// and raises the result at the call site.
//
// This helper is a shorter alternative to throw.Raise(fmt.Errorf(...)).
// Note that an Error wrapped with %w becomes part of the message and chain,
// but its points are not carried over; use [Wrap] for that.
//
//go:noinline
func Errorf(format string, args ...any) *Error[error] {
	return RaiseAt(Point{pc: pc.GetCaller(0)}, fmt.Errorf(format, args...))
}

// ErrorfAt is [Errorf] with an explicitly provided call site.
func ErrorfAt(p Point, format string, args ...any) *Error[error] {
	return RaiseAt(p, fmt.Errorf(format, args...))
}
