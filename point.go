package throw

import (
	"fmt"

	"braces.dev/throw/internal/pc"
)

// Point is a single site where an error was raised or propagated.
type Point struct {
	// Line is the line number of the call.
	Line int `json:"line" yaml:"line"`

	// Column is the column of the call.
	// It is 0 when the point was captured from a program counter,
	// which does not carry column information.
	Column int `json:"column" yaml:"column"`

	// Scope is the fully qualified name of the function
	// containing the call, e.g. "example.com/app.(*Server).Start".
	Scope string `json:"scope" yaml:"scope"`

	// File is the path of the source file containing the call.
	File string `json:"file" yaml:"file"`

	// pc is the program counter of the call site when the point
	// has not been resolved to the fields above yet.
	pc uintptr
}

// String formats the point the way it appears in a rendered trace.
func (p Point) String() string {
	p = p.resolve()
	return fmt.Sprintf("at %d:%d in %s (%s)", p.Line, p.Column, p.Scope, p.File)
}

// resolve fills in the point from its program counter, if any.
// Resolved points have no program counter
// so they compare equal to the same literal point.
func (p Point) resolve() Point {
	if p.pc == 0 {
		return p
	}

	f, ok := pc.Frame(p.pc)
	if !ok {
		// Unlikely, but if the PC didn't yield a frame
		// there's nothing better to report.
		return Point{Scope: "unknown", File: "unknown"}
	}
	return Point{
		Line:  f.Line,
		Scope: f.Function,
		File:  f.File,
	}
}

// Caller is a call site captured ahead of raising an error.
// It lets error helpers attribute errors to their caller:
//
//	func fail(msg string) *throw.Error[error] {
//		return throw.RaiseAt(throw.GetCaller().Point(), errors.New(msg))
//	}
type Caller struct {
	callerPC uintptr
}

// GetCaller captures the site that called the function calling GetCaller.
// Error helpers use it to record where they were called from
// rather than their own location.
//
//go:noinline
func GetCaller() Caller {
	return Caller{pc.GetCaller(1)}
}

// Point returns the captured call site.
func (c Caller) Point() Point {
	return Point{pc: c.callerPC}
}
