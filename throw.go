// Package throw attaches a propagation trace to error values.
//
// A trace is not a snapshot of the call stack.
// It is the list of sites an error passed through,
// recorded explicitly as the error is returned:
//
//	func readConfig(path string) ([]byte, *throw.Error[error]) {
//		b, err := os.ReadFile(path)
//		if err != nil {
//			return nil, throw.Raise(err)
//		}
//		return b, nil
//	}
//
//	func load() *throw.Error[error] {
//		if _, err := readConfig("app.yaml"); err != nil {
//			return throw.Up(err)
//		}
//		return nil
//	}
//
// Printing the error with %+v shows the original error
// followed by every recorded site, root cause first:
//
//	Error: open app.yaml: no such file or directory
//	    at 11:15 in example.com/app.readConfig (/src/app/config.go)
//	    at 18:10 in example.com/app.load (/src/app/config.go)
//
// Sites are recorded from the caller's program counter by default.
// The program counter carries no column, so these points
// have Column 0 and render as "at 11:0".
// Build with the throw tool (braces.dev/throw/cmd/throw) to have
// every site compiled in as a literal [Point], column included:
//
//	go build -toolexec=throw ./...
package throw

import (
	"fmt"
	"log/slog"

	"braces.dev/throw/internal/pc"
)

// Error is an error value of type E
// together with the sites it was raised and propagated through.
//
// An Error is created with [Raise] and grown with [Up].
// It always holds at least one point.
// Points are never removed or reordered.
//
// An Error has a single owner at a time:
// Up extends the value in place and hands it back.
type Error[E any] struct {
	err     E
	points  pointStack
	context []slog.Attr
}

// Raise wraps v, recording the call site as the first point.
// It is intended to be used where a failure is first observed.
//
//go:noinline
func Raise[E any](v E) *Error[E] {
	return RaiseAt(Point{pc: pc.GetCaller(0)}, v)
}

// RaiseAt is [Raise] with an explicitly provided call site.
// The throw tool rewrites calls to Raise into calls to RaiseAt.
func RaiseAt[E any](p Point, v E) *Error[E] {
	e := &Error[E]{err: v}
	e.points.init(p)
	return e
}

// Up records the call site on e and returns it.
// It is intended to be used wherever an Error received from a callee
// is returned to the caller.
//
// Up returns nil if e is nil.
//
//go:noinline
func Up[E any](e *Error[E]) *Error[E] {
	if e == nil {
		return nil
	}
	return UpAt(Point{pc: pc.GetCaller(0)}, e)
}

// UpAt is [Up] with an explicitly provided call site.
func UpAt[E any](p Point, e *Error[E]) *Error[E] {
	if e == nil {
		return nil
	}
	e.points.push(p)
	return e
}

// Convert changes the original value of e with fn,
// keeping the recorded points and context.
// e must not be used after Convert.
func Convert[E, F any](e *Error[E], fn func(E) F) *Error[F] {
	if e == nil {
		return nil
	}
	return &Error[F]{
		err:     fn(e.err),
		points:  e.points,
		context: e.context,
	}
}

// With attaches a key/value pair to e.
// Context is reported in insertion order when e is rendered or logged.
func (e *Error[E]) With(key string, value any) *Error[E] {
	e.context = append(e.context, slog.Any(key, value))
	return e
}

// Original returns the value e was raised with.
func (e *Error[E]) Original() E {
	return e.err
}

// Points returns the recorded sites, root cause first.
// The returned slice is a copy.
func (e *Error[E]) Points() []Point {
	src := e.points.all()
	points := make([]Point, len(src))
	for i, p := range src {
		points[i] = p.resolve()
	}
	return points
}

// Len reports the number of recorded points.
func (e *Error[E]) Len() int {
	return e.points.len()
}

// Dropped reports the number of points that were not recorded
// because the point storage was full.
// It is zero unless the error was built with the throw_fixed tag
// or restored from a [Record] that had dropped points.
func (e *Error[E]) Dropped() int {
	return e.points.dropped()
}

// Context returns the attributes attached with [Error.With].
func (e *Error[E]) Context() []slog.Attr {
	return append([]slog.Attr(nil), e.context...)
}

// Error returns the description of the original value.
// A nil *Error reports "<nil>".
func (e *Error[E]) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprint(e.err)
}

// Unwrap returns the original value if it is an error.
func (e *Error[E]) Unwrap() error {
	if err, ok := any(e.err).(error); ok {
		return err
	}
	return nil
}

// tracer is implemented by every Error[E].
// It lets untyped code reach the trace.
type tracer interface {
	error
	Unwrap() error

	isNil() bool
	header() string
	tracePoints() []Point
	traceContext() []slog.Attr
	droppedPoints() int
	push(Point)
}

var _ tracer = (*Error[error])(nil)

func (e *Error[E]) isNil() bool { return e == nil }
func (e *Error[E]) header() string { return e.Error() }
func (e *Error[E]) tracePoints() []Point { return e.Points() }
func (e *Error[E]) traceContext() []slog.Attr { return e.context }
func (e *Error[E]) droppedPoints() int { return e.points.dropped() }
func (e *Error[E]) push(p Point) { e.points.push(p) }

// findTracer returns the outermost traced error in err's chain.
//
// Only single-error chains are followed.
// The errors inside a multi-error carry their own traces
// and are not attributed to err.
// A nil *Error ends the search.
func findTracer(err error) (tracer, bool) {
	for err != nil {
		if t, ok := err.(tracer); ok {
			if t.isNil() {
				break
			}
			return t, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return nil, false
}

// Trace returns the points of the outermost Error in err's chain,
// root cause first.
// ok is false if err's chain holds no Error.
func Trace(err error) (points []Point, ok bool) {
	t, ok := findTracer(err)
	if !ok {
		return nil, false
	}
	return t.tracePoints(), true
}
