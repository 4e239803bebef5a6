package throw

import (
	"braces.dev/throw/internal/pc"
)

// Wrap records the call site on err for code that returns plain errors.
// If err is nil, or a nil *Error stored in an error, Wrap returns nil.
//
// If err is an Error, the site is appended to it with [Up].
// If err wraps an Error, for example through fmt.Errorf's %w,
// Wrap returns a new *Error[error] holding err
// that carries the wrapped trace followed by this site.
// Otherwise err is raised with [Raise].
//
//go:noinline
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return WrapAt(Point{pc: pc.GetCaller(0)}, err)
}

// WrapAt is [Wrap] with an explicitly provided call site.
func WrapAt(p Point, err error) error {
	if err == nil {
		return nil
	}

	if t, ok := err.(tracer); ok {
		if t.isNil() {
			return nil
		}
		t.push(p)
		return err
	}

	inner, ok := findTracer(err)
	if !ok {
		return RaiseAt(p, err)
	}

	e := &Error[error]{err: err}
	points := inner.tracePoints()
	e.points.init(points[0])
	for _, ip := range points[1:] {
		e.points.push(ip)
	}
	e.points.addDropped(inner.droppedPoints())
	e.points.push(p)
	e.context = append(e.context, inner.traceContext()...)
	return e
}

// Wrap2 is used to [Wrap] the last error return when returning 2 values.
// This is useful when returning multiple returns from a function call directly:
//
//	return Wrap2(fn())
//
//go:noinline
func Wrap2[T any](t T, err error) (T, error) {
	if err == nil {
		return t, nil
	}
	return t, WrapAt(Point{pc: pc.GetCaller(0)}, err)
}

// Wrap2At is [Wrap2] with an explicitly provided call site.
func Wrap2At[T any](p Point, t T, err error) (T, error) {
	return t, WrapAt(p, err)
}

// Wrap3 is used to [Wrap] the last error return when returning 3 values.
//
//	return Wrap3(fn())
//
//go:noinline
func Wrap3[T1, T2 any](t1 T1, t2 T2, err error) (T1, T2, error) {
	if err == nil {
		return t1, t2, nil
	}
	return t1, t2, WrapAt(Point{pc: pc.GetCaller(0)}, err)
}

// Wrap3At is [Wrap3] with an explicitly provided call site.
func Wrap3At[T1, T2 any](p Point, t1 T1, t2 T2, err error) (T1, T2, error) {
	return t1, t2, WrapAt(p, err)
}
