package throw

import (
	"log/slog"
)

// LogValue implements slog.LogValuer.
// The error is logged as a group holding its description,
// its context, and its trace as a list of strings.
func (e *Error[E]) LogValue() slog.Value {
	return traceValue(e.Error(), e)
}

// LogAttr returns an attribute with the key "error"
// for use with log/slog.
//
// If err carries a trace, it's included in the attribute
// the same way [Error.LogValue] does it.
// Other errors are logged as their description.
func LogAttr(err error) slog.Attr {
	if err == nil {
		return slog.Any("error", nil)
	}

	if t, ok := findTracer(err); ok {
		return slog.Attr{Key: "error", Value: traceValue(err.Error(), t)}
	}
	return slog.String("error", err.Error())
}

func traceValue(msg string, t tracer) slog.Value {
	attrs := []slog.Attr{slog.String("message", msg)}
	attrs = append(attrs, t.traceContext()...)

	points := t.tracePoints()
	trace := make([]string, len(points))
	for i, p := range points {
		trace[i] = p.String()
	}
	attrs = append(attrs, slog.Any("trace", trace))

	if n := t.droppedPoints(); n > 0 {
		attrs = append(attrs, slog.Int("dropped", n))
	}
	return slog.GroupValue(attrs...)
}
