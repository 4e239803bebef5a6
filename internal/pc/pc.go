// Package pc provides access to the program counter
// to determine the caller of a function.
package pc

import "runtime"

// GetCaller returns the program counter of the caller of
// the function that calls GetCaller,
// skipping skip more frames above it.
//
// Inlined frames count as frames.
//
//go:noinline
func GetCaller(skip int) uintptr {
	var callers [1]uintptr
	// skip runtime.Callers, GetCaller, and the function asking for its caller.
	n := runtime.Callers(3+skip, callers[:])
	if n == 0 {
		return 0
	}
	return callers[0]
}

// Frame resolves a PC returned by GetCaller
// into the innermost frame it belongs to.
// ok is false if the PC yields no frame.
func Frame(pc uintptr) (frame runtime.Frame, ok bool) {
	if pc == 0 {
		return runtime.Frame{}, false
	}

	frames := runtime.CallersFrames([]uintptr{pc})
	f, _ := frames.Next()
	if f == (runtime.Frame{}) {
		return runtime.Frame{}, false
	}
	return f, true
}
