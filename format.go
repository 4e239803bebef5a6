package throw

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format implements fmt.Formatter.
//
// %+v renders the full trace as described in [Error.Render].
// All other verbs format the description of the original value,
// the same as [Error.Error].
func (e *Error[E]) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		_ = e.Render(s)
		return
	}
	fmt.Fprintf(s, fmt.FormatString(s, verb), e.Error())
}

// Render writes the description of e followed by its trace:
//
//	Error: file not found
//	    at 10:9 in example.com/app.open (/src/app/open.go)
//	    at 25:10 in example.com/app.load (/src/app/load.go)
//
// Context attached with [Error.With] is listed as "key: value" lines
// between the description and the points.
//
// An error is returned if the writer returns an error.
func (e *Error[E]) Render(w io.Writer) error {
	return writeTree(w, buildTraceTree(e))
}

// FormatString renders the trace of err as a string.
//
// The trace of the outermost Error found in err's chain is used,
// under the description of err itself.
// Multi-errors (errors with an Unwrap() []error method)
// have each of their errors rendered below them, indented.
// An error without any trace renders as its description alone.
// A nil err, including a nil *Error, renders as "".
func FormatString(err error) string {
	if err == nil {
		return ""
	}
	if t, ok := err.(tracer); ok && t.isNil() {
		return ""
	}

	var s strings.Builder
	_ = writeTree(&s, buildTraceTree(err))
	return s.String()
}

// traceTree represents an error and its traces
// as a tree structure.
//
// Children, if any, are the trees for each of the errors
// inside the multi-error (if the error was a multi-error).
type traceTree struct {
	Message string
	Context []slog.Attr
	Points  []Point
	Dropped int

	Children []traceTree
}

// buildTraceTree builds a trace tree from an error.
//
// The first Error found while unwrapping provides the trace.
// If a multi-error is found,
// a separate tree is built from each of its errors
// and they're all considered children of this error.
func buildTraceTree(err error) traceTree {
	current := traceTree{Message: err.Error()}
	var traced bool
loop:
	for err != nil {
		switch x := err.(type) {
		case tracer:
			if x.isNil() {
				break loop
			}
			if !traced {
				current.Points = x.tracePoints()
				current.Context = x.traceContext()
				current.Dropped = x.droppedPoints()
				traced = true
			}
			err = x.Unwrap()

		// We unwrap errors manually instead of using errors.As
		// because we don't want to accidentally skip over multi-errors
		// or interpret them as part of a single error chain.

		case interface{ Unwrap() []error }:
			errs := x.Unwrap()
			current.Children = make([]traceTree, 0, len(errs))
			for _, err := range errs {
				if err != nil {
					current.Children = append(current.Children, buildTraceTree(err))
				}
			}
			break loop

		case interface{ Unwrap() error }:
			err = x.Unwrap()

		default:
			break loop
		}
	}
	return current
}

func writeTree(w io.Writer, tree traceTree) error {
	p := treeWriter{W: w}
	p.writeTree(tree, "", "")
	return p.e
}

type treeWriter struct {
	W io.Writer
	e error

	started bool
}

// Records the error if non-nil.
// Will be returned from writeTree, ultimately.
func (p *treeWriter) err(err error) {
	p.e = errors.Join(p.e, err)
}

// writeTree writes a node and its children.
//
//	Error: a; b
//	    at 3:2 in example.com/app.both (/src/app/both.go)
//	    [1] Error: a
//	        at 10:9 in example.com/app.first (/src/app/both.go)
//	    [2] Error: b
//
// indent is the prefix of the node's header,
// label precedes the "Error:" in the header.
func (p *treeWriter) writeTree(t traceTree, indent, label string) {
	msg := t.Message
	if len(t.Children) > 0 {
		// Multi-errors join their messages with newlines.
		msg = strings.ReplaceAll(msg, "\n", "; ")
	}
	p.line("%s%sError: %s", indent, label, msg)

	body := indent + "    "
	for _, attr := range t.Context {
		p.line("%s%s: %s", body, attr.Key, attr.Value)
	}
	for _, point := range t.Points {
		p.line("%s%s", body, point)
	}
	switch {
	case t.Dropped == 1:
		p.line("%s... 1 more point dropped", body)
	case t.Dropped > 1:
		p.line("%s... %d more points dropped", body, t.Dropped)
	}

	for i, child := range t.Children {
		p.writeTree(child, body, fmt.Sprintf("[%d] ", i+1))
	}
}

// line writes a line, separating it from the previous one.
// The output doesn't end with a newline.
func (p *treeWriter) line(format string, args ...any) {
	if p.started {
		p.writeString("\n")
	}
	p.started = true

	_, err := fmt.Fprintf(p.W, format, args...)
	p.err(err)
}

func (p *treeWriter) writeString(s string) {
	_, err := io.WriteString(p.W, s)
	p.err(err)
}
