// Package throwgrpc carries traced errors across gRPC boundaries.
//
// The trace travels as a google.rpc.DebugInfo detail on the status:
// the detail is the error description and the stack entries
// are the rendered points, root cause first.
package throwgrpc

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"braces.dev/throw"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DebugInfo returns the trace of err as a DebugInfo message.
// It returns nil if err is nil or carries no trace.
func DebugInfo(err error) *errdetails.DebugInfo {
	if err == nil {
		return nil
	}

	points, ok := throw.Trace(err)
	if !ok {
		return nil
	}

	entries := make([]string, len(points))
	for i, p := range points {
		entries[i] = p.String()
	}
	return &errdetails.DebugInfo{
		StackEntries: entries,
		Detail:       err.Error(),
	}
}

// Status builds a status with the given code and err's description.
// The trace of err, if any, is attached as a DebugInfo detail.
func Status(c codes.Code, err error) *status.Status {
	st := status.New(c, err.Error())

	info := DebugInfo(err)
	if info == nil {
		return st
	}

	// Attaching only fails on marshaling errors.
	// The status is still useful without the detail.
	if with, werr := st.WithDetails(info); werr == nil {
		return with
	}
	return st
}

// FromStatus returns the description and points of a trace
// attached to st with [Status].
// ok is false if st carries no DebugInfo detail
// or the detail doesn't hold a valid trace.
func FromStatus(st *status.Status) (message string, points []throw.Point, ok bool) {
	if st == nil {
		return "", nil, false
	}

	for _, d := range st.Details() {
		info, isInfo := d.(*errdetails.DebugInfo)
		if !isInfo {
			continue
		}

		points = make([]throw.Point, 0, len(info.GetStackEntries()))
		for _, entry := range info.GetStackEntries() {
			p, err := parsePoint(entry)
			if err != nil {
				return "", nil, false
			}
			points = append(points, p)
		}
		if len(points) == 0 {
			return "", nil, false
		}
		return info.GetDetail(), points, true
	}
	return "", nil, false
}

// FromError rebuilds a traced error from a gRPC error.
// ok is false if err is not a status error with a trace.
//
// The rebuilt error's description is the one it had on the server.
// Its original value is not preserved.
func FromError(err error) (traced *throw.Error[error], ok bool) {
	st, isStatus := status.FromError(err)
	if !isStatus {
		return nil, false
	}

	msg, points, ok := FromStatus(st)
	if !ok {
		return nil, false
	}

	traced, rerr := throw.Record[error]{Message: msg, Points: points}.Restore()
	if rerr != nil {
		return nil, false
	}
	return traced, true
}

// CodeFunc picks the status code for an error returned by a handler.
type CodeFunc func(error) codes.Code

// UnaryServerInterceptor returns an interceptor that turns traced errors
// returned by handlers into statuses carrying their trace.
//
// code picks the status code; codes.Unknown is used if it is nil.
// Errors that are already statuses and errors without a trace
// are returned as they are.
func UnaryServerInterceptor(code CodeFunc) grpc.UnaryServerInterceptor {
	if code == nil {
		code = func(error) codes.Code { return codes.Unknown }
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}

		if _, isStatus := status.FromError(err); isStatus {
			return nil, err
		}
		if DebugInfo(err) == nil {
			return nil, err
		}
		return nil, Status(code(err), err).Err()
	}
}

// parsePoint parses a point rendered as "at L:C in scope (file)".
func parsePoint(s string) (throw.Point, error) {
	rest, ok := strings.CutPrefix(s, "at ")
	if !ok {
		return throw.Point{}, fmt.Errorf("point %q: missing %q", s, "at ")
	}

	pos, rest, ok := strings.Cut(rest, " in ")
	if !ok {
		return throw.Point{}, fmt.Errorf("point %q: missing scope", s)
	}

	lineStr, colStr, ok := strings.Cut(pos, ":")
	if !ok {
		return throw.Point{}, fmt.Errorf("point %q: missing column", s)
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil {
		return throw.Point{}, fmt.Errorf("point %q: bad line: %w", s, err)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil {
		return throw.Point{}, fmt.Errorf("point %q: bad column: %w", s, err)
	}

	scope, file, ok := strings.Cut(rest, " (")
	if !ok || !strings.HasSuffix(file, ")") {
		return throw.Point{}, fmt.Errorf("point %q: missing file", s)
	}

	return throw.Point{
		Line:   line,
		Column: col,
		Scope:  scope,
		File:   strings.TrimSuffix(file, ")"),
	}, nil
}
