package throwgrpc_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"braces.dev/throw"
	"braces.dev/throw/throwgrpc"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

var (
	_readPoint = throw.Point{Line: 10, Column: 9, Scope: "example.com/app.read", File: "app/read.go"}
	_loadPoint = throw.Point{Line: 25, Column: 10, Scope: "example.com/app.(*Loader).Load", File: "app/load dir/load.go"}
)

func tracedErr() *throw.Error[error] {
	err := throw.RaiseAt(_readPoint, errors.New("file not found"))
	return throw.UpAt(_loadPoint, err)
}

func TestDebugInfo(t *testing.T) {
	want := &errdetails.DebugInfo{
		StackEntries: []string{
			"at 10:9 in example.com/app.read (app/read.go)",
			"at 25:10 in example.com/app.(*Loader).Load (app/load dir/load.go)",
		},
		Detail: "file not found",
	}
	if got := throwgrpc.DebugInfo(tracedErr()); !proto.Equal(want, got) {
		t.Errorf("DebugInfo:\nwant %v\ngot  %v", want, got)
	}
}

func TestDebugInfo_wrapped(t *testing.T) {
	err := fmt.Errorf("load: %w", tracedErr())

	got := throwgrpc.DebugInfo(err)
	if want, got := "load: file not found", got.GetDetail(); want != got {
		t.Errorf("Detail: want %q, got %q", want, got)
	}
	if want, got := 2, len(got.GetStackEntries()); want != got {
		t.Errorf("StackEntries: want %d, got %d", want, got)
	}
}

func TestDebugInfo_noTrace(t *testing.T) {
	if got := throwgrpc.DebugInfo(nil); got != nil {
		t.Errorf("DebugInfo(nil): want nil, got %v", got)
	}
	if got := throwgrpc.DebugInfo(errors.New("plain")); got != nil {
		t.Errorf("DebugInfo(plain): want nil, got %v", got)
	}
}

func TestStatusRoundTrip(t *testing.T) {
	st := throwgrpc.Status(codes.NotFound, tracedErr())
	if want, got := codes.NotFound, st.Code(); want != got {
		t.Errorf("Code: want %v, got %v", want, got)
	}

	msg, points, ok := throwgrpc.FromStatus(st)
	if !ok {
		t.Fatalf("FromStatus: want ok")
	}
	if want, got := "file not found", msg; want != got {
		t.Errorf("message: want %q, got %q", want, got)
	}
	if want, got := []throw.Point{_readPoint, _loadPoint}, points; len(want) != len(got) || want[0] != got[0] || want[1] != got[1] {
		t.Errorf("points: want %v, got %v", want, got)
	}
}

func TestStatus_noTrace(t *testing.T) {
	st := throwgrpc.Status(codes.Internal, errors.New("plain"))
	if want, got := 0, len(st.Details()); want != got {
		t.Errorf("Details: want %d, got %d", want, got)
	}
	if _, _, ok := throwgrpc.FromStatus(st); ok {
		t.Errorf("FromStatus: want !ok")
	}
}

func TestFromStatus_invalid(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
	}{
		{"empty", nil},
		{"no prefix", []string{"10:9 in pkg.f (f.go)"}},
		{"no scope", []string{"at 10:9"}},
		{"no column", []string{"at 10 in pkg.f (f.go)"}},
		{"bad line", []string{"at x:9 in pkg.f (f.go)"}},
		{"bad column", []string{"at 10:y in pkg.f (f.go)"}},
		{"no file", []string{"at 10:9 in pkg.f"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := status.New(codes.Internal, "oops").WithDetails(&errdetails.DebugInfo{
				StackEntries: tt.entries,
				Detail:       "oops",
			})
			if err != nil {
				t.Fatal(err)
			}

			if _, _, ok := throwgrpc.FromStatus(st); ok {
				t.Errorf("FromStatus: want !ok")
			}
		})
	}
}

func TestFromError(t *testing.T) {
	err := throwgrpc.Status(codes.NotFound, tracedErr()).Err()

	traced, ok := throwgrpc.FromError(err)
	if !ok {
		t.Fatalf("FromError: want ok")
	}

	want := "Error: file not found\n" +
		"    at 10:9 in example.com/app.read (app/read.go)\n" +
		"    at 25:10 in example.com/app.(*Loader).Load (app/load dir/load.go)"
	if got := throw.FormatString(traced); want != got {
		t.Errorf("FormatString:\nwant:\n%s\ngot:\n%s", want, got)
	}

	if _, ok := throwgrpc.FromError(errors.New("plain")); ok {
		t.Errorf("FromError(plain): want !ok")
	}
}

func TestUnaryServerInterceptor(t *testing.T) {
	notFound := func(error) codes.Code { return codes.NotFound }
	info := &grpc.UnaryServerInfo{FullMethod: "/app.Loader/Load"}

	tests := []struct {
		name     string
		code     throwgrpc.CodeFunc
		err      error
		wantCode codes.Code
		wantInfo bool
	}{
		{name: "ok"},
		{
			name:     "traced",
			code:     notFound,
			err:      tracedErr(),
			wantCode: codes.NotFound,
			wantInfo: true,
		},
		{
			name:     "default code",
			err:      tracedErr(),
			wantCode: codes.Unknown,
			wantInfo: true,
		},
		{
			name:     "plain",
			code:     notFound,
			err:      errors.New("plain"),
			wantCode: codes.Unknown,
		},
		{
			name:     "status",
			code:     notFound,
			err:      status.Error(codes.PermissionDenied, "denied"),
			wantCode: codes.PermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intercept := throwgrpc.UnaryServerInterceptor(tt.code)
			resp, err := intercept(context.Background(), "req", info, func(context.Context, any) (any, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return "resp", nil
			})

			if tt.err == nil {
				if err != nil || resp != "resp" {
					t.Fatalf("want (resp, nil), got (%v, %v)", resp, err)
				}
				return
			}

			if want, got := tt.wantCode, status.Code(err); want != got {
				t.Errorf("code: want %v, got %v", want, got)
			}
			_, _, gotInfo := throwgrpc.FromStatus(status.Convert(err))
			if want, got := tt.wantInfo, gotInfo; want != got {
				t.Errorf("trace attached: want %v, got %v", want, got)
			}
		})
	}
}
