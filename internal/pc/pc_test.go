package pc

import (
	"path/filepath"
	"strings"
	"testing"
)

//go:noinline
func wrap() uintptr {
	return GetCaller(0)
}

// getCaller stands in for a public function
// that reports the caller of its own caller.
//
//go:noinline
func getCaller() uintptr {
	return GetCaller(1)
}

//go:noinline
func errHelper() uintptr {
	return getCaller()
}

func TestGetCaller(t *testing.T) {
	f, ok := Frame(wrap())
	if !ok {
		t.Fatal("Frame: want ok")
	}

	if want, got := ".TestGetCaller", f.Function; !strings.HasSuffix(got, want) {
		t.Errorf("Function: want suffix %q, got %q", want, got)
	}

	if want, got := "pc_test.go", filepath.Base(f.File); want != got {
		t.Errorf("File: want %q, got %q", want, got)
	}
}

func TestGetCaller_skip(t *testing.T) {
	f, ok := Frame(errHelper())
	if !ok {
		t.Fatal("Frame: want ok")
	}

	if want, got := ".TestGetCaller_skip", f.Function; !strings.HasSuffix(got, want) {
		t.Errorf("Function: want suffix %q, got %q", want, got)
	}
}

func TestFrame_zeroPC(t *testing.T) {
	if _, ok := Frame(0); ok {
		t.Errorf("Frame(0): want !ok")
	}
}

func BenchmarkGetCaller(b *testing.B) {
	var last uintptr
	for i := 0; i < b.N; i++ {
		cur := wrap()
		if cur == 0 {
			panic("invalid PC")
		}
		if last != 0 && cur != last {
			panic("inconsistent results")
		}
		last = cur
	}
}
