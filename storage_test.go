//go:build !throw_fixed

package throw

import "testing"

func TestPointStack_grows(t *testing.T) {
	var s pointStack
	s.init(Point{Line: 1})
	for i := 2; i <= 3*_blockSize; i++ {
		s.push(Point{Line: i})
	}

	if want, got := 3*_blockSize, s.len(); want != got {
		t.Fatalf("len: want %d, got %d", want, got)
	}
	for i, p := range s.all() {
		if want, got := i+1, p.Line; want != got {
			t.Errorf("point %d: want line %d, got %d", i, want, got)
		}
	}
	if want, got := 0, s.dropped(); want != got {
		t.Errorf("dropped: want %d, got %d", want, got)
	}
}

// Errors raised one after another must not share storage.
func TestPointStack_independent(t *testing.T) {
	a := RaiseAt(Point{Line: 1}, "a")
	b := RaiseAt(Point{Line: 2}, "b")
	for i := 0; i < _blockSize; i++ {
		UpAt(Point{Line: 10 + i}, a)
	}

	if want, got := 2, b.Points()[0].Line; want != got {
		t.Errorf("b: want first line %d, got %d", want, got)
	}
	if want, got := 1, b.Len(); want != got {
		t.Errorf("b: want %d points, got %d", want, got)
	}
}
