//go:build throw_fixed

package throw

// Capacity is the maximum number of points an Error records
// when built with the throw_fixed tag.
//
// Points past Capacity are not recorded.
// The points already recorded are kept as they are
// so the root cause is never lost,
// and the number of points left out is reported by [Error.Dropped]
// and at the end of the rendered trace.
const Capacity = 16

// pointStack is the append-only storage for points.
//
// This version stores points inline in a fixed-size array.
type pointStack struct {
	buf  [Capacity]Point
	n    int
	over int
}

func (s *pointStack) init(p Point) {
	s.buf[0] = p
	s.n = 1
}

func (s *pointStack) push(p Point) {
	if s.n == len(s.buf) {
		s.over++
		return
	}
	s.buf[s.n] = p
	s.n++
}

func (s *pointStack) len() int {
	return s.n
}

func (s *pointStack) all() []Point {
	return s.buf[:s.n]
}

func (s *pointStack) dropped() int {
	return s.over
}

func (s *pointStack) addDropped(n int) {
	s.over += n
}
