//go:build !throw_fixed

package throw

// pointStack is the append-only storage for points.
//
// This version grows without bound.
// The first points are stored in a block from newPointBlock;
// append takes over once the block is full.
type pointStack struct {
	points []Point
	over   int
}

func (s *pointStack) init(p Point) {
	s.points = append(newPointBlock(), p)
}

func (s *pointStack) push(p Point) {
	s.points = append(s.points, p)
}

func (s *pointStack) len() int {
	return len(s.points)
}

func (s *pointStack) all() []Point {
	return s.points
}

func (s *pointStack) dropped() int {
	return s.over
}

// addDropped accounts for points dropped elsewhere,
// e.g. by a build with fixed storage that serialized the error.
func (s *pointStack) addDropped(n int) {
	s.over += n
}
