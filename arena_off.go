//go:build throw_noarena

package throw

const _blockSize = 4

// newPointBlock allocates the first block directly
// for environments where pooling is unwanted.
func newPointBlock() []Point {
	return make([]Point, 0, _blockSize)
}
