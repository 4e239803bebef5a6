//go:build !throw_noarena

package throw

import (
	"sync"
)

// _blockSize is the number of points held by the first block
// of an Error's storage. Most errors don't travel further.
const _blockSize = 4

// _slabBlocks is the number of blocks carved out of one allocation.
const _slabBlocks = 256

var _blocks = blockArena{blocks: _slabBlocks}

// newPointBlock returns an empty slice with room for _blockSize points.
func newPointBlock() []Point {
	return _blocks.take()
}

// blockArena hands out point blocks
// carved from larger slabs, saving an allocation per Error.
// Slabs are shared through a sync.Pool so concurrent callers
// don't contend on a lock.
type blockArena struct {
	blocks int // blocks per slab
	pool   sync.Pool
}

func (a *blockArena) take() []Point {
	for {
		slab, ok := a.pool.Get().(*pointSlab)
		if !ok {
			slab = newPointSlab(a.blocks)
		}

		if b, ok := slab.take(); ok {
			a.pool.Put(slab)
			return b
		}
	}
}

// pointSlab is a single allocation of points
// split into blocks of _blockSize.
// Blocks are taken in order and never returned.
type pointSlab struct {
	buf []Point
	off int // offset of the next block in buf
}

func newPointSlab(blocks int) *pointSlab {
	return &pointSlab{buf: make([]Point, blocks*_blockSize)}
}

// take returns the next block, capped so that appending
// past _blockSize points moves to a new array.
func (s *pointSlab) take() ([]Point, bool) {
	if s.off+_blockSize > len(s.buf) {
		return nil, false
	}
	b := s.buf[s.off : s.off : s.off+_blockSize]
	s.off += _blockSize
	return b, true
}
