package alloc

import "github.com/joshuapare/kheap/internal/format"

// BlockSizes are the size classes of FixedSizeBlock, ascending. Each is a
// power of two and doubles as the alignment of blocks in its class.
var BlockSizes = [NumClasses]uint64{8, 16, 32, 64, 128, 256, 512, 1024, 2048}

const (
	// NumClasses is the number of size classes.
	NumClasses = 9

	// minBlockSize is BlockSizes[0]. A free block must be able to hold its
	// link word.
	minBlockSize = 8

	// MaxBlockSize is the largest class. Larger requests go to the fallback.
	MaxBlockSize = 2048
)

// A negative array length fails compilation if a link outgrows the smallest class.
var _ [minBlockSize - format.WordSize]struct{}

// ListIndex returns the index of the smallest class that fits both the size
// and the alignment of l, or false if l exceeds MaxBlockSize.
//
// Because class sizes are powers of two and equal their alignment, a class
// that covers max(size, align) satisfies both constraints.
func ListIndex(l Layout) (int, bool) {
	required := max(l.Size, l.Align)
	for i, s := range BlockSizes {
		if s >= required {
			return i, true
		}
	}
	return 0, false
}

// ClassLayout returns the layout used to request one block of class idx
// from the fallback.
func ClassLayout(idx int) Layout {
	s := BlockSizes[idx]
	return Layout{Size: s, Align: s}
}
