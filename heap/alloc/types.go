package alloc

import (
	"fmt"

	"github.com/joshuapare/kheap/heap/mem"
	"github.com/joshuapare/kheap/internal/format"
)

// Layout is the size and alignment of an allocation request.
type Layout struct {
	Size  uint64
	Align uint64
}

// NewLayout validates align and returns the layout.
func NewLayout(size, align uint64) (Layout, error) {
	if !format.IsPowerOfTwo(align) {
		return Layout{}, fmt.Errorf("%w: align=%d", ErrBadLayout, align)
	}
	return Layout{Size: size, Align: align}, nil
}

// MustLayout is like NewLayout but panics on an invalid alignment.
func MustLayout(size, align uint64) Layout {
	l, err := NewLayout(size, align)
	if err != nil {
		panic(err)
	}
	return l
}

// WordLayout is the layout of a single machine word.
var WordLayout = Layout{Size: format.WordSize, Align: format.WordSize}

func (l Layout) String() string {
	return fmt.Sprintf("size=%d align=%d", l.Size, l.Align)
}

// Allocator defines the uniform contract every heap strategy satisfies.
//
// Implementations:
//   - Bump: monotonic cursor, whole-heap reclamation
//   - FixedSizeBlock: per-class free lists over a fallback
//   - LinkedList: first-fit hole list
//   - Dummy: always out of memory
type Allocator interface {
	// Init hands the region [start, start+size) to the allocator. The region
	// must be backed by m. Init must be called exactly once, before Alloc.
	Init(m mem.Memory, start mem.Addr, size uint64)

	// Alloc returns an address aligned to l.Align with at least l.Size usable
	// bytes, or ErrOutOfMemory.
	Alloc(l Layout) (mem.Addr, error)

	// Free releases memory obtained from Alloc. addr and l must be exactly what
	// Alloc was called with and returned; this is not checked.
	Free(addr mem.Addr, l Layout)
}
