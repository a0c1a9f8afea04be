package alloc

import "github.com/joshuapare/kheap/heap/mem"

// Dummy is an allocator that owns no memory. Alloc always fails and Free
// panics, since nothing can ever have been allocated from it.
type Dummy struct{}

// Init ignores the region.
func (Dummy) Init(mem.Memory, mem.Addr, uint64) {}

// Alloc always returns ErrOutOfMemory.
func (Dummy) Alloc(Layout) (mem.Addr, error) {
	return 0, ErrOutOfMemory
}

// Free panics.
func (Dummy) Free(mem.Addr, Layout) {
	panic("alloc: dealloc should never be called")
}

var _ Allocator = Dummy{}
