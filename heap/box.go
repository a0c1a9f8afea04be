package heap

import (
	"github.com/joshuapare/kheap/heap/alloc"
	"github.com/joshuapare/kheap/heap/mem"
)

// Box is a single uint64 stored on a Heap.
type Box struct {
	h    *Heap
	addr mem.Addr
}

// NewBox allocates a word on h and stores v in it.
func NewBox(h *Heap, v uint64) (*Box, error) {
	addr, err := h.alloc(alloc.WordLayout)
	if err != nil {
		return nil, err
	}
	h.m.Store64(addr, v)
	return &Box{h: h, addr: addr}, nil
}

// Addr returns the heap address of the value.
func (b *Box) Addr() mem.Addr { return b.addr }

// Get loads the value.
func (b *Box) Get() uint64 { return b.h.m.Load64(b.addr) }

// Set stores v.
func (b *Box) Set(v uint64) { b.h.m.Store64(b.addr, v) }

// Free returns the word to the heap. The Box must not be used afterwards.
func (b *Box) Free() {
	b.h.free(b.addr, alloc.WordLayout)
	b.addr = 0
}
