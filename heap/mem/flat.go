package mem

import (
	"fmt"

	"github.com/joshuapare/kheap/internal/buf"
	"github.com/joshuapare/kheap/internal/format"
)

// Fault describes an access outside the memory backing a Flat region.
type Fault struct {
	Addr Addr
	Len  int
}

func (f *Fault) Error() string {
	return fmt.Sprintf("mem: access of %d bytes at %s outside backed region", f.Len, f.Addr)
}

// Flat is a contiguous region of memory that starts at a fixed virtual base.
type Flat struct {
	base Addr
	data []byte
}

// NewFlat returns a Flat whose first byte lives at base.
func NewFlat(base Addr, data []byte) *Flat {
	return &Flat{base: base, data: data}
}

// AllocFlat returns a zeroed Flat of size bytes at base, backed by the Go heap.
func AllocFlat(base Addr, size int) *Flat {
	return NewFlat(base, make([]byte, size))
}

// Base returns the address of the first byte.
func (f *Flat) Base() Addr { return f.base }

// Size returns the number of backed bytes.
func (f *Flat) Size() uint64 { return uint64(len(f.data)) }

// Bytes returns the backing slice.
func (f *Flat) Bytes() []byte { return f.data }

func (f *Flat) slice(addr Addr, n int) []byte {
	if !buf.Contains(uint64(f.base), uint64(len(f.data)), uint64(addr), uint64(n)) {
		panic(&Fault{Addr: addr, Len: n})
	}
	off := int(addr - f.base)
	b, _ := buf.Slice(f.data, off, n)
	return b
}

// Load64 reads the little-endian word at addr.
func (f *Flat) Load64(addr Addr) uint64 {
	return format.ReadU64(f.slice(addr, format.WordSize), 0)
}

// Store64 writes a little-endian word at addr.
func (f *Flat) Store64(addr Addr, v uint64) {
	format.PutU64(f.slice(addr, format.WordSize), 0, v)
}

// ReadAt fills p from addr.
func (f *Flat) ReadAt(p []byte, addr Addr) {
	copy(p, f.slice(addr, len(p)))
}

// WriteAt copies p to addr.
func (f *Flat) WriteAt(p []byte, addr Addr) {
	copy(f.slice(addr, len(p)), p)
}

var _ Memory = (*Flat)(nil)
