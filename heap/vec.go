package heap

import (
	"fmt"

	"github.com/joshuapare/kheap/heap/mem"
	"github.com/joshuapare/kheap/internal/format"
)

const minVecCap = 4

// Vec is a growable array of uint64 stored on a Heap. Its capacity doubles
// through Realloc when full.
type Vec struct {
	h   *Heap
	ptr mem.Addr
	len int
	cap int
}

// NewVec returns an empty vector. Nothing is allocated until the first Push.
func NewVec(h *Heap) *Vec {
	return &Vec{h: h}
}

// Len returns the number of elements.
func (v *Vec) Len() int { return v.len }

// Cap returns the number of elements the current block holds.
func (v *Vec) Cap() int { return v.cap }

// Addr returns the address of the backing block, or 0 before the first Push.
func (v *Vec) Addr() mem.Addr { return v.ptr }

func (v *Vec) elem(i int) mem.Addr {
	return v.ptr + mem.Addr(i*format.WordSize)
}

func bytesFor(n int) uint64 { return uint64(n) * format.WordSize }

// Push appends x, growing the backing block if needed.
func (v *Vec) Push(x uint64) error {
	if v.len == v.cap {
		if err := v.grow(); err != nil {
			return err
		}
	}
	v.h.m.Store64(v.elem(v.len), x)
	v.len++
	return nil
}

func (v *Vec) grow() error {
	newCap := max(v.cap*2, minVecCap)
	var (
		ptr mem.Addr
		err error
	)
	if v.ptr == 0 {
		ptr, err = v.h.Alloc(bytesFor(newCap), format.WordSize)
	} else {
		ptr, err = v.h.Realloc(v.ptr, bytesFor(v.cap), format.WordSize, bytesFor(newCap))
	}
	if err != nil {
		return fmt.Errorf("heap: grow vec to %d elements: %w", newCap, err)
	}
	v.ptr, v.cap = ptr, newCap
	return nil
}

// Get returns element i.
func (v *Vec) Get(i int) (uint64, error) {
	if i < 0 || i >= v.len {
		return 0, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, v.len)
	}
	return v.h.m.Load64(v.elem(i)), nil
}

// Set overwrites element i.
func (v *Vec) Set(i int, x uint64) error {
	if i < 0 || i >= v.len {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, v.len)
	}
	v.h.m.Store64(v.elem(i), x)
	return nil
}

// Sum returns the wrapping sum of all elements.
func (v *Vec) Sum() uint64 {
	var s uint64
	for i := range v.len {
		s += v.h.m.Load64(v.elem(i))
	}
	return s
}

// Free returns the backing block to the heap and empties the vector.
func (v *Vec) Free() {
	if v.ptr != 0 {
		v.h.Free(v.ptr, bytesFor(v.cap), format.WordSize)
	}
	v.ptr, v.len, v.cap = 0, 0, 0
}
