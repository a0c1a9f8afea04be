package alloc

import (
	"github.com/joshuapare/kheap/heap/mem"
	"github.com/joshuapare/kheap/internal/logger"
)

// FixedSizeBlock serves requests up to MaxBlockSize from per-class free lists
// and delegates everything else to a fallback allocator.
//
// Free-list nodes live inside the freed blocks: the first word of a free
// block holds the address of the next free block of the same class (0 ends
// the list). A block on a free list has no other owner; the allocator is the
// only code that reads or writes it until it is popped again.
type FixedSizeBlock struct {
	m mem.Memory

	// listHeads[i] is the most recently freed block of class i, or 0.
	listHeads [NumClasses]mem.Addr

	fallback Allocator

	stats FixedBlockStats
}

// FixedBlockStats holds counters for testing and instrumentation.
type FixedBlockStats struct {
	AllocCalls     int // Total Alloc() calls
	FreeCalls      int // Total Free() calls
	ListHits       int // Allocations served by popping a free list
	FallbackAllocs int // Allocations forwarded to the fallback (refills and oversized)
	FallbackFrees  int // Oversized frees forwarded to the fallback
	OutOfMemory    int // Allocations that failed

	Classes [NumClasses]ClassStats
}

// ClassStats holds per-class counters.
type ClassStats struct {
	Allocs  int // Allocations served in this class
	Frees   int // Blocks pushed onto this class's list
	Refills int // Blocks obtained from the fallback for this class
}

// NewFixedSizeBlock returns an allocator that uses fallback for refills and
// oversized requests. A nil fallback selects a LinkedList.
func NewFixedSizeBlock(fallback Allocator) *FixedSizeBlock {
	if fallback == nil {
		fallback = NewLinkedList()
	}
	return &FixedSizeBlock{fallback: fallback}
}

// Init grants the whole region to the fallback. The free lists start empty.
func (a *FixedSizeBlock) Init(m mem.Memory, start mem.Addr, size uint64) {
	a.m = m
	a.fallback.Init(m, start, size)
}

// Alloc pops the class free list, or asks the fallback for one block of the
// class when the list is empty. Requests larger than MaxBlockSize go to the
// fallback unchanged.
func (a *FixedSizeBlock) Alloc(l Layout) (mem.Addr, error) {
	a.stats.AllocCalls++

	idx, ok := ListIndex(l)
	if !ok {
		return a.fallbackAlloc(l, -1)
	}

	if node := a.listHeads[idx]; node != 0 {
		a.listHeads[idx] = mem.Addr(a.m.Load64(node))
		a.stats.ListHits++
		a.stats.Classes[idx].Allocs++
		return node, nil
	}

	// Only one block per refill; the list fills up as blocks are freed.
	return a.fallbackAlloc(ClassLayout(idx), idx)
}

func (a *FixedSizeBlock) fallbackAlloc(l Layout, idx int) (mem.Addr, error) {
	addr, err := a.fallback.Alloc(l)
	if err != nil {
		a.stats.OutOfMemory++
		if logAlloc {
			logger.Debug("fixed-block: fallback exhausted", "size", l.Size, "align", l.Align, "class", idx)
		}
		return 0, err
	}
	a.stats.FallbackAllocs++
	if idx >= 0 {
		a.stats.Classes[idx].Allocs++
		a.stats.Classes[idx].Refills++
	}
	return addr, nil
}

// Free pushes a class block onto its free list, or returns an oversized block
// to the fallback.
func (a *FixedSizeBlock) Free(addr mem.Addr, l Layout) {
	a.stats.FreeCalls++

	idx, ok := ListIndex(l)
	if !ok {
		a.stats.FallbackFrees++
		a.fallback.Free(addr, l)
		return
	}

	a.m.Store64(addr, uint64(a.listHeads[idx]))
	a.listHeads[idx] = addr
	a.stats.Classes[idx].Frees++
}

// FreeList returns the blocks on the free list of class idx, head first.
func (a *FixedSizeBlock) FreeList(idx int) []mem.Addr {
	var out []mem.Addr
	for node := a.listHeads[idx]; node != 0; node = mem.Addr(a.m.Load64(node)) {
		out = append(out, node)
	}
	return out
}

// FreeListLen returns the number of blocks on the free list of class idx.
func (a *FixedSizeBlock) FreeListLen(idx int) int {
	n := 0
	for node := a.listHeads[idx]; node != 0; node = mem.Addr(a.m.Load64(node)) {
		n++
	}
	return n
}

// Fallback returns the fallback allocator.
func (a *FixedSizeBlock) Fallback() Allocator { return a.fallback }

// Stats returns a snapshot of the counters.
func (a *FixedSizeBlock) Stats() FixedBlockStats { return a.stats }

// Compile-time interface check
var _ Allocator = (*FixedSizeBlock)(nil)
