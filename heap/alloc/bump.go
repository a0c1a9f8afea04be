package alloc

import (
	"github.com/joshuapare/kheap/heap/mem"
	"github.com/joshuapare/kheap/internal/buf"
	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/internal/logger"
)

// Bump is a monotonic pointer-bumping allocator.
//
// Key characteristics:
//   - O(1) allocation: align the cursor, check the end, advance
//   - O(1) deallocation: decrement the live count
//   - Zero per-block overhead: no free lists, no headers
//   - The cursor resets to the heap start only when the live count reaches
//     zero, so freed bytes stay unusable while any allocation is outstanding
type Bump struct {
	heapStart mem.Addr
	heapEnd   mem.Addr

	// next is the cursor: the first byte not yet handed out.
	// Invariant: heapStart <= next <= heapEnd.
	next mem.Addr

	// live is the number of outstanding allocations.
	live uint64

	stats bumpCounters
}

type bumpCounters struct {
	allocCalls  int
	freeCalls   int
	resets      int
	outOfMemory int
}

// BumpStats is a snapshot of a Bump allocator.
type BumpStats struct {
	Start       mem.Addr
	End         mem.Addr
	Next        mem.Addr
	Live        uint64
	Used        uint64 // Bytes between start and the cursor, padding included
	Remaining   uint64 // Bytes between the cursor and the end
	AllocCalls  int
	FreeCalls   int
	Resets      int // Times the whole region was reclaimed
	OutOfMemory int
}

// NewBump returns an empty Bump allocator. Call Init before use.
func NewBump() *Bump {
	return &Bump{}
}

// Init sets the region to [start, start+size) and places the cursor at start.
func (b *Bump) Init(_ mem.Memory, start mem.Addr, size uint64) {
	b.heapStart = start
	b.heapEnd = start + mem.Addr(size)
	b.next = start
	b.live = 0
}

// Alloc hands out the next aligned range after the cursor.
func (b *Bump) Alloc(l Layout) (mem.Addr, error) {
	b.stats.allocCalls++

	aligned := format.AlignUp(uint64(b.next), l.Align)
	end, ok := buf.AddU64(aligned, l.Size)
	if aligned < uint64(b.next) || !ok || end > uint64(b.heapEnd) {
		b.stats.outOfMemory++
		if logAlloc {
			logger.Debug("bump: out of memory",
				"size", l.Size, "align", l.Align, "next", b.next, "end", b.heapEnd)
		}
		return 0, ErrOutOfMemory
	}

	b.next = mem.Addr(end)
	b.live++
	return mem.Addr(aligned), nil
}

// Free decrements the live count and reclaims the whole region once it
// reaches zero. Free with no live allocations is a contract violation and is
// ignored.
func (b *Bump) Free(_ mem.Addr, _ Layout) {
	b.stats.freeCalls++
	if b.live == 0 {
		return
	}
	b.live--
	if b.live == 0 {
		b.next = b.heapStart
		b.stats.resets++
	}
}

// Live returns the number of outstanding allocations.
func (b *Bump) Live() uint64 { return b.live }

// Stats returns a snapshot of the allocator state.
func (b *Bump) Stats() BumpStats {
	return BumpStats{
		Start:       b.heapStart,
		End:         b.heapEnd,
		Next:        b.next,
		Live:        b.live,
		Used:        uint64(b.next - b.heapStart),
		Remaining:   uint64(b.heapEnd - b.next),
		AllocCalls:  b.stats.allocCalls,
		FreeCalls:   b.stats.freeCalls,
		Resets:      b.stats.resets,
		OutOfMemory: b.stats.outOfMemory,
	}
}

// Compile-time interface check
var _ Allocator = (*Bump)(nil)
