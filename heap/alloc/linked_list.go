package alloc

import (
	"github.com/joshuapare/kheap/heap/mem"
	"github.com/joshuapare/kheap/internal/buf"
	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/internal/logger"
)

const (
	// holeSize is the in-memory size of a hole header: {size, next}.
	holeSize = 2 * format.WordSize

	holeSizeOff = 0
	holeNextOff = format.WordSize
)

// LinkedList is a general-purpose first-fit allocator.
//
// Free memory is a singly linked list of holes sorted by address. Each hole
// stores its own header at its start address:
//
//	+0  size of the hole in bytes (including the header)
//	+8  address of the next hole, 0 for none
//
// Requests are rounded up to a multiple of 8 bytes with a minimum of one hole
// header, so every freed block can become a hole again. Free merges the
// block with adjacent holes.
type LinkedList struct {
	m     mem.Memory
	start mem.Addr
	size  uint64

	// head is the lowest-addressed hole, or 0.
	head mem.Addr

	used uint64

	allocCalls  int
	freeCalls   int
	outOfMemory int
}

// Hole is a free range tracked by a LinkedList.
type Hole struct {
	Addr mem.Addr
	Size uint64
}

// LinkedListStats is a snapshot of a LinkedList.
type LinkedListStats struct {
	Start       mem.Addr
	Size        uint64
	Used        uint64 // Bytes handed out, after size rounding
	Free        uint64 // Bytes in holes
	Holes       int
	LargestHole uint64
	AllocCalls  int
	FreeCalls   int
	OutOfMemory int
}

// NewLinkedList returns an empty LinkedList. Call Init before use.
func NewLinkedList() *LinkedList {
	return &LinkedList{}
}

// Init makes [start, start+size) one hole. The start is rounded up to 8 bytes
// and the size trimmed to a multiple of 8. A region too small to hold a hole
// header yields an allocator that is always out of memory.
func (ll *LinkedList) Init(m mem.Memory, start mem.Addr, size uint64) {
	ll.m = m
	aligned := mem.Addr(format.AlignWord(uint64(start)))
	skew := uint64(aligned - start)
	if skew > size {
		size = 0
	} else {
		size = format.AlignDown(size-skew, format.WordSize)
	}
	ll.start = aligned
	ll.size = size
	ll.head = 0
	ll.used = 0
	if size >= holeSize {
		ll.writeHole(aligned, size, 0)
		ll.head = aligned
	}
}

// holeLayout adjusts a request so the block can later be stored as a hole.
func holeLayout(l Layout) (size, align uint64) {
	return max(format.AlignWord(l.Size), holeSize), max(l.Align, format.WordSize)
}

// Alloc returns the first hole position that can hold the request.
func (ll *LinkedList) Alloc(l Layout) (mem.Addr, error) {
	ll.allocCalls++
	size, align := holeLayout(l)

	var prev mem.Addr
	for cur := ll.head; cur != 0; {
		hsize, next := ll.readHole(cur)
		hend := uint64(cur) + hsize

		aligned := format.AlignUp(uint64(cur), align)
		if aligned != uint64(cur) && aligned-uint64(cur) < holeSize {
			// Front padding must itself be a valid hole.
			aligned = format.AlignUp(uint64(cur)+holeSize, align)
		}

		if end, ok := buf.AddU64(aligned, size); ok && aligned >= uint64(cur) && end <= hend {
			back := hend - end
			if back == 0 || back >= holeSize {
				ll.carve(prev, cur, next, mem.Addr(aligned), mem.Addr(end), back)
				ll.used += size
				return mem.Addr(aligned), nil
			}
		}

		prev = cur
		cur = next
	}

	ll.outOfMemory++
	if logAlloc {
		logger.Debug("linked-list: no hole fits", "size", size, "align", align, "used", ll.used)
	}
	return 0, ErrOutOfMemory
}

// carve replaces hole cur with its front padding and back remainder.
func (ll *LinkedList) carve(prev, cur, next, allocStart, allocEnd mem.Addr, back uint64) {
	link := next
	if back > 0 {
		ll.writeHole(allocEnd, back, link)
		link = allocEnd
	}
	if front := uint64(allocStart - cur); front > 0 {
		ll.writeHole(cur, front, link)
		link = cur
	}
	ll.setNext(prev, link)
}

// Free inserts the block as a hole and merges it with adjacent holes.
func (ll *LinkedList) Free(addr mem.Addr, l Layout) {
	ll.freeCalls++
	size, _ := holeLayout(l)
	ll.used -= size

	var prev mem.Addr
	cur := ll.head
	for cur != 0 && cur < addr {
		_, next := ll.readHole(cur)
		prev = cur
		cur = next
	}

	// Merge with the following hole.
	next := cur
	if cur != 0 && addr+mem.Addr(size) == cur {
		csize, cnext := ll.readHole(cur)
		size += csize
		next = cnext
	}

	// Merge with the preceding hole.
	if prev != 0 {
		psize, _ := ll.readHole(prev)
		if prev+mem.Addr(psize) == addr {
			ll.writeHole(prev, psize+size, next)
			return
		}
	}

	ll.writeHole(addr, size, next)
	ll.setNext(prev, addr)
}

func (ll *LinkedList) readHole(at mem.Addr) (size uint64, next mem.Addr) {
	return ll.m.Load64(at + holeSizeOff), mem.Addr(ll.m.Load64(at + holeNextOff))
}

func (ll *LinkedList) writeHole(at mem.Addr, size uint64, next mem.Addr) {
	ll.m.Store64(at+holeSizeOff, size)
	ll.m.Store64(at+holeNextOff, uint64(next))
}

// setNext links prev to hole; prev == 0 updates the list head.
func (ll *LinkedList) setNext(prev, hole mem.Addr) {
	if prev == 0 {
		ll.head = hole
		return
	}
	ll.m.Store64(prev+holeNextOff, uint64(hole))
}

// Holes returns the current holes in address order.
func (ll *LinkedList) Holes() []Hole {
	var out []Hole
	for cur := ll.head; cur != 0; {
		size, next := ll.readHole(cur)
		out = append(out, Hole{Addr: cur, Size: size})
		cur = next
	}
	return out
}

// Stats returns a snapshot of the allocator state.
func (ll *LinkedList) Stats() LinkedListStats {
	s := LinkedListStats{
		Start:       ll.start,
		Size:        ll.size,
		Used:        ll.used,
		AllocCalls:  ll.allocCalls,
		FreeCalls:   ll.freeCalls,
		OutOfMemory: ll.outOfMemory,
	}
	for _, h := range ll.Holes() {
		s.Holes++
		s.Free += h.Size
		s.LargestHole = max(s.LargestHole, h.Size)
	}
	return s
}

// Compile-time interface check
var _ Allocator = (*LinkedList)(nil)
