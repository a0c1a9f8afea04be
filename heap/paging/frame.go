package paging

import "github.com/joshuapare/kheap/internal/format"

// FrameAllocator hands out unused physical frames.
type FrameAllocator interface {
	// AllocateFrame returns a frame that is not in use, or false when none is left.
	AllocateFrame() (Frame, bool)
}

// RegionKind classifies a physical memory region.
type RegionKind int

const (
	Usable RegionKind = iota
	Reserved
)

func (k RegionKind) String() string {
	if k == Usable {
		return "usable"
	}
	return "reserved"
}

// MemoryRegion is one entry of the memory map reported at boot.
type MemoryRegion struct {
	Start PhysAddr
	End   PhysAddr // exclusive
	Kind  RegionKind
}

// BootInfoFrameAllocator returns the usable frames of a memory map in
// ascending order. Frames are never returned to it.
type BootInfoFrameAllocator struct {
	regions []MemoryRegion

	// region is the index of the region being consumed and next is the
	// start of the next candidate frame inside it.
	region    int
	next      PhysAddr
	allocated int
}

// NewBootInfoFrameAllocator returns an allocator over the usable regions of
// memoryMap. The caller must guarantee that those frames are really unused.
func NewBootInfoFrameAllocator(memoryMap []MemoryRegion) *BootInfoFrameAllocator {
	fa := &BootInfoFrameAllocator{regions: memoryMap}
	fa.seek(0)
	return fa
}

// seek positions the cursor at the first frame of region i.
func (fa *BootInfoFrameAllocator) seek(i int) {
	fa.region = i
	if i < len(fa.regions) {
		fa.next = PhysAddr(format.AlignUp(uint64(fa.regions[i].Start), format.PageSize))
	}
}

// AllocateFrame returns the next usable frame.
func (fa *BootInfoFrameAllocator) AllocateFrame() (Frame, bool) {
	for fa.region < len(fa.regions) {
		r := fa.regions[fa.region]
		if r.Kind == Usable && uint64(fa.next)+format.PageSize <= uint64(r.End) {
			f := Frame{Start: fa.next}
			fa.next += format.PageSize
			fa.allocated++
			return f, true
		}
		fa.seek(fa.region + 1)
	}
	return Frame{}, false
}

// Allocated returns the number of frames handed out so far.
func (fa *BootInfoFrameAllocator) Allocated() int { return fa.allocated }

// Remaining returns the number of usable frames not yet handed out.
func (fa *BootInfoFrameAllocator) Remaining() int {
	n := 0
	for i := fa.region; i < len(fa.regions); i++ {
		r := fa.regions[i]
		if r.Kind != Usable {
			continue
		}
		start := format.AlignUp(uint64(r.Start), format.PageSize)
		if i == fa.region {
			start = uint64(fa.next)
		}
		if uint64(r.End) > start {
			n += int((uint64(r.End) - start) / format.PageSize)
		}
	}
	return n
}

var _ FrameAllocator = (*BootInfoFrameAllocator)(nil)
