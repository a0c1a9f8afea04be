package paging

import (
	"sync/atomic"

	"github.com/joshuapare/kheap/heap/mem"
	"github.com/joshuapare/kheap/internal/format"
)

const (
	entriesPerTable = 512
	indexMask       = entriesPerTable - 1
	entrySize       = format.WordSize

	// addrMask selects the frame address bits of an entry.
	addrMask = 0x000f_ffff_ffff_f000

	tlbSize = 64
)

// Mapper binds virtual pages to physical frames.
type Mapper interface {
	// MapTo maps page to frame with flags. Frames needed for intermediate
	// tables are taken from frames. The returned MapperFlush must be flushed
	// or ignored.
	MapTo(page Page, frame Frame, flags Flags, frames FrameAllocator) (MapperFlush, error)

	// Translate returns the physical address v is mapped to.
	Translate(v VirtAddr) (PhysAddr, bool)
}

// MapperFlush is a pending TLB invalidation for one page.
type MapperFlush struct {
	pt   *OffsetPageTable
	page Page
}

// Page returns the page whose mapping changed.
func (f MapperFlush) Page() Page { return f.page }

// Flush invalidates the page's TLB entry so the new mapping is visible.
func (f MapperFlush) Flush() {
	if f.pt != nil {
		f.pt.invalidate(f.page)
	}
}

// Ignore drops the flush. Stale cached translations may remain.
func (f MapperFlush) Ignore() {}

type tlbEntry struct {
	page  Page
	frame Frame
	flags Flags
}

// OffsetPageTable is a 4-level page table whose tables live in PhysMemory.
//
// MapTo must not run concurrently with itself or with Unmap. Translation
// and memory access are safe from multiple goroutines.
type OffsetPageTable struct {
	phys *PhysMemory
	root Frame

	tlb [tlbSize]atomic.Pointer[tlbEntry]

	tables    int
	tlbHits   atomic.Uint64
	tlbMisses atomic.Uint64
}

// TableStats holds counters of an OffsetPageTable.
type TableStats struct {
	Tables    int // Tables allocated by MapTo, excluding the root
	TLBHits   uint64
	TLBMisses uint64
}

// NewOffsetPageTable uses root as the level-4 table. The root frame must be
// zeroed or hold valid entries.
func NewOffsetPageTable(phys *PhysMemory, root Frame) *OffsetPageTable {
	return &OffsetPageTable{phys: phys, root: root}
}

// Root returns the level-4 table frame.
func (pt *OffsetPageTable) Root() Frame { return pt.root }

// Phys returns the physical memory the tables live in.
func (pt *OffsetPageTable) Phys() *PhysMemory { return pt.phys }

func (pt *OffsetPageTable) entryAddr(table Frame, idx int) PhysAddr {
	return table.Start + PhysAddr(idx*entrySize)
}

func (pt *OffsetPageTable) load(table Frame, idx int) uint64 {
	return pt.phys.Load64(pt.entryAddr(table, idx))
}

func (pt *OffsetPageTable) store(table Frame, idx int, v uint64) {
	pt.phys.Store64(pt.entryAddr(table, idx), v)
}

// MapTo maps page to frame. Missing intermediate tables are allocated from
// frames, zeroed, and linked with the Present, Writable and UserAccessible
// bits of flags.
func (pt *OffsetPageTable) MapTo(page Page, frame Frame, flags Flags, frames FrameAllocator) (MapperFlush, error) {
	idx := page.Indices()
	table := pt.root
	for level := 0; level < 3; level++ {
		e := pt.load(table, idx[level])
		switch {
		case Flags(e).Has(Present) && Flags(e).Has(HugePage):
			return MapperFlush{}, &MapError{Kind: ParentEntryHugePage, Page: page}
		case Flags(e).Has(Present):
			table = Frame{Start: PhysAddr(e & addrMask)}
		default:
			next, ok := frames.AllocateFrame()
			if !ok {
				return MapperFlush{}, &MapError{Kind: FrameAllocationFailed, Page: page}
			}
			pt.phys.ZeroFrame(next)
			pt.store(table, idx[level], uint64(next.Start)|uint64(flags&parentFlagMask|Present))
			pt.tables++
			table = next
		}
	}

	if e := pt.load(table, idx[3]); Flags(e).Has(Present) {
		return MapperFlush{}, &MapError{
			Kind:  PageAlreadyMapped,
			Page:  page,
			Frame: Frame{Start: PhysAddr(e & addrMask)},
		}
	}
	pt.store(table, idx[3], uint64(frame.Start)&addrMask|uint64(flags&flagMask|Present))
	return MapperFlush{pt: pt, page: page}, nil
}

// Unmap clears the leaf entry of page and returns the frame it mapped.
// Intermediate tables are kept.
func (pt *OffsetPageTable) Unmap(page Page) (Frame, MapperFlush, error) {
	table, ok := pt.leafTable(page)
	idx := page.Indices()[3]
	if !ok {
		return Frame{}, MapperFlush{}, ErrPageNotMapped
	}
	e := pt.load(table, idx)
	if !Flags(e).Has(Present) {
		return Frame{}, MapperFlush{}, ErrPageNotMapped
	}
	pt.store(table, idx, 0)
	return Frame{Start: PhysAddr(e & addrMask)}, MapperFlush{pt: pt, page: page}, nil
}

// leafTable walks to the level-1 table covering page.
func (pt *OffsetPageTable) leafTable(page Page) (Frame, bool) {
	idx := page.Indices()
	table := pt.root
	for level := 0; level < 3; level++ {
		e := pt.load(table, idx[level])
		if !Flags(e).Has(Present) || Flags(e).Has(HugePage) {
			return Frame{}, false
		}
		table = Frame{Start: PhysAddr(e & addrMask)}
	}
	return table, true
}

// TranslatePage returns the frame and flags page is mapped with, consulting
// the TLB first.
func (pt *OffsetPageTable) TranslatePage(page Page) (Frame, Flags, bool) {
	slot := &pt.tlb[page.Number()%tlbSize]
	if e := slot.Load(); e != nil && e.page == page {
		pt.tlbHits.Add(1)
		return e.frame, e.flags, true
	}
	pt.tlbMisses.Add(1)

	table, ok := pt.leafTable(page)
	if !ok {
		return Frame{}, 0, false
	}
	e := pt.load(table, page.Indices()[3])
	if !Flags(e).Has(Present) {
		return Frame{}, 0, false
	}
	entry := &tlbEntry{page: page, frame: Frame{Start: PhysAddr(e & addrMask)}, flags: Flags(e) & flagMask}
	slot.Store(entry)
	return entry.frame, entry.flags, true
}

// Translate returns the physical address v is mapped to.
func (pt *OffsetPageTable) Translate(v VirtAddr) (PhysAddr, bool) {
	f, _, ok := pt.TranslatePage(PageContaining(v))
	if !ok {
		return 0, false
	}
	return f.Start + PhysAddr(v.PageOffset()), true
}

func (pt *OffsetPageTable) invalidate(page Page) {
	slot := &pt.tlb[page.Number()%tlbSize]
	if e := slot.Load(); e != nil && e.page == page {
		slot.CompareAndSwap(e, nil)
	}
}

// Stats returns a snapshot of the counters.
func (pt *OffsetPageTable) Stats() TableStats {
	return TableStats{
		Tables:    pt.tables,
		TLBHits:   pt.tlbHits.Load(),
		TLBMisses: pt.tlbMisses.Load(),
	}
}

// access calls fn for each page-sized piece of [addr, addr+n) with the
// backing physical bytes.
func (pt *OffsetPageTable) access(addr mem.Addr, n int, write bool, fn func(b []byte, done int)) {
	done := 0
	for done < n {
		v := VirtAddr(uint64(addr) + uint64(done))
		f, flags, ok := pt.TranslatePage(PageContaining(v))
		if !ok || (write && !flags.Has(Writable)) {
			panic(&PageFault{Addr: v, Write: write})
		}
		off := v.PageOffset()
		step := min(n-done, int(format.PageSize-off))
		fn(pt.phys.Slice(f.Start+PhysAddr(off), step), done)
		done += step
	}
}

// Load64 reads the word at virtual address addr.
func (pt *OffsetPageTable) Load64(addr mem.Addr) uint64 {
	var b [format.WordSize]byte
	pt.ReadAt(b[:], addr)
	return format.ReadU64(b[:], 0)
}

// Store64 writes a word at virtual address addr.
func (pt *OffsetPageTable) Store64(addr mem.Addr, v uint64) {
	var b [format.WordSize]byte
	format.PutU64(b[:], 0, v)
	pt.WriteAt(b[:], addr)
}

// ReadAt fills p from virtual address addr.
func (pt *OffsetPageTable) ReadAt(p []byte, addr mem.Addr) {
	pt.access(addr, len(p), false, func(b []byte, done int) {
		copy(p[done:], b)
	})
}

// WriteAt copies p to virtual address addr.
func (pt *OffsetPageTable) WriteAt(p []byte, addr mem.Addr) {
	pt.access(addr, len(p), true, func(b []byte, done int) {
		copy(b, p[done:])
	})
}

var (
	_ Mapper     = (*OffsetPageTable)(nil)
	_ mem.Memory = (*OffsetPageTable)(nil)
)
