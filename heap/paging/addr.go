package paging

import (
	"fmt"
	"iter"

	"github.com/joshuapare/kheap/internal/format"
)

// VirtAddr is a 64-bit virtual address.
type VirtAddr uint64

// PhysAddr is a physical address.
type PhysAddr uint64

func (v VirtAddr) String() string { return fmt.Sprintf("0x%x", uint64(v)) }
func (p PhysAddr) String() string { return fmt.Sprintf("0x%x", uint64(p)) }

// IsCanonical reports whether bits 48-63 are a sign extension of bit 47.
func (v VirtAddr) IsCanonical() bool {
	top := uint64(v) >> 47
	return top == 0 || top == 0x1ffff
}

// PageOffset returns the offset of v within its page.
func (v VirtAddr) PageOffset() uint64 { return uint64(v) & format.PageMask }

// Page is a 4 KiB virtual page.
type Page struct {
	Start VirtAddr
}

// PageContaining returns the page that contains v.
func PageContaining(v VirtAddr) Page {
	return Page{Start: VirtAddr(format.AlignDown(uint64(v), format.PageSize))}
}

func (p Page) String() string { return fmt.Sprintf("Page[%s]", p.Start) }

// Number returns the page number (address >> 12).
func (p Page) Number() uint64 { return uint64(p.Start) >> format.PageShift }

// Indices returns the table index of p at levels 4, 3, 2 and 1.
func (p Page) Indices() [4]int {
	n := p.Number()
	return [4]int{
		int(n>>27) & indexMask,
		int(n>>18) & indexMask,
		int(n>>9) & indexMask,
		int(n) & indexMask,
	}
}

// PageRange is an inclusive range of pages.
type PageRange struct {
	Start Page
	End   Page
}

// PageRangeInclusive returns the pages from start through end.
func PageRangeInclusive(start, end Page) PageRange {
	return PageRange{Start: start, End: end}
}

// PagesCovering returns the pages that contain any byte of [start, start+size).
// size must be nonzero.
func PagesCovering(start VirtAddr, size uint64) PageRange {
	return PageRangeInclusive(PageContaining(start), PageContaining(start+VirtAddr(size)-1))
}

// Len returns the number of pages in r.
func (r PageRange) Len() int {
	if r.End.Start < r.Start.Start {
		return 0
	}
	return int(r.End.Number()-r.Start.Number()) + 1
}

// All yields every page in r in ascending order.
func (r PageRange) All() iter.Seq[Page] {
	return func(yield func(Page) bool) {
		if r.End.Start < r.Start.Start {
			return
		}
		for p := r.Start; ; p.Start += format.PageSize {
			if !yield(p) || p == r.End {
				return
			}
		}
	}
}

// Frame is a 4 KiB physical frame.
type Frame struct {
	Start PhysAddr
}

// FrameContaining returns the frame that contains p.
func FrameContaining(p PhysAddr) Frame {
	return Frame{Start: PhysAddr(format.AlignDown(uint64(p), format.PageSize))}
}

func (f Frame) String() string { return fmt.Sprintf("Frame[%s]", f.Start) }
