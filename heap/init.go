package heap

import (
	"fmt"

	"github.com/joshuapare/kheap/heap/mem"
	"github.com/joshuapare/kheap/heap/paging"
	"github.com/joshuapare/kheap/internal/logger"
)

// MappedMemory is a page table that also gives access to the memory it maps.
type MappedMemory interface {
	paging.Mapper
	mem.Memory
}

// Init maps every page of the heap region writable, taking one frame per page
// from frames, and then builds the heap over it with New.
//
// Mapping stops at the first failure. Pages mapped before it stay mapped and
// no allocator is built.
func Init(m MappedMemory, frames paging.FrameAllocator, cfg Config) (*Heap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pages := paging.PagesCovering(paging.VirtAddr(cfg.Start), cfg.Size)
	logger.Debug("mapping heap",
		"start", pages.Start.Start.String(), "end", pages.End.Start.String(), "pages", pages.Len())

	for page := range pages.All() {
		if err := mapPage(m, frames, page); err != nil {
			logger.Warn("heap mapping aborted", "page", page.Start.String(), "error", err)
			return nil, fmt.Errorf("heap: map heap page %s: %w", page.Start, err)
		}
	}
	return New(m, cfg)
}

func mapPage(m paging.Mapper, frames paging.FrameAllocator, page paging.Page) error {
	frame, ok := frames.AllocateFrame()
	if !ok {
		return &paging.MapError{Kind: paging.FrameAllocationFailed, Page: page}
	}
	flush, err := m.MapTo(page, frame, paging.Present|paging.Writable, frames)
	if err != nil {
		return err
	}
	flush.Flush()
	return nil
}
