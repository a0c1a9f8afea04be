// Package heap wires a heap allocator strategy to a virtual memory region.
//
// Init maps the region page by page through a paging.Mapper, then builds the
// configured allocator over it and wraps it in a spin lock. New does the same
// over memory that is already backed, which is what hosted tools and tests
// use.
//
// Usage:
//
//	h, err := heap.Init(pageTable, frames, heap.DefaultConfig)
//	if err != nil {
//	    return err
//	}
//	addr, err := h.Alloc(64, 8)
//	...
//	h.Free(addr, 64, 8)
//
// Box and Vec are small typed helpers on top of a Heap.
package heap
