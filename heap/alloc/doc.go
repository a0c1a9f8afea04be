// Package alloc provides the heap allocation strategies of the kernel heap.
//
// # Overview
//
// Every strategy manages one contiguous, pre-mapped heap region and satisfies
// the same Allocator contract:
//
//   - Init(m, start, size): hand the region to the allocator, exactly once
//   - Alloc(layout): return an address aligned to layout.Align, or ErrOutOfMemory
//   - Free(addr, layout): give back memory with the layout it was allocated with
//
// Allocators are not safe for concurrent use. The heap package serializes all
// calls through a spin lock (see heap/lock).
//
// # Implementations
//
// Bump: monotonic pointer bumping
//
//   - O(1) allocation and deallocation, no per-block bookkeeping
//   - The whole region is reclaimed at once, when the live count drops to zero
//   - A single long-lived allocation pins the entire heap
//
// FixedSizeBlock: segregated free lists backed by a fallback allocator
//
//   - 9 size classes (8 B to 2 KiB), each class size is also its alignment
//   - O(1) pop/push; free-list links are written into the freed blocks
//   - Empty lists and oversized requests are served by the fallback
//   - Freed class blocks are recycled within their class, never returned
//
// LinkedList: first-fit hole list with coalescing (the default fallback)
//
//   - Holes are kept sorted by address, each stores {size, next} in place
//   - Adjacent holes are merged on Free
//
// Dummy: always fails. Free panics.
//
// # Size Classes
//
//	Class 0:    8 bytes
//	Class 1:   16 bytes
//	Class 2:   32 bytes
//	Class 3:   64 bytes
//	Class 4:  128 bytes
//	Class 5:  256 bytes
//	Class 6:  512 bytes
//	Class 7: 1024 bytes
//	Class 8: 2048 bytes
//	(none):  > 2048 bytes, served by the fallback
//
// A request picks the smallest class c with c >= max(size, align).
//
// # Contract Violations
//
// Freeing with a different layout, freeing twice, or freeing before Init are
// not detected.
//
// # Usage Example
//
//	m := mem.AllocFlat(0x6767_6767_0000, 100*1024)
//	a := alloc.NewFixedSizeBlock(nil)
//	a.Init(m, m.Base(), m.Size())
//
//	l := alloc.MustLayout(10, 8)
//	addr, err := a.Alloc(l)
//	if err != nil {
//	    return err
//	}
//	m.Store64(addr, 42)
//	a.Free(addr, l)
package alloc
