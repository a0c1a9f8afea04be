// Package paging models the page-mapping boundary of the kernel heap.
//
// The heap initializer depends on two capabilities: a FrameAllocator that
// hands out 4 KiB physical frames and a Mapper that binds a virtual Page to
// a Frame with permission Flags. Both are interfaces so a real kernel can plug
// in its own; this package also ships a hosted implementation:
//
//   - PhysMemory: RAM addressed from physical 0, backed by an anonymous mmap
//   - BootInfoFrameAllocator: hands out usable frames from a memory map
//   - OffsetPageTable: x86_64-style 4-level page tables stored in PhysMemory
//
// OffsetPageTable also implements mem.Memory, translating every access
// through the tables (with a small direct-mapped TLB), so heap code runs on
// top of real mappings. Touching an unmapped address panics with *PageFault.
//
// # Entry Format
//
//	bits  0-11  flags (Present, Writable, ...)
//	bits 12-51  physical frame address
//	bit     63  NoExecute
//
// # TLB
//
// Translations are cached per page. MapTo and Unmap return a MapperFlush
// that must be flushed for the change to become visible to an address that
// was already cached, as with invlpg on real hardware.
package paging
