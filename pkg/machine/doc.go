// Package machine assembles a simulated x86_64 boot environment for the heap:
// physical RAM, a boot memory map with the low megabyte reserved, a frame
// allocator over the usable frames, and an empty 4-level page table.
//
// Example:
//
//	m, err := machine.New(machine.DefaultConfig)
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//
//	h, err := m.BootHeap(heap.DefaultConfig)
package machine
