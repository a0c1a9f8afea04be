package machine

import (
	"errors"
	"fmt"

	"github.com/joshuapare/kheap/heap"
	"github.com/joshuapare/kheap/heap/paging"
	"github.com/joshuapare/kheap/internal/format"
)

// ErrInvalidConfig indicates RAM and reserved sizes that leave no room for a
// page table.
var ErrInvalidConfig = errors.New("machine: invalid config")

// Config sizes the simulated machine.
type Config struct {
	RAM      uint64 // bytes of physical memory, rounded up to whole frames
	Reserved uint64 // bytes at physical 0 the frame allocator never hands out
}

// DefaultConfig is 4 MiB of RAM with the first 1 MiB reserved, which holds the
// default heap many times over.
var DefaultConfig = Config{
	RAM:      4 << 20,
	Reserved: 1 << 20,
}

// Machine is the simulated hardware the heap is booted on.
type Machine struct {
	cfg       Config
	phys      *paging.PhysMemory
	memoryMap []paging.MemoryRegion
	frames    *paging.BootInfoFrameAllocator
	pt        *paging.OffsetPageTable
}

// Stats describes frame usage of a Machine.
type Stats struct {
	RAM        uint64
	FramesUsed int // frames handed out, root table included
	FramesFree int
	Tables     int // page tables created below the root
	TLBHits    uint64
	TLBMisses  uint64
}

// New allocates RAM, builds the memory map and sets up an empty level-4
// table in the first usable frame.
func New(cfg Config) (*Machine, error) {
	cfg.RAM = format.PageAlign(cfg.RAM)
	cfg.Reserved = format.PageAlign(cfg.Reserved)
	if cfg.RAM <= cfg.Reserved {
		return nil, fmt.Errorf("%w: %d bytes of RAM with %d reserved", ErrInvalidConfig, cfg.RAM, cfg.Reserved)
	}

	phys, err := paging.NewPhysMemory(cfg.RAM)
	if err != nil {
		return nil, err
	}

	var memoryMap []paging.MemoryRegion
	if cfg.Reserved > 0 {
		memoryMap = append(memoryMap, paging.MemoryRegion{Start: 0, End: paging.PhysAddr(cfg.Reserved), Kind: paging.Reserved})
	}
	memoryMap = append(memoryMap, paging.MemoryRegion{
		Start: paging.PhysAddr(cfg.Reserved),
		End:   paging.PhysAddr(cfg.RAM),
		Kind:  paging.Usable,
	})

	frames := paging.NewBootInfoFrameAllocator(memoryMap)
	root, ok := frames.AllocateFrame()
	if !ok {
		_ = phys.Close()
		return nil, fmt.Errorf("machine: no frame for the level-4 table: %w", paging.ErrFrameAllocationFailed)
	}
	phys.ZeroFrame(root)

	return &Machine{
		cfg:       cfg,
		phys:      phys,
		memoryMap: memoryMap,
		frames:    frames,
		pt:        paging.NewOffsetPageTable(phys, root),
	}, nil
}

// BootHeap maps and initializes a heap as the kernel does during startup.
func (m *Machine) BootHeap(cfg heap.Config) (*heap.Heap, error) {
	return heap.Init(m.pt, m.frames, cfg)
}

// Config returns the page-aligned configuration.
func (m *Machine) Config() Config { return m.cfg }

// MemoryMap returns the regions reported at boot.
func (m *Machine) MemoryMap() []paging.MemoryRegion { return m.memoryMap }

// PageTable returns the active page table.
func (m *Machine) PageTable() *paging.OffsetPageTable { return m.pt }

// Frames returns the frame allocator.
func (m *Machine) Frames() *paging.BootInfoFrameAllocator { return m.frames }

// Stats returns frame and page table counters.
func (m *Machine) Stats() Stats {
	ts := m.pt.Stats()
	return Stats{
		RAM:        m.cfg.RAM,
		FramesUsed: m.frames.Allocated(),
		FramesFree: m.frames.Remaining(),
		Tables:     ts.Tables,
		TLBHits:    ts.TLBHits,
		TLBMisses:  ts.TLBMisses,
	}
}

// Close releases the RAM. Heaps booted on m must not be used afterwards.
func (m *Machine) Close() error {
	return m.phys.Close()
}
