package paging

import (
	"fmt"

	"github.com/joshuapare/kheap/internal/buf"
	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/internal/mmap"
)

// PhysMemory is simulated RAM addressed from physical address 0.
type PhysMemory struct {
	data    []byte
	release func() error
}

// NewPhysMemory maps size bytes of zeroed RAM. size is rounded up to a whole
// number of frames. Call Close to unmap it.
func NewPhysMemory(size uint64) (*PhysMemory, error) {
	size = format.PageAlign(size)
	data, release, err := mmap.Anon(int(size))
	if err != nil {
		return nil, fmt.Errorf("paging: allocate physical memory: %w", err)
	}
	return &PhysMemory{data: data, release: release}, nil
}

// Size returns the amount of RAM in bytes.
func (pm *PhysMemory) Size() uint64 { return uint64(len(pm.data)) }

// Close unmaps the RAM.
func (pm *PhysMemory) Close() error {
	return pm.release()
}

// Slice returns the n bytes at p. It panics if the range is not backed.
func (pm *PhysMemory) Slice(p PhysAddr, n int) []byte {
	b, ok := buf.Slice(pm.data, int(p), n)
	if !ok {
		panic(fmt.Sprintf("paging: physical access of %d bytes at %s beyond RAM (%d bytes)", n, p, len(pm.data)))
	}
	return b
}

// FrameBytes returns the 4 KiB backing frame f.
func (pm *PhysMemory) FrameBytes(f Frame) []byte {
	return pm.Slice(f.Start, format.PageSize)
}

// ZeroFrame clears frame f.
func (pm *PhysMemory) ZeroFrame(f Frame) {
	clear(pm.FrameBytes(f))
}

// Load64 reads the little-endian word at physical address p.
func (pm *PhysMemory) Load64(p PhysAddr) uint64 {
	return format.ReadU64(pm.Slice(p, format.WordSize), 0)
}

// Store64 writes a little-endian word at physical address p.
func (pm *PhysMemory) Store64(p PhysAddr, v uint64) {
	format.PutU64(pm.Slice(p, format.WordSize), 0, v)
}
