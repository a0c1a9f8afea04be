package heap

import (
	"sync/atomic"

	"github.com/joshuapare/kheap/heap/alloc"
	"github.com/joshuapare/kheap/heap/lock"
	"github.com/joshuapare/kheap/heap/mem"
	"github.com/joshuapare/kheap/internal/logger"
)

// Heap is a locked allocator over a backed memory region. It is safe for
// concurrent use.
type Heap struct {
	cfg   Config
	m     mem.Memory
	inner *lock.Locked[alloc.Allocator]

	allocs   atomic.Uint64
	frees    atomic.Uint64
	failures atomic.Uint64
	inUse    atomic.Int64
}

// Stats summarizes calls made through a Heap.
type Stats struct {
	Strategy Strategy
	Start    mem.Addr
	Size     uint64
	Allocs   uint64 // successful allocations
	Frees    uint64
	Failures uint64 // allocations that returned an error
	InUse    uint64 // requested bytes currently allocated
}

// New builds the allocator chosen by cfg.Strategy over [cfg.Start,
// cfg.Start+cfg.Size), which must already be backed by m.
func New(m mem.Memory, cfg Config) (*Heap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a, err := cfg.Strategy.newAllocator()
	if err != nil {
		return nil, err
	}
	a.Init(m, cfg.Start, cfg.Size)
	logger.Info("heap initialized",
		"strategy", cfg.Strategy.String(), "start", cfg.Start.String(), "size", cfg.Size)
	return &Heap{cfg: cfg, m: m, inner: lock.New(a)}, nil
}

// Config returns the configuration the heap was built with.
func (h *Heap) Config() Config { return h.cfg }

// Memory returns the memory backing the heap, for reading and writing
// allocated payloads.
func (h *Heap) Memory() mem.Memory { return h.m }

// Alloc returns size bytes aligned to align. align must be a power of two.
func (h *Heap) Alloc(size, align uint64) (mem.Addr, error) {
	l, err := alloc.NewLayout(size, align)
	if err != nil {
		return 0, err
	}
	return h.alloc(l)
}

func (h *Heap) alloc(l alloc.Layout) (mem.Addr, error) {
	var addr mem.Addr
	var err error
	h.inner.Do(func(a *alloc.Allocator) {
		addr, err = (*a).Alloc(l)
	})
	if err != nil {
		h.failures.Add(1)
		return 0, err
	}
	h.allocs.Add(1)
	h.inUse.Add(int64(l.Size))
	return addr, nil
}

// Free releases addr, which must have been returned by Alloc with the same
// size and align.
func (h *Heap) Free(addr mem.Addr, size, align uint64) {
	h.free(addr, alloc.Layout{Size: size, Align: align})
}

func (h *Heap) free(addr mem.Addr, l alloc.Layout) {
	h.inner.Do(func(a *alloc.Allocator) {
		(*a).Free(addr, l)
	})
	h.frees.Add(1)
	h.inUse.Add(-int64(l.Size))
}

// AllocZeroed is Alloc followed by clearing the returned block.
func (h *Heap) AllocZeroed(size, align uint64) (mem.Addr, error) {
	addr, err := h.Alloc(size, align)
	if err != nil {
		return 0, err
	}
	mem.Zero(h.m, addr, size)
	return addr, nil
}

// Realloc moves the block at addr to a new block of newSize bytes with the
// same alignment. The first min(size, newSize) bytes are preserved. On error
// the old block is left untouched.
func (h *Heap) Realloc(addr mem.Addr, size, align, newSize uint64) (mem.Addr, error) {
	next, err := h.Alloc(newSize, align)
	if err != nil {
		return 0, err
	}
	mem.Copy(h.m, next, addr, min(size, newSize))
	h.Free(addr, size, align)
	return next, nil
}

// WithAllocator runs fn with exclusive access to the underlying allocator.
// fn must not call back into h.
func (h *Heap) WithAllocator(fn func(a alloc.Allocator)) {
	h.inner.Do(func(a *alloc.Allocator) { fn(*a) })
}

// Stats returns a snapshot of the heap counters.
func (h *Heap) Stats() Stats {
	return Stats{
		Strategy: h.cfg.Strategy,
		Start:    h.cfg.Start,
		Size:     h.cfg.Size,
		Allocs:   h.allocs.Load(),
		Frees:    h.frees.Load(),
		Failures: h.failures.Load(),
		InUse:    uint64(max(h.inUse.Load(), 0)),
	}
}
