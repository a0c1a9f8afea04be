package heap

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/kheap/heap/paging"
	"github.com/joshuapare/kheap/internal/logger"
)

// newPageTable returns an empty page table in RAM of n frames. Frame 0 is
// reserved and the root table takes the next one.
func newPageTable(t *testing.T, n int) (*paging.OffsetPageTable, *paging.BootInfoFrameAllocator) {
	t.Helper()
	phys, err := paging.NewPhysMemory(uint64(n) * 4096)
	require.NoError(t, err)
	t.Cleanup(func() { _ = phys.Close() })

	frames := paging.NewBootInfoFrameAllocator([]paging.MemoryRegion{
		{Start: 0, End: 0x1000, Kind: paging.Reserved},
		{Start: 0x1000, End: paging.PhysAddr(phys.Size()), Kind: paging.Usable},
	})
	root, ok := frames.AllocateFrame()
	require.True(t, ok)
	phys.ZeroFrame(root)
	return paging.NewOffsetPageTable(phys, root), frames
}

func TestInitMapsEveryPage(t *testing.T) {
	pt, frames := newPageTable(t, 64)
	before := frames.Remaining()

	h, err := Init(pt, frames, DefaultConfig)
	require.NoError(t, err)

	pages := paging.PagesCovering(paging.VirtAddr(HeapStart), HeapSize)
	require.Equal(t, 25, pages.Len())
	for p := range pages.All() {
		_, flags, ok := pt.TranslatePage(p)
		require.True(t, ok, "%s not mapped", p)
		assert.True(t, flags.Has(paging.Present|paging.Writable))
	}
	_, ok := pt.Translate(paging.VirtAddr(DefaultConfig.End()))
	assert.False(t, ok, "nothing past the heap is mapped")

	assert.Equal(t, 25+3, before-frames.Remaining(), "one frame per page plus three tables")
	assert.Equal(t, pt, h.Memory())
}

func TestInitHeapIsUsable(t *testing.T) {
	for _, s := range []Strategy{FixedBlock, Bump, LinkedList} {
		t.Run(s.String(), func(t *testing.T) {
			pt, frames := newPageTable(t, 64)
			cfg := DefaultConfig
			cfg.Strategy = s

			// The linked-list strategies write their first hole header
			// during Init, which faults unless every page is mapped first.
			h, err := Init(pt, frames, cfg)
			require.NoError(t, err)

			addr, err := h.Alloc(64, 8)
			require.NoError(t, err)
			h.Memory().Store64(addr, 0xfeedface)

			phys, ok := pt.Translate(paging.VirtAddr(addr))
			require.True(t, ok)
			assert.Equal(t, uint64(0xfeedface), pt.Phys().Load64(phys))
		})
	}
}

func TestInitFrameExhaustion(t *testing.T) {
	// Reserved + root + three tables + five heap pages.
	pt, frames := newPageTable(t, 10)

	h, err := Init(pt, frames, DefaultConfig)
	require.Error(t, err)
	assert.Nil(t, h)
	assert.ErrorIs(t, err, paging.ErrFrameAllocationFailed)
	assert.Contains(t, err.Error(), "heap: map heap page 0x676767675000")

	var me *paging.MapError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, paging.FrameAllocationFailed, me.Kind)

	pages := paging.PagesCovering(paging.VirtAddr(HeapStart), HeapSize)
	i := 0
	for p := range pages.All() {
		_, ok := pt.Translate(p.Start)
		assert.Equal(t, i < 5, ok, "page %d", i)
		i++
	}
}

func TestInitPageAlreadyMapped(t *testing.T) {
	pt, frames := newPageTable(t, 64)
	taken := paging.PageContaining(paging.VirtAddr(HeapStart) + 2*4096)
	frame, ok := frames.AllocateFrame()
	require.True(t, ok)
	flush, err := pt.MapTo(taken, frame, paging.Present, frames)
	require.NoError(t, err)
	flush.Flush()

	_, err = Init(pt, frames, DefaultConfig)
	require.ErrorIs(t, err, paging.ErrPageAlreadyMapped)

	var me *paging.MapError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, taken, me.Page)
	assert.Equal(t, frame, me.Frame)

	_, ok = pt.Translate(paging.VirtAddr(HeapStart) + 4096)
	assert.True(t, ok, "pages before the conflict stay mapped")
}

func TestInitInvalidConfig(t *testing.T) {
	pt, frames := newPageTable(t, 16)
	before := frames.Remaining()
	_, err := Init(pt, frames, Config{Start: HeapStart, Size: 0})
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, before, frames.Remaining(), "no frames consumed")
}

func TestInitLogs(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, logger.Init(logger.Options{Enabled: true, Writer: &out, Level: slog.LevelDebug}))
	t.Cleanup(func() { _ = logger.Init(logger.Options{}) })

	pt, frames := newPageTable(t, 64)
	_, err := Init(pt, frames, DefaultConfig)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "mapping heap")
	assert.Contains(t, out.String(), "pages=25")
	assert.Contains(t, out.String(), "strategy=fixed-block")
}
