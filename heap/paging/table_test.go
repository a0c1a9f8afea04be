package paging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/kheap/heap/mem"
)

const testVirt VirtAddr = 0x6767_6767_0000

// newTestTable builds RAM of frames*4 KiB with frame 0 reserved, a frame
// allocator over the rest, and an empty level-4 table.
func newTestTable(t *testing.T, frames int) (*OffsetPageTable, *BootInfoFrameAllocator) {
	t.Helper()
	phys, err := NewPhysMemory(uint64(frames) * 4096)
	require.NoError(t, err)
	t.Cleanup(func() { _ = phys.Close() })

	fa := NewBootInfoFrameAllocator([]MemoryRegion{
		{Start: 0, End: 0x1000, Kind: Reserved},
		{Start: 0x1000, End: PhysAddr(phys.Size()), Kind: Usable},
	})
	root, ok := fa.AllocateFrame()
	require.True(t, ok)
	phys.ZeroFrame(root)
	return NewOffsetPageTable(phys, root), fa
}

func TestMapToAndTranslate(t *testing.T) {
	pt, fa := newTestTable(t, 16)

	page := PageContaining(testVirt)
	frame, ok := fa.AllocateFrame()
	require.True(t, ok)

	flush, err := pt.MapTo(page, frame, Present|Writable, fa)
	require.NoError(t, err)
	assert.Equal(t, page, flush.Page())
	flush.Flush()

	assert.Equal(t, 3, pt.Stats().Tables, "levels 3, 2 and 1 are created on demand")

	phys, ok := pt.Translate(testVirt + 0x123)
	require.True(t, ok)
	assert.Equal(t, frame.Start+0x123, phys)

	f, flags, ok := pt.TranslatePage(page)
	require.True(t, ok)
	assert.Equal(t, frame, f)
	assert.True(t, flags.Has(Present|Writable))

	_, ok = pt.Translate(testVirt + 0x1000)
	assert.False(t, ok, "neighbouring page is not mapped")
}

func TestMapToSharesIntermediateTables(t *testing.T) {
	pt, fa := newTestTable(t, 64)

	for p := range PagesCovering(testVirt, 10*4096).All() {
		frame, ok := fa.AllocateFrame()
		require.True(t, ok)
		flush, err := pt.MapTo(p, frame, Present|Writable, fa)
		require.NoError(t, err)
		flush.Flush()
	}
	assert.Equal(t, 3, pt.Stats().Tables, "pages in one 2 MiB region share their tables")
}

func TestMapToAlreadyMapped(t *testing.T) {
	pt, fa := newTestTable(t, 16)
	page := PageContaining(testVirt)

	first, _ := fa.AllocateFrame()
	flush, err := pt.MapTo(page, first, Present|Writable, fa)
	require.NoError(t, err)
	flush.Flush()

	second, _ := fa.AllocateFrame()
	_, err = pt.MapTo(page, second, Present|Writable, fa)
	require.ErrorIs(t, err, ErrPageAlreadyMapped)

	var me *MapError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, PageAlreadyMapped, me.Kind)
	assert.Equal(t, first, me.Frame)
	assert.Contains(t, me.Error(), "already mapped")
}

func TestMapToFrameAllocationFailed(t *testing.T) {
	// Root plus two frames: not enough for three intermediate tables.
	pt, fa := newTestTable(t, 4)
	frame := Frame{Start: 0x3000}

	_, err := pt.MapTo(PageContaining(testVirt), frame, Present|Writable, fa)
	require.ErrorIs(t, err, ErrFrameAllocationFailed)

	var me *MapError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, FrameAllocationFailed, me.Kind)
	assert.Equal(t, PageContaining(testVirt), me.Page)
}

func TestMapToParentHugePage(t *testing.T) {
	pt, fa := newTestTable(t, 16)
	page := PageContaining(testVirt)

	// Install a present huge-page entry at level 4 by hand.
	pt.store(pt.root, page.Indices()[0], uint64(0x20_0000)|uint64(Present|Writable|HugePage))

	frame, _ := fa.AllocateFrame()
	_, err := pt.MapTo(page, frame, Present|Writable, fa)
	require.ErrorIs(t, err, ErrParentEntryHugePage)
}

func TestUnmapAndFlush(t *testing.T) {
	pt, fa := newTestTable(t, 16)
	page := PageContaining(testVirt)
	frame, _ := fa.AllocateFrame()

	flush, err := pt.MapTo(page, frame, Present|Writable, fa)
	require.NoError(t, err)
	flush.Flush()

	_, ok := pt.Translate(testVirt)
	require.True(t, ok, "populates the TLB")

	got, flush, err := pt.Unmap(page)
	require.NoError(t, err)
	assert.Equal(t, frame, got)

	_, ok = pt.Translate(testVirt)
	assert.True(t, ok, "stale TLB entry survives until flushed")

	flush.Flush()
	_, ok = pt.Translate(testVirt)
	assert.False(t, ok, "flushed translation is gone")

	_, _, err = pt.Unmap(page)
	assert.ErrorIs(t, err, ErrPageNotMapped)
	_, _, err = pt.Unmap(PageContaining(0x1000))
	assert.ErrorIs(t, err, ErrPageNotMapped)
}

func TestUnmapIgnoreKeepsStaleTranslation(t *testing.T) {
	pt, fa := newTestTable(t, 16)
	page := PageContaining(testVirt)
	first, _ := fa.AllocateFrame()

	flush, err := pt.MapTo(page, first, Present|Writable, fa)
	require.NoError(t, err)
	flush.Flush()
	_, ok := pt.Translate(testVirt)
	require.True(t, ok)

	_, flush, err = pt.Unmap(page)
	require.NoError(t, err)
	flush.Ignore()

	f, _, ok := pt.TranslatePage(page)
	require.True(t, ok, "ignored flush leaves the cached translation")
	assert.Equal(t, first, f)

	// Remapping and flushing replaces the stale entry.
	second, _ := fa.AllocateFrame()
	flush, err = pt.MapTo(page, second, Present|Writable, fa)
	require.NoError(t, err)
	flush.Flush()
	f, _, ok = pt.TranslatePage(page)
	require.True(t, ok)
	assert.Equal(t, second, f)

	// A failed MapTo returns an empty flush that is safe to ignore or flush.
	flush, err = pt.MapTo(page, first, Present|Writable, fa)
	require.ErrorIs(t, err, ErrPageAlreadyMapped)
	flush.Ignore()
	flush.Flush()
}

func TestTLBCountsHits(t *testing.T) {
	pt, fa := newTestTable(t, 16)
	frame, _ := fa.AllocateFrame()
	flush, err := pt.MapTo(PageContaining(testVirt), frame, Present|Writable, fa)
	require.NoError(t, err)
	flush.Flush()

	before := pt.Stats()
	for range 10 {
		_, ok := pt.Translate(testVirt)
		require.True(t, ok)
	}
	after := pt.Stats()
	assert.Equal(t, before.TLBMisses+1, after.TLBMisses)
	assert.Equal(t, before.TLBHits+9, after.TLBHits)
}

func mapRange(t *testing.T, pt *OffsetPageTable, fa *BootInfoFrameAllocator, start VirtAddr, size uint64, flags Flags) {
	t.Helper()
	for p := range PagesCovering(start, size).All() {
		frame, ok := fa.AllocateFrame()
		require.True(t, ok)
		flush, err := pt.MapTo(p, frame, flags, fa)
		require.NoError(t, err)
		flush.Flush()
	}
}

func TestMemoryAcrossPages(t *testing.T) {
	pt, fa := newTestTable(t, 32)
	mapRange(t, pt, fa, testVirt, 3*4096, Present|Writable)

	// A word straddling a page boundary lands in two different frames.
	at := mem.Addr(testVirt) + 4096 - 4
	pt.Store64(at, 0x1122334455667788)
	assert.Equal(t, uint64(0x1122334455667788), pt.Load64(at))

	payload := make([]byte, 6000)
	for i := range payload {
		payload[i] = byte(i * 7)
	}
	pt.WriteAt(payload, mem.Addr(testVirt)+100)
	got := make([]byte, len(payload))
	pt.ReadAt(got, mem.Addr(testVirt)+100)
	assert.Equal(t, payload, got)

	// The bytes really went to the mapped frame.
	p, ok := pt.Translate(testVirt + 100)
	require.True(t, ok)
	assert.Equal(t, payload[:16], pt.Phys().Slice(p, 16))
}

func TestMemoryPageFaults(t *testing.T) {
	pt, fa := newTestTable(t, 32)
	mapRange(t, pt, fa, testVirt, 4096, Present|Writable)
	mapRange(t, pt, fa, testVirt+0x1000, 4096, Present) // read-only

	expectFault := func(t *testing.T, write bool, fn func()) {
		t.Helper()
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected a page fault")
			pf, ok := r.(*PageFault)
			require.True(t, ok, "panic value should be *PageFault, got %T", r)
			assert.Equal(t, write, pf.Write)
			assert.Contains(t, pf.Error(), "page fault")
		}()
		fn()
	}

	expectFault(t, false, func() { pt.Load64(mem.Addr(testVirt) + 0x2000) })
	expectFault(t, true, func() { pt.Store64(mem.Addr(testVirt)+0x1000, 1) })
	assert.NotPanics(t, func() { pt.Load64(mem.Addr(testVirt) + 0x1000) })
}
