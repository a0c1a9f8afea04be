package alloc

import (
	"testing"

	"github.com/joshuapare/kheap/heap/mem"
)

// testHeapStart matches the kernel heap base so addresses in failures look familiar.
const testHeapStart mem.Addr = 0x6767_6767_0000

// newTestMemory returns a zeroed flat region of size bytes at testHeapStart.
func newTestMemory(t testing.TB, size int) *mem.Flat {
	t.Helper()
	return mem.AllocFlat(testHeapStart, size)
}

// newInit builds an allocator with ctor and initializes it over a fresh region.
func newInit[A Allocator](t testing.TB, size int, ctor func() A) (A, *mem.Flat) {
	t.Helper()
	m := newTestMemory(t, size)
	a := ctor()
	a.Init(m, m.Base(), m.Size())
	return a, m
}
