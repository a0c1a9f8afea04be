package alloc

import (
	"testing"
)

func BenchmarkBump_AllocFree(b *testing.B) {
	a, _ := newInit(b, 1<<20, NewBump)
	l := MustLayout(24, 8)
	b.ReportAllocs()
	for b.Loop() {
		addr, err := a.Alloc(l)
		if err != nil {
			b.Fatal(err)
		}
		a.Free(addr, l)
	}
}

func BenchmarkFixedSizeBlock_ListHit(b *testing.B) {
	a, _ := newInit(b, 1<<20, newFixed)
	l := MustLayout(24, 8)
	b.ReportAllocs()
	for b.Loop() {
		addr, err := a.Alloc(l)
		if err != nil {
			b.Fatal(err)
		}
		a.Free(addr, l)
	}
}

func BenchmarkFixedSizeBlock_Oversized(b *testing.B) {
	a, _ := newInit(b, 1<<20, newFixed)
	l := MustLayout(4096, 8)
	b.ReportAllocs()
	for b.Loop() {
		addr, err := a.Alloc(l)
		if err != nil {
			b.Fatal(err)
		}
		a.Free(addr, l)
	}
}

func BenchmarkLinkedList_Fragmented(b *testing.B) {
	a, _ := newInit(b, 1<<20, NewLinkedList)
	l := MustLayout(64, 8)

	// Free every other block so the list has many small holes.
	var blocks []liveBlock
	for range 2000 {
		x, err := a.Alloc(l)
		if err != nil {
			b.Fatal(err)
		}
		blocks = append(blocks, liveBlock{x, l})
	}
	for i := 0; i < len(blocks); i += 2 {
		a.Free(blocks[i].addr, blocks[i].l)
	}

	big := MustLayout(256, 8)
	b.ReportAllocs()
	for b.Loop() {
		addr, err := a.Alloc(big)
		if err != nil {
			b.Fatal(err)
		}
		a.Free(addr, big)
	}
}
