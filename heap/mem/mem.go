// Package mem defines how heap code reaches the bytes behind a virtual address.
//
// Allocators never hold Go pointers into the heap. They work with Addr values
// and read or write words through a Memory, which is the single place where
// raw heap bytes are reinterpreted. A Memory may be a flat byte slice or a
// page-table view that translates every access.
package mem

import "fmt"

// Addr is a virtual address inside a heap's address space. The zero Addr is
// never a valid allocation and doubles as the end-of-list marker for links
// stored in heap memory.
type Addr uint64

// String formats the address in hex.
func (a Addr) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

// Memory is byte-addressable storage reached by virtual address.
//
// Implementations panic on access to addresses they do not back; that is the
// hosted equivalent of a page fault and always indicates a caller bug.
type Memory interface {
	// Load64 reads the little-endian word at addr.
	Load64(addr Addr) uint64
	// Store64 writes v as a little-endian word at addr.
	Store64(addr Addr, v uint64)
	// ReadAt fills p with the bytes starting at addr.
	ReadAt(p []byte, addr Addr)
	// WriteAt copies p into memory starting at addr.
	WriteAt(p []byte, addr Addr)
}

const chunk = 256

// Zero clears n bytes starting at addr.
func Zero(m Memory, addr Addr, n uint64) {
	var zeros [chunk]byte
	for n > 0 {
		step := min(n, chunk)
		m.WriteAt(zeros[:step], addr)
		addr += Addr(step)
		n -= step
	}
}

// Copy copies n bytes from src to dst. The ranges must not overlap.
func Copy(m Memory, dst, src Addr, n uint64) {
	var tmp [chunk]byte
	for n > 0 {
		step := min(n, chunk)
		m.ReadAt(tmp[:step], src)
		m.WriteAt(tmp[:step], dst)
		src += Addr(step)
		dst += Addr(step)
		n -= step
	}
}
