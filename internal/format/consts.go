// Package format holds the low-level constants and encoders shared by the heap
// packages: alignment rounding, page geometry, and the little-endian word layout
// used for link words written into raw heap memory. Everything here is
// allocation-free and sits on the hot path of every allocation.
package format

const (
	// PageShift is log2(PageSize).
	PageShift = 12

	// PageSize is the size of a virtual page and of a physical frame (4 KiB).
	PageSize = 1 << PageShift

	// PageMask masks the offset-within-page bits of an address.
	PageMask = PageSize - 1

	// WordSize is the size of a machine word and of a free-list link.
	WordSize = 8

	// WordMask masks the offset-within-word bits of an address.
	WordMask = WordSize - 1
)
