package format

// AlignUp returns the smallest multiple of align that is >= addr.
// align must be a nonzero power of two; this is not checked.
//
// Example:
//
//	AlignUp(1, 8)    = 8
//	AlignUp(8, 8)    = 8
//	AlignUp(9, 8)    = 16
//	AlignUp(4097, 4096) = 8192
func AlignUp(addr, align uint64) uint64 {
	return (addr + align - 1) &^ (align - 1)
}

// AlignDown returns the largest multiple of align that is <= addr.
// align must be a nonzero power of two.
//
// Example:
//
//	AlignDown(15, 8)   = 8
//	AlignDown(4096, 4096) = 4096
func AlignDown(addr, align uint64) uint64 {
	return addr &^ (align - 1)
}

// IsPowerOfTwo reports whether n is a nonzero power of two.
func IsPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// IsAligned reports whether addr is a multiple of align.
func IsAligned(addr, align uint64) bool {
	return addr&(align-1) == 0
}

// AlignWord returns n aligned up to the next 8-byte boundary.
func AlignWord(n uint64) uint64 {
	return (n + WordMask) &^ WordMask
}

// PageAlign returns n aligned up to the next 4 KiB boundary.
//
// Example:
//
//	PageAlign(1)    = 4096
//	PageAlign(4096) = 4096
//	PageAlign(4097) = 8192
func PageAlign(n uint64) uint64 {
	return (n + PageMask) &^ PageMask
}
