// Package buf contains overflow-safe address arithmetic and bounds checks used
// by the memory views that back a heap.
package buf

import "math"

// AddU64 adds a and b, returning ok = false when the result would overflow uint64.
func AddU64(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// Contains reports whether the range [addr, addr+n) lies within [start, start+size).
// Overflowing ranges are never contained.
func Contains(start, size, addr, n uint64) bool {
	if addr < start {
		return false
	}
	end, ok := AddU64(addr, n)
	if !ok {
		return false
	}
	limit, ok := AddU64(start, size)
	if !ok {
		return false
	}
	return end <= limit
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	if n > math.MaxInt-off {
		return nil, false
	}
	end := off + n
	if end > len(b) {
		return nil, false
	}
	return b[off:end], true
}
