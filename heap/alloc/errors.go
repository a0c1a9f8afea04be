package alloc

import "errors"

var (
	// ErrOutOfMemory indicates that no block large enough could be found.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrBadLayout indicates an alignment that is not a nonzero power of two.
	ErrBadLayout = errors.New("alloc: alignment must be a nonzero power of two")
)
