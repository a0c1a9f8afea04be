package paging

import (
	"errors"
	"fmt"
)

var (
	// ErrFrameAllocationFailed indicates the frame allocator ran out of frames.
	ErrFrameAllocationFailed = errors.New("paging: frame allocation failed")

	// ErrPageAlreadyMapped indicates the page already has a present leaf entry.
	ErrPageAlreadyMapped = errors.New("paging: page already mapped")

	// ErrParentEntryHugePage indicates a parent entry maps a huge page, so the
	// page cannot be mapped at 4 KiB granularity.
	ErrParentEntryHugePage = errors.New("paging: parent entry is a huge page")

	// ErrPageNotMapped indicates an unmap of a page with no present leaf entry.
	ErrPageNotMapped = errors.New("paging: page not mapped")
)

// MapErrorKind classifies a MapError.
type MapErrorKind int

const (
	FrameAllocationFailed MapErrorKind = iota + 1
	PageAlreadyMapped
	ParentEntryHugePage
)

func (k MapErrorKind) sentinel() error {
	switch k {
	case FrameAllocationFailed:
		return ErrFrameAllocationFailed
	case PageAlreadyMapped:
		return ErrPageAlreadyMapped
	case ParentEntryHugePage:
		return ErrParentEntryHugePage
	default:
		return nil
	}
}

// MapError is returned by MapTo. Use errors.Is with the sentinels above to
// match a kind.
type MapError struct {
	Kind MapErrorKind
	Page Page
	// Frame is the frame the page is already mapped to for PageAlreadyMapped.
	Frame Frame
}

func (e *MapError) Error() string {
	if e.Kind == PageAlreadyMapped {
		return fmt.Sprintf("%v: %s -> %s", e.Kind.sentinel(), e.Page, e.Frame)
	}
	return fmt.Sprintf("%v: %s", e.Kind.sentinel(), e.Page)
}

func (e *MapError) Unwrap() error { return e.Kind.sentinel() }

// PageFault is the panic value raised when memory is accessed through an
// unmapped or non-writable virtual address.
type PageFault struct {
	Addr  VirtAddr
	Write bool
}

func (f *PageFault) Error() string {
	op := "read"
	if f.Write {
		op = "write"
	}
	return fmt.Sprintf("paging: page fault on %s at %s", op, f.Addr)
}
