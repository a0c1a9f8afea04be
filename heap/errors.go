package heap

import "errors"

var (
	// ErrInvalidConfig indicates a Config that cannot describe a heap region.
	ErrInvalidConfig = errors.New("heap: invalid config")

	// ErrUnknownStrategy indicates a strategy name ParseStrategy does not know.
	ErrUnknownStrategy = errors.New("heap: unknown strategy")

	// ErrIndexOutOfRange indicates a Vec index past its length.
	ErrIndexOutOfRange = errors.New("heap: index out of range")
)
