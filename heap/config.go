package heap

import (
	"fmt"
	"strings"

	"github.com/joshuapare/kheap/heap/alloc"
	"github.com/joshuapare/kheap/heap/mem"
	"github.com/joshuapare/kheap/internal/buf"
	"github.com/joshuapare/kheap/internal/format"
)

const (
	// HeapStart is the virtual address the kernel heap is mapped at.
	HeapStart mem.Addr = 0x_6767_6767_0000

	// HeapSize is the size of the kernel heap in bytes.
	HeapSize uint64 = 100 * 1024
)

// Strategy selects the allocator that manages the heap region.
type Strategy int

const (
	FixedBlock Strategy = iota // per-class free lists over a linked-list fallback
	Bump                       // monotonic cursor, reset when everything is freed
	LinkedList                 // first-fit hole list
	Dummy                      // always out of memory
)

var strategyNames = [...]string{
	FixedBlock: "fixed-block",
	Bump:       "bump",
	LinkedList: "linked-list",
	Dummy:      "dummy",
}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// Strategies returns every known strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{FixedBlock, Bump, LinkedList, Dummy}
}

// ParseStrategy maps a strategy name to its Strategy. Matching ignores case.
func ParseStrategy(name string) (Strategy, error) {
	for i, n := range strategyNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownStrategy, name, strategyList())
}

func strategyList() string {
	return strings.Join(strategyNames[:], ", ")
}

// Set implements pflag.Value so a Strategy can be bound to a command-line flag.
func (s *Strategy) Set(name string) error {
	v, err := ParseStrategy(name)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Type implements pflag.Value.
func (s *Strategy) Type() string { return "strategy" }

// MarshalText encodes the strategy by name.
func (s Strategy) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(strategyNames) {
		return nil, fmt.Errorf("%w: %v", ErrUnknownStrategy, s)
	}
	return []byte(strategyNames[s]), nil
}

// UnmarshalText decodes a strategy name.
func (s *Strategy) UnmarshalText(text []byte) error {
	return s.Set(string(text))
}

// newAllocator returns a fresh, uninitialized allocator for s.
func (s Strategy) newAllocator() (alloc.Allocator, error) {
	switch s {
	case FixedBlock:
		return alloc.NewFixedSizeBlock(nil), nil
	case Bump:
		return alloc.NewBump(), nil
	case LinkedList:
		return alloc.NewLinkedList(), nil
	case Dummy:
		return alloc.Dummy{}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownStrategy, s)
	}
}

// Config describes the heap region and the allocator managing it.
type Config struct {
	Start    mem.Addr // first byte of the heap, nonzero and word aligned
	Size     uint64   // bytes, nonzero
	Strategy Strategy
}

// DefaultConfig is the kernel heap: 100 KiB at HeapStart managed by the
// fixed-size block allocator.
var DefaultConfig = Config{
	Start:    HeapStart,
	Size:     HeapSize,
	Strategy: FixedBlock,
}

// End returns the address one past the last heap byte.
func (c Config) End() mem.Addr { return c.Start + mem.Addr(c.Size) }

// Validate checks that the region is well formed and the strategy is known.
func (c Config) Validate() error {
	if c.Size == 0 {
		return fmt.Errorf("%w: size is zero", ErrInvalidConfig)
	}
	if c.Start == 0 {
		return fmt.Errorf("%w: start is the null address", ErrInvalidConfig)
	}
	if !format.IsAligned(uint64(c.Start), format.WordSize) {
		return fmt.Errorf("%w: start %s is not %d-byte aligned", ErrInvalidConfig, c.Start, format.WordSize)
	}
	if _, ok := buf.AddU64(uint64(c.Start), c.Size); !ok {
		return fmt.Errorf("%w: region %s+%d overflows the address space", ErrInvalidConfig, c.Start, c.Size)
	}
	if c.Strategy < 0 || int(c.Strategy) >= len(strategyNames) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, c.Strategy)
	}
	return nil
}
