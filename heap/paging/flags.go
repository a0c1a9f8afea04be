package paging

import "strings"

// Flags are page table entry permission and status bits.
type Flags uint64

// Bits in page table entries.
const (
	Present        Flags = 1 << 0
	Writable       Flags = 1 << 1
	UserAccessible Flags = 1 << 2
	WriteThrough   Flags = 1 << 3
	NoCache        Flags = 1 << 4
	Accessed       Flags = 1 << 5
	Dirty          Flags = 1 << 6
	HugePage       Flags = 1 << 7
	Global         Flags = 1 << 8
	NoExecute      Flags = 1 << 63

	flagMask = Flags(0xfff) | NoExecute

	// parentFlagMask is what MapTo propagates into newly created intermediate entries.
	parentFlagMask = Present | Writable | UserAccessible
)

// Has reports whether all bits of o are set in f.
func (f Flags) Has(o Flags) bool { return f&o == o }

var flagNames = []struct {
	f    Flags
	name string
}{
	{Present, "PRESENT"},
	{Writable, "WRITABLE"},
	{UserAccessible, "USER_ACCESSIBLE"},
	{WriteThrough, "WRITE_THROUGH"},
	{NoCache, "NO_CACHE"},
	{Accessed, "ACCESSED"},
	{Dirty, "DIRTY"},
	{HugePage, "HUGE_PAGE"},
	{Global, "GLOBAL"},
	{NoExecute, "NO_EXECUTE"},
}

func (f Flags) String() string {
	var parts []string
	for _, n := range flagNames {
		if f.Has(n.f) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, " | ")
}
