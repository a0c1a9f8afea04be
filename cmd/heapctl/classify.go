package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/kheap/heap/alloc"
)

func init() {
	rootCmd.AddCommand(newClassifyCmd())
}

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <size> [align]",
		Short: "Show which size class serves a request",
		Long: `The classify command prints the fixed-size block class that serves an
allocation of the given size and alignment, or "fallback" when the request is
larger than every class. align defaults to 1. Numbers may be given in decimal
or with a 0x prefix.

Example:
  heapctl classify 10
  heapctl classify 100 256
  heapctl classify 3000 --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(args)
		},
	}
	return cmd
}

// Classification is the result of classify.
type Classification struct {
	Size     uint64 `json:"size"`
	Align    uint64 `json:"align"`
	Class    uint64 `json:"class,omitempty"`
	Index    int    `json:"index"`
	Fallback bool   `json:"fallback"`
}

func parseUint(s, what string) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", what, s, err)
	}
	return v, nil
}

func classify(size, align uint64) (Classification, error) {
	l, err := alloc.NewLayout(size, align)
	if err != nil {
		return Classification{}, err
	}
	c := Classification{Size: size, Align: align, Index: -1}
	idx, ok := alloc.ListIndex(l)
	if !ok {
		c.Fallback = true
		return c, nil
	}
	c.Index = idx
	c.Class = alloc.BlockSizes[idx]
	return c, nil
}

func runClassify(args []string) error {
	size, err := parseUint(args[0], "size")
	if err != nil {
		return err
	}
	align := uint64(1)
	if len(args) == 2 {
		if align, err = parseUint(args[1], "align"); err != nil {
			return err
		}
	}

	c, err := classify(size, align)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(c)
	}
	if c.Fallback {
		printInfo("%s bytes (align %s): %s\n", num(size), num(align), render(failStyle, "fallback"))
		return nil
	}
	printInfo("%s bytes (align %s): %s\n", num(size), num(align),
		render(okStyle, fmt.Sprintf("class %d (index %d)", c.Class, c.Index)))
	return nil
}
