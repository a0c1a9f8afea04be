package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/kheap/heap"
	"github.com/joshuapare/kheap/heap/alloc"
	"github.com/joshuapare/kheap/heap/paging"
)

var layoutSize uint64

func init() {
	cmd := newLayoutCmd()
	cmd.Flags().Uint64Var(&layoutSize, "size", heap.HeapSize, "Heap size in bytes")
	rootCmd.AddCommand(cmd)
}

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show the heap region and size classes",
		Long: `The layout command prints where the heap lives in virtual memory, how
many pages it spans and the block sizes of the fixed-size block allocator.

Example:
  heapctl layout
  heapctl layout --size 65536 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout()
		},
	}
	return cmd
}

// Layout describes the heap region.
type Layout struct {
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Size       uint64   `json:"size"`
	Pages      int      `json:"pages"`
	FirstPage  string   `json:"first_page"`
	LastPage   string   `json:"last_page"`
	Strategy   string   `json:"default_strategy"`
	SizeClass  []uint64 `json:"size_classes"`
	Strategies []string `json:"strategies"`
}

func heapLayout(size uint64) (Layout, error) {
	cfg := heap.DefaultConfig
	cfg.Size = size
	if err := cfg.Validate(); err != nil {
		return Layout{}, err
	}
	pages := paging.PagesCovering(paging.VirtAddr(cfg.Start), cfg.Size)

	l := Layout{
		Start:     cfg.Start.String(),
		End:       cfg.End().String(),
		Size:      cfg.Size,
		Pages:     pages.Len(),
		FirstPage: pages.Start.Start.String(),
		LastPage:  pages.End.Start.String(),
		Strategy:  cfg.Strategy.String(),
		SizeClass: alloc.BlockSizes[:],
	}
	for _, s := range heap.Strategies() {
		l.Strategies = append(l.Strategies, s.String())
	}
	return l, nil
}

func runLayout() error {
	l, err := heapLayout(layoutSize)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(l)
	}

	printInfo("%s\n", render(headerStyle, "Heap"))
	field("start", l.Start)
	field("end", l.End)
	field("size", num(l.Size)+" bytes")
	field("pages", fmt.Sprintf("%s (%s .. %s)", num(l.Pages), l.FirstPage, l.LastPage))
	field("strategy", l.Strategy)

	printInfo("%s\n", render(headerStyle, "Size classes"))
	for i, s := range l.SizeClass {
		field(fmt.Sprintf("%d", i), num(s))
	}
	return nil
}
