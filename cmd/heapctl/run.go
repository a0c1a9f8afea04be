package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/kheap/heap"
	"github.com/joshuapare/kheap/heap/alloc"
	"github.com/joshuapare/kheap/pkg/machine"
)

var (
	runStrategy = heap.DefaultConfig.Strategy
	runSize     uint64
	runRAM      uint64
	runCount    uint64
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().Var(&runStrategy, "strategy", "Allocator: fixed-block, bump, linked-list or dummy")
	cmd.Flags().Uint64Var(&runSize, "size", heap.HeapSize, "Heap size in bytes")
	cmd.Flags().Uint64Var(&runRAM, "ram", machine.DefaultConfig.RAM, "Simulated RAM in bytes")
	cmd.Flags().Uint64Var(&runCount, "count", 0, "Iterations for vector and box workloads (0 = workload default)")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [workload]",
		Short: "Boot a heap and run allocation workloads",
		Long: `The run command boots a fresh machine and heap for each workload and
reports whether it completed or ran out of memory. Without an argument every
workload runs.

Workloads:
  simple       two boxed values
  vector       push integers into a growing vector
  many-boxes   allocate and free boxes one at a time
  long-lived   many-boxes while one box stays allocated

Example:
  heapctl run
  heapctl run long-lived --strategy bump
  heapctl run vector --count 5000 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args)
		},
	}
	return cmd
}

// RunResult is the outcome of one workload.
type RunResult struct {
	Workload  string        `json:"workload"`
	Strategy  string        `json:"strategy"`
	Count     uint64        `json:"count"`
	OK        bool          `json:"ok"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
	Heap      heap.Stats    `json:"heap"`
	Machine   machine.Stats `json:"machine"`
	Allocator any           `json:"allocator,omitempty"`
}

func runRun(args []string) error {
	selected := workloads
	if len(args) == 1 {
		w, err := findWorkload(args[0])
		if err != nil {
			return err
		}
		selected = []workload{w}
	}

	var results []RunResult
	failed := 0
	for _, w := range selected {
		r, err := runWorkload(w)
		if err != nil {
			return err
		}
		if !r.OK {
			failed++
		}
		results = append(results, r)
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			printResult(r)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d workload(s) failed", failed, len(results))
	}
	return nil
}

// runWorkload boots a fresh machine and heap and runs w on it. Boot problems
// are returned as errors; allocation failures inside the workload are
// reported in the result.
func runWorkload(w workload) (RunResult, error) {
	m, err := machine.New(machine.Config{RAM: runRAM, Reserved: machine.DefaultConfig.Reserved})
	if err != nil {
		return RunResult{}, err
	}
	defer m.Close()

	cfg := heap.DefaultConfig
	cfg.Size = runSize
	cfg.Strategy = runStrategy

	printVerbose("Booting %s heap of %s bytes at %s\n", cfg.Strategy, num(cfg.Size), cfg.Start)
	h, err := m.BootHeap(cfg)
	if err != nil {
		return RunResult{}, fmt.Errorf("boot heap: %w", err)
	}

	n := runCount
	if n == 0 {
		n = w.defaultCount
	}

	start := time.Now()
	runErr := w.run(h, n)
	r := RunResult{
		Workload:  w.name,
		Strategy:  cfg.Strategy.String(),
		Count:     n,
		OK:        runErr == nil,
		Duration:  time.Since(start),
		Heap:      h.Stats(),
		Machine:   m.Stats(),
		Allocator: allocatorStats(h),
	}
	if runErr != nil {
		r.Error = runErr.Error()
		if !errors.Is(runErr, alloc.ErrOutOfMemory) {
			return r, runErr
		}
	}
	return r, nil
}

func allocatorStats(h *heap.Heap) any {
	var st any
	h.WithAllocator(func(a alloc.Allocator) {
		switch a := a.(type) {
		case *alloc.FixedSizeBlock:
			st = a.Stats()
		case *alloc.Bump:
			st = a.Stats()
		case *alloc.LinkedList:
			st = a.Stats()
		}
	})
	return st
}

func printResult(r RunResult) {
	status := render(okStyle, "ok")
	if !r.OK {
		status = render(failStyle, "out of memory")
	}
	printInfo("%s %s (%s)\n", render(headerStyle, r.Workload), status, r.Strategy)
	if r.Count > 0 {
		field("count", num(r.Count))
	}
	field("allocations", num(r.Heap.Allocs))
	field("frees", num(r.Heap.Frees))
	field("failures", num(r.Heap.Failures))
	field("in use", num(r.Heap.InUse)+" bytes")
	field("frames used", num(r.Machine.FramesUsed))
	if r.Error != "" {
		printVerbose("  error: %s\n", r.Error)
	}
	printVerbose("  took: %s\n", r.Duration)
}
