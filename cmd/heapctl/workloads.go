package main

import (
	"fmt"

	"github.com/joshuapare/kheap/heap"
)

// workload is one of the kernel's heap exercises.
type workload struct {
	name         string
	desc         string
	defaultCount uint64
	run          func(h *heap.Heap, n uint64) error
}

var workloads = []workload{
	{
		name: "simple",
		desc: "two boxed values",
		run:  runSimple,
	},
	{
		name:         "vector",
		desc:         "push n integers into a growing vector and sum them",
		defaultCount: 1000,
		run:          runVector,
	},
	{
		name:         "many-boxes",
		desc:         "allocate and free n boxes one at a time",
		defaultCount: heap.HeapSize,
		run:          runManyBoxes,
	},
	{
		name:         "long-lived",
		desc:         "like many-boxes while one box stays allocated",
		defaultCount: heap.HeapSize,
		run:          runLongLived,
	},
}

func findWorkload(name string) (workload, error) {
	for _, w := range workloads {
		if w.name == name {
			return w, nil
		}
	}
	return workload{}, fmt.Errorf("unknown workload %q (want simple, vector, many-boxes or long-lived)", name)
}

func runSimple(h *heap.Heap, _ uint64) error {
	a, err := heap.NewBox(h, 41)
	if err != nil {
		return err
	}
	b, err := heap.NewBox(h, 13)
	if err != nil {
		return err
	}
	if a.Get() != 41 || b.Get() != 13 {
		return fmt.Errorf("boxes hold %d and %d, want 41 and 13", a.Get(), b.Get())
	}
	return nil
}

func runVector(h *heap.Heap, n uint64) error {
	v := heap.NewVec(h)
	for i := range n {
		if err := v.Push(i); err != nil {
			return err
		}
	}
	if want := n * (n - 1) / 2; n > 0 && v.Sum() != want {
		return fmt.Errorf("vector sums to %d, want %d", v.Sum(), want)
	}
	return nil
}

func runManyBoxes(h *heap.Heap, n uint64) error {
	for i := range n {
		b, err := heap.NewBox(h, i)
		if err != nil {
			return fmt.Errorf("box %d: %w", i, err)
		}
		if b.Get() != i {
			return fmt.Errorf("box %d holds %d", i, b.Get())
		}
		b.Free()
	}
	return nil
}

func runLongLived(h *heap.Heap, n uint64) error {
	longLived, err := heap.NewBox(h, 1)
	if err != nil {
		return err
	}
	if err := runManyBoxes(h, n); err != nil {
		return err
	}
	if longLived.Get() != 1 {
		return fmt.Errorf("long-lived box holds %d, want 1", longLived.Get())
	}
	return nil
}
