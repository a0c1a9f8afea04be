package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/joshuapare/kheap/heap"
	"github.com/joshuapare/kheap/pkg/machine"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	// Drain concurrently so large outputs can't fill the pipe.
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return string(<-done), fnErr
}

// resetFlags restores every flag variable to its default and disables color.
func resetFlags(t *testing.T) {
	t.Helper()
	verbose, quiet, jsonOut, noColor = false, false, false, true
	runStrategy = heap.DefaultConfig.Strategy
	runSize = heap.HeapSize
	runRAM = machine.DefaultConfig.RAM
	runCount = 0
	layoutSize = heap.HeapSize
	t.Cleanup(func() { noColor = false })
}
