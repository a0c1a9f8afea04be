// Package mmap provides platform-specific helpers for mapping the anonymous
// memory that stands in for physical RAM.
package mmap
