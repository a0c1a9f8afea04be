// Package lock provides the spin-style mutual-exclusion wrapper that guards
// shared allocator state.
//
// Locked never parks the calling goroutine on a scheduler queue: acquisition
// either succeeds immediately or the caller spins on an atomic flag. This
// makes it usable from code paths where no scheduler can be relied upon to
// resume a blocked caller. Holders must finish in short, bounded time.
//
// The lock is not reentrant. A holder that calls Lock again spins forever.
package lock

import "sync/atomic"

// Locked holds a value of type T that may only be reached through a Guard.
type Locked[T any] struct {
	held  atomic.Bool
	inner T
}

// New returns a Locked wrapping inner.
func New[T any](inner T) *Locked[T] {
	return &Locked[T]{inner: inner}
}

// Guard is exclusive access to the value inside a Locked. The zero Guard is
// not valid.
type Guard[T any] struct {
	l *Locked[T]
}

// Lock spins until the lock is acquired and returns the guard.
func (l *Locked[T]) Lock() Guard[T] {
	for !l.held.CompareAndSwap(false, true) {
		// Wait for a release before retrying the CAS so contending
		// spinners don't keep bouncing the cache line.
		for l.held.Load() {
		}
	}
	return Guard[T]{l: l}
}

// TryLock acquires the lock only if it is free.
func (l *Locked[T]) TryLock() (Guard[T], bool) {
	if !l.held.CompareAndSwap(false, true) {
		return Guard[T]{}, false
	}
	return Guard[T]{l: l}, true
}

// Do runs fn with exclusive access and releases the lock on every exit path,
// including a panic inside fn.
func (l *Locked[T]) Do(fn func(*T)) {
	g := l.Lock()
	defer g.Unlock()
	fn(g.Get())
}

// Get returns the guarded value. The pointer must not be retained after Unlock.
func (g Guard[T]) Get() *T {
	return &g.l.inner
}

// Unlock releases the lock.
func (g Guard[T]) Unlock() {
	g.l.held.Store(false)
}
