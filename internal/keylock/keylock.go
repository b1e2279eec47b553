// Package keylock provides per-key mutual exclusion.
package keylock

import (
	"slices"
	"sync"
)

// entry is a reference-counted mutex for one key.
type entry struct {
	mu   sync.Mutex
	refs int
}

// Locker serializes work per key. Distinct keys never block each other.
// Entries are released once no goroutine holds or waits on them.
// All methods are safe for concurrent use.
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty Locker.
func New() *Locker {
	return &Locker{entries: make(map[string]*entry)}
}

// Lock blocks until key is held by the caller and returns its release function.
//
// Postcondition: the returned func must be called exactly once.
func (l *Locker) Lock(key string) func() {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, key)
		}
		l.mu.Unlock()
	}
}

// LockAll acquires every distinct key in sorted order, so concurrent callers
// locking overlapping sets cannot deadlock.
//
// Postcondition: the returned func releases all keys and must be called exactly once.
func (l *Locker) LockAll(keys []string) func() {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	releases := make([]func(), 0, len(sorted))
	for _, k := range sorted {
		releases = append(releases, l.Lock(k))
	}
	return func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
}

// Len returns the number of keys currently held or awaited.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
