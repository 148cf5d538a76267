// Package registry implements the process-wide, lazily-initialised,
// append-only collaborator list shared by the Volume Manager's two
// external registries (Partition Table probes, Logical Volume
// Factories): sync.Once guards construction, and a mutex guards each
// Snapshot and Register. Register swaps in a new slice rather than
// changing the old one, so a slice returned by Snapshot never changes.
package registry

import (
	"sync"

	"github.com/archivekit/diskutils/internal/generic"
)

// Registry holds a growable, append-only list of T, built lazily from
// a core set on first use and safe for concurrent Snapshot/Register
// calls thereafter.
type Registry[T any] struct {
	mu      sync.Mutex
	once    sync.Once
	core    func() []T
	entries []T
}

// New returns a Registry whose first access lazily evaluates core to
// populate the initial entries. core is invoked at most once.
func New[T any](core func() []T) *Registry[T] {
	return &Registry[T]{core: core}
}

func (r *Registry[T]) ensureInit() {
	r.once.Do(func() {
		r.entries = generic.CloneSlice(r.core())
	})
}

// Snapshot returns the current entries as an immutable slice. Callers
// must not mutate the returned slice; Register never mutates a
// previously returned snapshot in place, it replaces r.entries with a
// new slice, so snapshots taken mid-scan stay internally consistent.
func (r *Registry[T]) Snapshot() []T {
	r.ensureInit()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries
}

// Register appends entry to the registry unless equal already reports
// it as already present (per-type equality, e.g. by name), in which
// case Register is a no-op. A new slice is allocated and swapped in
// atomically under the lock; existing snapshots are unaffected.
func (r *Registry[T]) Register(entry T, equal func(a, b T) bool) {
	r.ensureInit()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if equal(e, entry) {
			return
		}
	}
	next := make([]T, len(r.entries)+1)
	copy(next, r.entries)
	next[len(r.entries)] = entry
	r.entries = next
}
