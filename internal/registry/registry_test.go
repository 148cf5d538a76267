package registry_test

import (
	"sync"
	"testing"

	"github.com/archivekit/diskutils/internal/registry"
)

type factory struct{ name string }

func TestRegistryLazyInit(t *testing.T) {
	calls := 0
	r := registry.New(func() []factory {
		calls++
		return []factory{{name: "core-a"}, {name: "core-b"}}
	})

	if got := r.Snapshot(); len(got) != 2 {
		t.Fatalf("snapshot = %v, want 2 entries", got)
	}
	r.Snapshot()
	if calls != 1 {
		t.Fatalf("core() called %d times, want 1", calls)
	}
}

func TestRegistryRegisterIsAppendOnlyAndDeduped(t *testing.T) {
	r := registry.New(func() []factory { return []factory{{name: "core-a"}} })
	equal := func(a, b factory) bool { return a.name == b.name }

	r.Register(factory{name: "ext-a"}, equal)
	r.Register(factory{name: "core-a"}, equal) // already present: no-op

	got := r.Snapshot()
	if len(got) != 2 {
		t.Fatalf("snapshot = %v, want 2 entries", got)
	}
}

func TestRegistrySnapshotStableUnderConcurrentRegister(t *testing.T) {
	r := registry.New(func() []factory { return nil })
	equal := func(a, b factory) bool { return a.name == b.name }

	before := r.Snapshot()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Register(factory{name: string(rune('a' + i))}, equal)
		}(i)
	}
	wg.Wait()

	if len(before) != 0 {
		t.Fatalf("earlier snapshot mutated in place: %v", before)
	}
	if got := r.Snapshot(); len(got) != 8 {
		t.Fatalf("snapshot = %v, want 8 entries", got)
	}
}
