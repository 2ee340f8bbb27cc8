package gc

import (
	"sync"
	"testing"
)

func TestAllocFreeReclaim(t *testing.T) {
	r := New()
	class := r.AddAllocator(func() interface{} { return new(int) })
	w := r.NewWorker()

	h := w.CriticalEnter()
	blk := w.Alloc(class)
	if blk == nil {
		t.Fatal("alloc returned nil")
	}
	w.Free(class, blk)
	h.Exit()

	if got := r.PendingCount(); got != 1 {
		t.Fatalf("PendingCount() = %d, want 1", got)
	}

	// Advance the epoch enough times that the retention window closes.
	for i := 0; i < entriesPerReclaimAttempt*(epochsRetained+1); i++ {
		h := w.CriticalEnter()
		h.Exit()
	}
	r.tryReclaim()
	r.tryReclaim()
	r.tryReclaim()

	if got := r.PendingCount(); got != 0 {
		t.Fatalf("PendingCount() after reclaim = %d, want 0", got)
	}
}

func TestHookInvokedOnReclaim(t *testing.T) {
	r := New()
	class := r.AddAllocator(func() interface{} { return new(int) })
	w := r.NewWorker()

	var mu sync.Mutex
	var seen []interface{}
	r.AddHook(func(id ClassID, ptr interface{}) {
		mu.Lock()
		seen = append(seen, ptr)
		mu.Unlock()
	})

	h := w.CriticalEnter()
	blk := w.Alloc(class)
	w.Free(class, blk)
	h.Exit()

	for i := 0; i < entriesPerReclaimAttempt*(epochsRetained+1); i++ {
		h := w.CriticalEnter()
		h.Exit()
	}
	r.tryReclaim()
	r.tryReclaim()
	r.tryReclaim()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 {
		t.Fatalf("hook invoked %d times, want 1", len(seen))
	}
}

func TestCriticalSectionBlocksReclaim(t *testing.T) {
	r := New()
	class := r.AddAllocator(func() interface{} { return new(int) })
	w := r.NewWorker()
	reader := r.NewWorker()

	h := w.CriticalEnter()
	blk := w.Alloc(class)
	w.Free(class, blk)
	h.Exit()

	readerHandle := reader.CriticalEnter()
	for i := 0; i < entriesPerReclaimAttempt*(epochsRetained+1); i++ {
		h := w.CriticalEnter()
		h.Exit()
	}
	r.tryReclaim()
	if got := r.PendingCount(); got != 1 {
		t.Fatalf("reclaim freed garbage while a reader was still active: PendingCount() = %d", got)
	}
	readerHandle.Exit()
}

func TestMonotonicAllocatorRegistration(t *testing.T) {
	r := New()
	c0 := r.AddAllocator(func() interface{} { return new(int) })
	c1 := r.AddAllocator(func() interface{} { return new(int) })
	if c0 == c1 {
		t.Fatal("expected distinct class ids")
	}
	if c0 != 0 || c1 != 1 {
		t.Fatalf("expected append-only ids 0,1; got %d,%d", c0, c1)
	}
}
