package tree

import (
	"sync"
	"testing"

	"github.com/agilira/synchrobench/internal/set"
)

func TestManberLadnerScenarioS1(t *testing.T) {
	tr := NewManberLadner()
	if !tr.Insert(5, nil) || !tr.Insert(3, nil) || !tr.Insert(7, nil) {
		t.Fatal("inserts should succeed")
	}
	if tr.Insert(5, nil) {
		t.Fatal("dup insert should fail")
	}
	for k, want := range map[set.Key]bool{3: true, 5: true, 7: true, 4: false} {
		if got := tr.Contains(k); got != want {
			t.Fatalf("contains(%d) = %v, want %v", k, got, want)
		}
	}
}

func TestManberLadnerRemoveTwoChildren(t *testing.T) {
	tr := NewManberLadner()
	for _, k := range []set.Key{10, 5, 15, 3, 7, 12, 20} {
		tr.Insert(k, nil)
	}
	if !tr.Remove(10) {
		t.Fatal("remove(10) should succeed")
	}
	if tr.Contains(10) {
		t.Fatal("10 should be gone")
	}
	for _, k := range []set.Key{5, 15, 3, 7, 12, 20} {
		if !tr.Contains(k) {
			t.Fatalf("contains(%d) should remain true", k)
		}
	}
	if got := tr.Size(); got != 6 {
		t.Fatalf("Size() = %d, want 6", got)
	}
}

func TestManberLadnerConcurrent(t *testing.T) {
	tr := NewManberLadner()
	const n = 300
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			tr.Insert(set.Key(k), nil)
		}(i)
	}
	wg.Wait()
	if got := tr.Size(); got != n {
		t.Fatalf("Size() = %d, want %d", got, n)
	}
	var wg2 sync.WaitGroup
	for i := 0; i < n; i += 2 {
		wg2.Add(1)
		go func(k int) {
			defer wg2.Done()
			tr.Remove(set.Key(k))
		}(i)
	}
	wg2.Wait()
	if got := tr.Size(); got != n/2 {
		t.Fatalf("Size() = %d, want %d", got, n/2)
	}
}
