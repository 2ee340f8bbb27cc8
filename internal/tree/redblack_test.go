package tree

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/agilira/synchrobench/internal/set"
)

func TestRedBlackScenarioS1(t *testing.T) {
	tr := NewRedBlack()
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

func TestRedBlackScenarioS2(t *testing.T) {
	tr := NewRedBlack()
	keys := rand.Perm(1000)
	for i := range keys {
		keys[i]++
	}
	for _, k := range keys {
		tr.Insert(set.Key(k), nil)
	}
	if got := tr.Size(); got != 1000 {
		t.Fatalf("Size() = %d, want 1000", got)
	}
	for k := 500; k <= 1000; k++ {
		tr.Remove(set.Key(k))
	}
	if got := tr.Size(); got != 499 {
		t.Fatalf("Size() = %d, want 499", got)
	}
	for k, want := range map[set.Key]bool{1: true, 499: true, 500: false, 1000: false} {
		if got := tr.Contains(k); got != want {
			t.Fatalf("contains(%d) = %v, want %v", k, got, want)
		}
	}
}

func TestRedBlackConcurrent(t *testing.T) {
	tr := NewRedBlack()
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
}
