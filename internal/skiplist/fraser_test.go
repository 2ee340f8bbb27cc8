package skiplist

import (
	"sync"
	"testing"

	"github.com/agilira/synchrobench/internal/set"
)

func TestFraserScenarioS1(t *testing.T) {
	s := NewFraser(16)
	if !s.Insert(5, nil) || !s.Insert(3, nil) || !s.Insert(7, nil) {
		t.Fatal("inserts should succeed")
	}
	if s.Insert(5, nil) {
		t.Fatal("dup insert should fail")
	}
	for k, want := range map[set.Key]bool{3: true, 5: true, 7: true, 4: false} {
		if got := s.Contains(k); got != want {
			t.Fatalf("contains(%d) = %v, want %v", k, got, want)
		}
	}
}

func TestFraserScenarioS2(t *testing.T) {
	s := NewFraser(16)
	for k := 1; k <= 1000; k++ {
		s.Insert(set.Key(k), nil)
	}
	if got := s.Size(); got != 1000 {
		t.Fatalf("Size() = %d, want 1000", got)
	}
	for k := 500; k <= 1000; k++ {
		s.Remove(set.Key(k))
	}
	if got := s.Size(); got != 499 {
		t.Fatalf("Size() = %d, want 499", got)
	}
}

func TestFraserConcurrent(t *testing.T) {
	s := NewFraser(16)
	const n = 300
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			s.Insert(set.Key(k), nil)
		}(i)
	}
	wg.Wait()
	if got := s.Size(); got != n {
		t.Fatalf("Size() = %d, want %d", got, n)
	}
	var wg2 sync.WaitGroup
	for i := 0; i < n; i += 2 {
		wg2.Add(1)
		go func(k int) {
			defer wg2.Done()
			s.Remove(set.Key(k))
		}(i)
	}
	wg2.Wait()
	if got := s.Size(); got != n/2 {
		t.Fatalf("Size() = %d, want %d", got, n/2)
	}
}
