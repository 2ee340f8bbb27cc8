package skiplist

import (
	"sync"
	"testing"

	"github.com/agilira/synchrobench/internal/set"
)

func lockedEngines() map[string]func() set.Set {
	return map[string]func() set.Set{
		"coarse": func() set.Set { return NewLocked(CoarseLock, 16) },
		"medium": func() set.Set { return NewLocked(MediumLock, 16) },
		"fine":   func() set.Set { return NewLocked(FineLock, 16) },
	}
}

func TestLockedScenarioS1(t *testing.T) {
	for name, make := range lockedEngines() {
		t.Run(name, func(t *testing.T) {
			s := make()
			if !s.Insert(5, nil) {
				t.Fatal("insert(5) should succeed")
			}
			if !s.Insert(3, nil) {
				t.Fatal("insert(3) should succeed")
			}
			if s.Insert(5, nil) {
				t.Fatal("insert(5) dup should fail")
			}
			if !s.Contains(3) || !s.Contains(5) || s.Contains(4) {
				t.Fatal("contains mismatch")
			}
		})
	}
}

func TestLockedConcurrent(t *testing.T) {
	for name, make := range lockedEngines() {
		t.Run(name, func(t *testing.T) {
			s := make()
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
				t.Fatalf("Size() after removal = %d, want %d", got, n/2)
			}
		})
	}
}
