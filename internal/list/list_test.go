package list

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/agilira/synchrobench/internal/set"
)

// engines under test, built fresh per sub-test (§8 S1/S2/S3).
func engines() map[string]func() set.Set {
	return map[string]func() set.Set{
		"coupling":  func() set.Set { return NewCoupling() },
		"lazy":      func() set.Set { return NewLazy() },
		"versioned": func() set.Set { return NewVersioned() },
		"lockfree":  func() set.Set { return NewLockFree() },
	}
}

func TestScenarioS1(t *testing.T) {
	for name, make := range engines() {
		t.Run(name, func(t *testing.T) {
			s := make()
			if got := s.Insert(5, nil); got != true {
				t.Fatalf("insert(5) = %v, want true", got)
			}
			if got := s.Insert(3, nil); got != true {
				t.Fatalf("insert(3) = %v, want true", got)
			}
			if got := s.Insert(7, nil); got != true {
				t.Fatalf("insert(7) = %v, want true", got)
			}
			if got := s.Insert(5, nil); got != false {
				t.Fatalf("insert(5) dup = %v, want false", got)
			}
			for k, want := range map[set.Key]bool{3: true, 5: true, 7: true, 4: false} {
				if got := s.Contains(k); got != want {
					t.Fatalf("contains(%d) = %v, want %v", k, got, want)
				}
			}
		})
	}
}

func TestScenarioS2(t *testing.T) {
	for name, make := range engines() {
		t.Run(name, func(t *testing.T) {
			s := make()
			keys := rand.Perm(1000)
			for i := range keys {
				keys[i]++ // keys 1..1000
			}
			for _, k := range keys {
				s.Insert(set.Key(k), nil)
			}
			if got := s.Size(); got != 1000 {
				t.Fatalf("Size() = %d, want 1000", got)
			}
			for k := 500; k <= 1000; k++ {
				s.Remove(set.Key(k))
			}
			if got := s.Size(); got != 499 {
				t.Fatalf("Size() after removal = %d, want 499", got)
			}
			cases := map[set.Key]bool{1: true, 499: true, 500: false, 1000: false}
			for k, want := range cases {
				if got := s.Contains(k); got != want {
					t.Fatalf("contains(%d) = %v, want %v", k, got, want)
				}
			}
		})
	}
}

func TestRemoveIdempotent(t *testing.T) {
	for name, make := range engines() {
		t.Run(name, func(t *testing.T) {
			s := make()
			s.Insert(1, nil)
			if !s.Remove(1) {
				t.Fatal("first remove should succeed")
			}
			if s.Remove(1) {
				t.Fatal("second remove should fail")
			}
		})
	}
}

func TestConcurrentInsertRemove(t *testing.T) {
	for name, make := range engines() {
		t.Run(name, func(t *testing.T) {
			s := make()
			const n = 200
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
				t.Fatalf("Size() after concurrent insert = %d, want %d", got, n)
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
				t.Fatalf("Size() after concurrent remove = %d, want %d", got, n/2)
			}
			for i := 0; i < n; i++ {
				want := i%2 != 0
				if got := s.Contains(set.Key(i)); got != want {
					t.Fatalf("contains(%d) = %v, want %v", i, got, want)
				}
			}
		})
	}
}
