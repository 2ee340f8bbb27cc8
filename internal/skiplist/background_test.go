package skiplist

import (
	"sync"
	"testing"
	"time"

	"github.com/agilira/synchrobench/internal/set"
)

func backgroundEngines() map[string]func() set.BackgroundEngine {
	params := set.Params{InitialLevelMax: 16, BackgroundSleep: time.Millisecond}
	return map[string]func() set.BackgroundEngine{
		"nohotspot": func() set.BackgroundEngine { return NewNoHotSpot(params) },
		"rotating":  func() set.BackgroundEngine { return NewRotating(params) },
	}
}

func TestBackgroundScenarioS1(t *testing.T) {
	for name, make := range backgroundEngines() {
		t.Run(name, func(t *testing.T) {
			s := make()
			defer s.Close()
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
		})
	}
}

func TestBackgroundMaintenanceReclaimsDeletes(t *testing.T) {
	for name, make := range backgroundEngines() {
		t.Run(name, func(t *testing.T) {
			s := make()
			defer s.Close()
			for k := 1; k <= 200; k++ {
				s.Insert(set.Key(k), nil)
			}
			for k := 1; k <= 100; k++ {
				s.Remove(set.Key(k))
			}
			s.Start()
			time.Sleep(20 * time.Millisecond)
			s.Stop()
			stats := s.Stats()
			if stats.Loops == 0 {
				t.Fatal("expected at least one maintenance pass")
			}
			if stats.DeleteSucceeds != 100 {
				t.Fatalf("DeleteSucceeds = %d, want 100", stats.DeleteSucceeds)
			}
			if got := s.Size(); got != 100 {
				t.Fatalf("Size() = %d, want 100", got)
			}
			for k := 101; k <= 200; k++ {
				if !s.Contains(set.Key(k)) {
					t.Fatalf("contains(%d) should be true after maintenance", k)
				}
			}
		})
	}
}

func TestBackgroundConcurrent(t *testing.T) {
	for name, make := range backgroundEngines() {
		t.Run(name, func(t *testing.T) {
			s := make()
			defer s.Close()
			s.Start()
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
		})
	}
}
