package tree

import (
	"sync"
	"testing"
	"time"

	"github.com/agilira/synchrobench/internal/set"
)

func TestAVLScenarioS1(t *testing.T) {
	tr := NewAVL(set.Params{})
	defer tr.Close()
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

func TestAVLMaintenanceReclaimsAndRebalances(t *testing.T) {
	tr := NewAVL(set.Params{BackgroundSleep: time.Millisecond})
	defer tr.Close()
	for k := 1; k <= 200; k++ {
		tr.Insert(set.Key(k), nil)
	}
	for k := 1; k <= 100; k++ {
		tr.Remove(set.Key(k))
	}
	tr.Start()
	time.Sleep(20 * time.Millisecond)
	tr.Stop()

	stats := tr.Stats()
	if stats.Loops == 0 {
		t.Fatal("expected at least one maintenance pass")
	}
	if stats.DeleteSucceeds != 100 {
		t.Fatalf("DeleteSucceeds = %d, want 100", stats.DeleteSucceeds)
	}
	if stats.Raises+stats.Lowers == 0 {
		t.Fatal("expected at least one rebalancing rotation")
	}
	if got := tr.Size(); got != 100 {
		t.Fatalf("Size() = %d, want 100", got)
	}
	for k := 101; k <= 200; k++ {
		if !tr.Contains(set.Key(k)) {
			t.Fatalf("contains(%d) should be true after maintenance", k)
		}
	}
	for k := 1; k <= 100; k++ {
		if tr.Contains(set.Key(k)) {
			t.Fatalf("contains(%d) should be false after maintenance", k)
		}
	}
}

func TestAVLConcurrent(t *testing.T) {
	tr := NewAVL(set.Params{StartBackground: true, BackgroundSleep: time.Millisecond})
	defer tr.Close()
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
	for k := 0; k < n; k++ {
		if !tr.Contains(set.Key(k)) {
			t.Fatalf("contains(%d) should be true: a concurrent maintenance pass lost an insert", k)
		}
	}
}
