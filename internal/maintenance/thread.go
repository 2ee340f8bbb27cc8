// Package maintenance provides the shared background-thread runner used by
// every engine that splits mutation into a fast worker path and a slow
// maintainer path: the no-hot-spot skip list, the rotating skip list, and
// the speculation-friendly AVL tree (§4.6).
//
// The run loop's shape — sleep, check a finished flag, run one pass,
// repeat — is modeled on agilira-balios's HotConfig watcher
// (agilira-balios/hot-reload.go), which polls a config file at an interval
// and reacts to what it finds; here the maintainer polls the data
// structure itself instead of a file.
package maintenance

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/synchrobench/internal/set"
)

// PassFunc runs one maintenance pass and returns the counters it produced.
type PassFunc func() set.BackgroundStats

// Thread runs PassFunc on an interval until Stop is called. Exactly one
// instance exists per engine that uses it; Start/Stop are idempotent, and
// Stop always returns before the owning engine is torn down (§4.6).
type Thread struct {
	sleep atomic.Int64 // time.Duration, mutable via Retune for hot-reload
	pass  PassFunc

	mu      sync.Mutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup

	stats set.BackgroundStats
}

// NewThread constructs a maintenance thread that calls pass once per sleep
// interval once started.
func NewThread(sleep time.Duration, pass PassFunc) *Thread {
	if sleep <= 0 {
		sleep = set.DefaultBackgroundSleep
	}
	t := &Thread{pass: pass}
	t.sleep.Store(int64(sleep))
	return t
}

// Start begins the maintenance loop. No-op if already running (§6.2
// bg_start is idempotent).
func (t *Thread) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.done = make(chan struct{})
	t.wg.Add(1)
	go t.loop(t.done)
}

// Stop signals the loop to exit and waits for it to finish. No-op if not
// running (§6.2 bg_stop is idempotent). Responds within one sleep period
// (§4.6).
func (t *Thread) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	done := t.done
	t.mu.Unlock()

	close(done)
	t.wg.Wait()
}

// Retune changes the sleep interval of a running (or not-yet-started)
// thread, used by HotTuning to apply a reloaded bg_sleep value without a
// restart.
func (t *Thread) Retune(sleep time.Duration) {
	if sleep <= 0 {
		return
	}
	t.sleep.Store(int64(sleep))
}

// Stats returns the cumulative counters produced by every completed pass.
func (t *Thread) Stats() set.BackgroundStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

func (t *Thread) loop(done chan struct{}) {
	defer t.wg.Done()
	for {
		sleep := time.Duration(t.sleep.Load())
		select {
		case <-done:
			return
		case <-time.After(sleep):
		}

		passStats := t.pass()

		t.mu.Lock()
		t.stats.Loops++
		t.stats.Raises += passStats.Raises
		t.stats.Lowers += passStats.Lowers
		t.stats.DeleteAttempts += passStats.DeleteAttempts
		t.stats.DeleteSucceeds += passStats.DeleteSucceeds
		t.mu.Unlock()

		select {
		case <-done:
			return
		default:
		}
	}
}
