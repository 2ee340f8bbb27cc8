// main.go: the synchrobench CLI workload harness (§6.4).
//
// This is an external collaborator, not part of the core (spec.md §1):
// it parses the recognized options with flash-flags, builds a barrier-
// synchronized workload of reader/writer goroutines over an engine
// selected by name, runs it for a fixed duration, and reports throughput.
// Grounded on the teacher's "fatal only on allocation/thread failure"
// policy (agilira-balios's panic-recovery-is-critical-severity error
// design, synchrobench.go's errors.go) and on original_source's own
// harness main()s, which share exactly this flag surface.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	flashflags "github.com/agilira/flash-flags"

	synchrobench "github.com/agilira/synchrobench"
	"github.com/agilira/synchrobench/internal/set"
)

type workloadOptions struct {
	durationMS    int
	initialSize   int
	threads       int
	keyRange      int
	updatePercent int
	seed          int64
	alternate     bool
	effective     bool
	elasticity    int
	biasRange     int
	biasOffset    int
	engine        string
}

func main() {
	fs := flashflags.New("synchrobench", "concurrent ordered-set benchmark harness")
	d := fs.Int("d", 10000, "duration in milliseconds")
	i := fs.Int("i", synchrobench.DefaultInitialSize, "initial set size")
	t := fs.Int("t", synchrobench.DefaultThreads, "number of worker threads")
	r := fs.Int("r", synchrobench.DefaultKeyRange, "key range [1, r]")
	u := fs.Int("u", synchrobench.DefaultUpdatePercent, "percentage of update operations")
	seed := fs.Int("S", 0, "random seed (0 derives one from the clock)")
	alternate := fs.Bool("A", false, "alternate insert/remove instead of drawing randomly")
	effective := fs.Bool("f", true, "count only effective (state-changing) updates")
	elasticity := fs.Int("x", 0, "elasticity class (accepted but unused; the set size is fixed)")
	biasRange := fs.Int("b", 0, "bias range for skewed key draws (0 disables bias)")
	biasOffset := fs.Int("B", 0, "bias offset for skewed key draws")
	engine := fs.String("engine", "lazy-list", "engine name, see -list-engines")
	listEngines := fs.Bool("list-engines", false, "print recognized engine names and exit")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "synchrobench: %v\n", err)
		return
	}

	if *listEngines {
		for _, name := range synchrobench.EngineNames() {
			fmt.Println(name)
		}
		return
	}

	opts := workloadOptions{
		durationMS:    *d,
		initialSize:   *i,
		threads:       *t,
		keyRange:      *r,
		updatePercent: *u,
		seed:          int64(*seed),
		alternate:     *alternate,
		effective:     *effective,
		elasticity:    *elasticity,
		biasRange:     *biasRange,
		biasOffset:    *biasOffset,
		engine:        *engine,
	}

	if err := run(opts); err != nil {
		if synchrobench.IsFatal(err) {
			log.Fatalf("synchrobench: %v", err)
		}
		fmt.Fprintf(os.Stderr, "synchrobench: %v\n", err)
	}
}

func run(opts workloadOptions) error {
	cfg := synchrobench.Config{
		Engine:        opts.engine,
		Duration:      time.Duration(opts.durationMS) * time.Millisecond,
		InitialSize:   opts.initialSize,
		Threads:       opts.threads,
		KeyRange:      opts.keyRange,
		UpdatePercent: opts.updatePercent,
		Seed:          opts.seed,
		Params:        set.Params{StartBackground: true},
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	engine, err := synchrobench.NewEngine(cfg.Engine, cfg.Params)
	if err != nil {
		return err
	}
	defer engine.Close()

	cfg.Logger.Info("starting workload", "engine", cfg.Engine, "threads", cfg.Threads, "duration", cfg.Duration)

	seedPopulation(engine, cfg)

	var ops, reads, updates atomic.Int64
	var stop atomic.Bool
	var ready, start, done sync.WaitGroup
	ready.Add(cfg.Threads)
	start.Add(1)
	done.Add(cfg.Threads)

	bgDone := make(chan struct{})
	if bg, ok := engine.(set.BackgroundEngine); ok {
		go pollBackgroundStats(bg, cfg.MetricsCollector, cfg.Params.BackgroundSleep, bgDone)
	} else {
		close(bgDone)
	}

	for w := 0; w < cfg.Threads; w++ {
		go func(worker int) {
			defer done.Done()
			rng := rand.New(rand.NewSource(cfg.Seed + int64(worker) + 1))
			ready.Done()
			start.Wait()
			workerLoop(engine, cfg, opts, rng, &stop, &ops, &reads, &updates)
		}(w)
	}

	ready.Wait()
	startedAtNanos := cfg.TimeProvider.Now()
	start.Done()

	time.Sleep(cfg.Duration)
	stop.Store(true)
	done.Wait()
	close(bgDone)
	elapsed := time.Duration(cfg.TimeProvider.Now() - startedAtNanos)

	total := ops.Load()
	throughput := float64(total) / elapsed.Seconds()
	cfg.Logger.Info("workload complete", "ops", total, "throughput", throughput, "size", engine.Size())
	fmt.Printf("engine=%s threads=%d duration=%s ops=%d reads=%d updates=%d throughput=%.0f ops/s size=%d\n",
		cfg.Engine, cfg.Threads, elapsed, total, reads.Load(), updates.Load(), throughput, engine.Size())
	return nil
}

// pollBackgroundStats reports the maintenance thread's per-interval counter
// deltas to cfg.MetricsCollector until bgDone is closed.
func pollBackgroundStats(engine set.BackgroundEngine, metrics synchrobench.MetricsCollector, interval time.Duration, bgDone <-chan struct{}) {
	if interval <= 0 {
		interval = set.DefaultBackgroundSleep
	}
	ticker := time.NewTicker(interval * 10)
	defer ticker.Stop()
	var last set.BackgroundStats
	report := func() {
		cur := engine.Stats()
		metrics.RecordBackgroundPass(
			int(cur.Raises-last.Raises),
			int(cur.Lowers-last.Lowers),
			int(cur.DeleteAttempts-last.DeleteAttempts),
			int(cur.DeleteSucceeds-last.DeleteSucceeds),
		)
		last = cur
	}
	for {
		select {
		case <-bgDone:
			report()
			return
		case <-ticker.C:
			report()
		}
	}
}

// seedPopulation pre-populates the engine with InitialSize keys drawn the
// same way the workload draws them, so steady-state Contains calls start
// with a realistic hit rate.
func seedPopulation(engine set.Set, cfg synchrobench.Config) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	for engine.Size() < cfg.InitialSize {
		k := set.Key(rng.Intn(cfg.KeyRange) + 1)
		engine.Insert(k, nil)
	}
}

func workerLoop(engine set.Set, cfg synchrobench.Config, opts workloadOptions, rng *rand.Rand, stop *atomic.Bool, ops, reads, updates *atomic.Int64) {
	for !stop.Load() {
		k := nextKey(cfg, opts, rng)
		switch {
		case rng.Intn(100) < cfg.UpdatePercent:
			doUpdate(engine, cfg, opts, rng, k, updates)
		default:
			before := cfg.TimeProvider.Now()
			hit := engine.Contains(k)
			cfg.MetricsCollector.RecordOp("contains", time.Duration(cfg.TimeProvider.Now()-before), hit)
			reads.Add(1)
		}
		ops.Add(1)
	}
}

// nextKey draws the next key to operate on, honoring -b/-B bias (skew the
// draw into a sub-range of width biasRange starting at biasOffset) when
// biasRange > 0.
func nextKey(cfg synchrobench.Config, opts workloadOptions, rng *rand.Rand) set.Key {
	if opts.biasRange > 0 {
		lo := opts.biasOffset % cfg.KeyRange
		return set.Key(lo + rng.Intn(opts.biasRange) + 1)
	}
	return set.Key(rng.Intn(cfg.KeyRange) + 1)
}

// doUpdate performs either an alternating insert/remove (-A) or a randomly
// chosen one, counting only state-changing operations when -f is set.
func doUpdate(engine set.Set, cfg synchrobench.Config, opts workloadOptions, rng *rand.Rand, k set.Key, updates *atomic.Int64) {
	insert := rng.Intn(2) == 0
	if opts.alternate {
		insert = !engine.Contains(k)
	}

	op := "remove"
	before := cfg.TimeProvider.Now()
	var changed bool
	if insert {
		op = "insert"
		changed = engine.Insert(k, nil)
	} else {
		changed = engine.Remove(k)
	}
	cfg.MetricsCollector.RecordOp(op, time.Duration(cfg.TimeProvider.Now()-before), changed)
	if !opts.effective || changed {
		updates.Add(1)
	}
}
