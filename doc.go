// Package synchrobench provides a family of concurrent ordered-set
// implementations — lists, skip lists, and balanced trees — each built
// around the same abstract contract but differing in synchronization
// discipline.
//
// # Overview
//
// Every engine implements internal/set.Set: Contains, Insert, Remove,
// Size, Close. Three engine families are provided:
//
//   - List engines (internal/list): hand-over-hand lock coupling,
//     optimistic lazy traversal, versioned try-lock, Harris/Fomitchev
//     lock-free with flag+mark helping.
//   - Skip-list engines (internal/skiplist): coarse/medium/fine lock,
//     Fraser CAS-only lock-free, no-hot-spot and rotating no-hot-spot
//     (index maintenance delegated to a background thread).
//   - Tree engines (internal/tree): Kung-Lehman lock-coupled BST,
//     Manber-Ladner BST with predecessor substitution, a red-black tree,
//     and a speculation-friendly AVL tree with background rebalancing.
//
// # Quick Start
//
//	import "github.com/agilira/synchrobench/internal/list"
//
//	s := list.NewLazy()
//	s.Insert(5, nil)
//	if s.Contains(5) {
//	    s.Remove(5)
//	}
//
// Engines with a maintenance thread additionally implement
// internal/set.BackgroundEngine:
//
//	import (
//	    "github.com/agilira/synchrobench/internal/set"
//	    "github.com/agilira/synchrobench/internal/skiplist"
//	)
//
//	eng := skiplist.NewNoHotSpot(set.Params{StartBackground: true})
//	defer eng.Close()
//	eng.Insert(5, nil)
//	stats := eng.Stats() // Loops, Raises, Lowers, DeleteAttempts, DeleteSucceeds
//
// # Concurrency Model
//
// Every engine is safe for concurrent Contains/Insert/Remove calls from
// any number of goroutines. The lock-free and optimistic engines
// additionally never block a reader behind a writer's lock. The
// Manber-Ladner tree retires every node it unlinks through internal/gc's
// epoch-based reclamation runtime, which passes each retired block to the
// registered hooks once its grace period has passed and then drops it;
// retired blocks are never returned to an allocator pool. Every other
// engine relies on Go's garbage collector alone.
//
// # Background Maintenance
//
// The no-hot-spot skip list, rotating skip list, and speculation-friendly
// AVL tree split every mutation into two paths: workers only perform
// fast, localized updates (logical delete, leaf/CAS insert), while a
// single maintenance thread (internal/maintenance.Thread) owns index
// raises/lowers, tree rebalancing, and physical removal of logically
// deleted nodes. internal/maintenance.HotTuning, an argus-backed watcher
// analogous to the teacher's own HotConfig file watcher, retunes the sleep
// interval of a maintenance.Thread it is given; the engines keep their
// Thread unexported and do not hand it out.
//
// # Error Handling
//
// No engine method ever returns an error: every internal retry is
// resolved before the call returns (§7). Errors are reserved for the
// harness layer above the engines — unknown engine names, malformed CLI
// flags, and the two conditions cmd/synchrobench treats as fatal
// (allocation failure, worker-goroutine spawn failure) — using
// github.com/agilira/go-errors the same way the teacher structures its
// own cache-level errors.
//
// # Packages
//
//   - github.com/agilira/synchrobench: harness-level Config and errors
//   - github.com/agilira/synchrobench/internal/set: the Set/BackgroundEngine
//     contract and shared Key/Value/Params types
//   - github.com/agilira/synchrobench/internal/gc: epoch-based reclamation
//   - github.com/agilira/synchrobench/internal/rng: per-goroutine scratch PRNG
//   - github.com/agilira/synchrobench/internal/list: list engines
//   - github.com/agilira/synchrobench/internal/skiplist: skip-list engines
//   - github.com/agilira/synchrobench/internal/tree: tree engines
//   - github.com/agilira/synchrobench/internal/maintenance: shared
//     background-thread runner and hot-tuning watcher
//   - github.com/agilira/synchrobench/cmd/synchrobench: CLI workload harness
//
// # License
//
// See LICENSE file in the repository.
package synchrobench
