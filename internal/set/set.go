// Package set defines the abstract ordered-set contract shared by every
// engine in this repository: lists, skip lists, and trees all implement
// Set, and the three engines with a maintenance thread also implement
// BackgroundEngine.
package set

import "time"

// Key is the ordered-set's key type. Two values are reserved as sentinels
// and are never returned by, or accepted from, a client operation.
type Key = int32

const (
	// KeyMin is the key carried by the head sentinel.
	KeyMin Key = -1 << 31
	// KeyMax is the key carried by the tail sentinel.
	KeyMax Key = 1<<31 - 1
)

// Value is a machine-word payload, opaque to every engine. A nil Value is
// valid for pure integer-set usage, where presence alone carries meaning.
type Value = interface{}

// Set is the contract every ordered-set engine exposes to callers.
//
// All methods are safe for concurrent use, infallible (§7 of the design:
// internal retries never escape an engine), and linearizable with respect
// to each other.
type Set interface {
	// Contains reports whether a non-deleted node with key k exists at
	// some linearization point during the call.
	Contains(k Key) bool

	// Insert adds (k, v). It returns true iff no node with key k was
	// already present.
	Insert(k Key, v Value) bool

	// Remove deletes the node with key k, if any. It returns true iff k
	// was present and became not-present as a result of this call.
	Remove(k Key) bool

	// Size returns a snapshot of the number of live keys. Under
	// concurrent mutation the result is approximate; it is exact only
	// when the set is quiescent.
	Size() int

	// Close stops any background thread owned by the engine and releases
	// its resources. Close must not be called while other goroutines are
	// still operating on the set.
	Close() error
}

// BackgroundStats are cumulative counters published by an engine's
// maintenance thread.
type BackgroundStats struct {
	Loops          uint64
	Raises         uint64
	Lowers         uint64
	DeleteAttempts uint64
	DeleteSucceeds uint64
}

// BackgroundEngine is implemented by engines that split mutation into a
// fast worker path and a slow, independent maintainer path: the no-hot-spot
// skip list, the rotating skip list, and the speculation-friendly AVL tree.
type BackgroundEngine interface {
	Set

	// Start begins the maintenance thread. It is idempotent: calling it
	// while already running is a no-op.
	Start()

	// Stop joins the maintenance thread. It is idempotent.
	Stop()

	// Stats returns the maintenance thread's cumulative counters.
	Stats() BackgroundStats
}

// Params configures the construction of any engine.
type Params struct {
	// InitialLevelMax bounds the number of skip-list levels (ignored by
	// list and tree engines).
	InitialLevelMax int

	// StartBackground starts the maintenance thread immediately for
	// engines that have one.
	StartBackground bool

	// BackgroundSleep is the interval between maintenance passes.
	BackgroundSleep time.Duration
}

// DefaultInitialLevelMax is used when Params.InitialLevelMax <= 0.
const DefaultInitialLevelMax = 32

// DefaultBackgroundSleep is used when Params.BackgroundSleep <= 0.
const DefaultBackgroundSleep = time.Millisecond

// Normalize returns p with zero-valued fields replaced by defaults.
func (p Params) Normalize() Params {
	if p.InitialLevelMax <= 0 {
		p.InitialLevelMax = DefaultInitialLevelMax
	}
	if p.BackgroundSleep <= 0 {
		p.BackgroundSleep = DefaultBackgroundSleep
	}
	return p
}
