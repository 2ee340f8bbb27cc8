// Package gc implements the epoch-based reclamation subsystem (§4.1 of the
// design); in this repository only the Manber-Ladner tree (internal/tree)
// uses it. It lets concurrent readers dereference pointers without locks
// while guaranteeing a retired block is never handed back to an allocator
// while any reader that started before its retirement might still hold its
// address.
//
// The scheme is modeled on Fraser's ptst/gc subsystem
// (original_source/c-cpp/src/skiplists/fraser/{gc,ptst}.c): a global epoch
// counter in {0,1,2}, a linked list of per-thread records, and per-(epoch,
// size-class) garbage lists that are only freed once every thread's last
// observed epoch has moved two epochs past retirement.
package gc

import (
	"sync"
	"sync/atomic"

	"github.com/agilira/go-errors"
)

// epochsRetained is how many epochs of garbage are kept before a bucket is
// eligible for reclamation. Three epochs (rather than two) gives a grace
// window for targets with weak memory ordering, per §4.1; this
// implementation always keeps three since Go's memory model is not
// specialized per target.
const epochsRetained = 3

// entriesPerReclaimAttempt mirrors Fraser's gc.c: a thread only attempts a
// reclaim pass after this many critical-section entries at an unchanged
// epoch, bounding how often the CAS-guarded reclaim() runs.
const entriesPerReclaimAttempt = 100

// ClassID identifies a registered allocation size class.
type ClassID int

// HookFunc is invoked once per retired block, exactly one epoch-retention
// window after Free, the way Manber–Ladner's tree completes redundancy
// removal (§4.5.2, §6.3 gc_add_hook).
type HookFunc func(ClassID, interface{})

// Runtime is one process-wide (or, in tests, one per-set) GC object.
// Multiple sets may share a single Runtime (§9 "Global per-process
// state").
type Runtime struct {
	epoch      uint64 // current epoch, monotonically advanced
	reclaiming int32  // CAS guard: at most one reclaim() runs at a time

	recordsMu sync.Mutex
	records   []*threadRecord

	classesMu sync.Mutex
	classes   []*class

	hooksMu sync.Mutex
	hooks   []HookFunc
}

type class struct {
	id   ClassID
	pool sync.Pool
}

// garbageBucket holds blocks retired during one epoch, for one size class.
type garbageBucket struct {
	class ClassID
	items []interface{}
}

// threadRecord is the per-goroutine state Fraser calls ptst_t: a nesting
// counter, the last epoch this thread observed, and its garbage lists.
type threadRecord struct {
	count       int32  // nesting depth; 0 means this thread is outside any critical section
	localEpoch  uint64 // last observed global epoch
	entriesSeen uint32 // entries since epoch last changed, for the periodic reclaim trigger
	garbage     [epochsRetained]map[ClassID]*garbageBucket
	garbageMu   sync.Mutex
}

// New creates a process-wide GC runtime. Call AddAllocator once per size
// class before any set backed by this runtime begins operating.
func New() *Runtime {
	return &Runtime{epoch: 0}
}

// AddAllocator registers a new size class and returns its ClassID.
// Registration is monotonic and append-only (§4.1).
func (r *Runtime) AddAllocator(newFn func() interface{}) ClassID {
	r.classesMu.Lock()
	defer r.classesMu.Unlock()
	id := ClassID(len(r.classes))
	c := &class{id: id}
	c.pool.New = newFn
	r.classes = append(r.classes, c)
	return id
}

// AddHook registers a callback invoked once per freed block at reclaim
// time (§6.3 gc_add_hook).
func (r *Runtime) AddHook(fn HookFunc) {
	r.hooksMu.Lock()
	r.hooks = append(r.hooks, fn)
	r.hooksMu.Unlock()
}

// Handle is the per-critical-section token returned by CriticalEnter. It
// must be released exactly once via Exit.
type Handle struct {
	r      *Runtime
	record *threadRecord
}

// NewWorker allocates a fresh per-goroutine record and registers it with
// the runtime. Callers spawn one worker token per goroutine and reuse it
// across that goroutine's critical sections, mirroring Fraser's
// lazily-allocated, append-only ptst_list.
func (r *Runtime) NewWorker() *Worker {
	rec := &threadRecord{}
	for i := range rec.garbage {
		rec.garbage[i] = make(map[ClassID]*garbageBucket)
	}
	r.recordsMu.Lock()
	r.records = append(r.records, rec)
	r.recordsMu.Unlock()
	return &Worker{r: r, record: rec}
}

// Worker is a goroutine-scoped handle into the GC runtime. Create one per
// worker (or per maintenance thread) goroutine and reuse it for the
// goroutine's lifetime.
type Worker struct {
	r      *Runtime
	record *threadRecord
}

// CriticalEnter begins a critical section (§4.1 critical_enter). Nested
// calls are allowed; only the outermost call reloads the local epoch and
// may trigger a reclaim attempt.
func (w *Worker) CriticalEnter() *Handle {
	rec := w.record
	if atomic.AddInt32(&rec.count, 1) == 1 {
		cur := atomic.LoadUint64(&w.r.epoch)
		if cur == rec.localEpoch {
			rec.entriesSeen++
		} else {
			rec.localEpoch = cur
			rec.entriesSeen = 0
		}
		if rec.entriesSeen >= entriesPerReclaimAttempt {
			rec.entriesSeen = 0
			w.r.tryReclaim()
		}
	}
	return &Handle{r: w.r, record: rec}
}

// Exit leaves a critical section (§4.1 critical_exit). A release fence is
// implied by the atomic decrement.
func (h *Handle) Exit() {
	atomic.AddInt32(&h.record.count, -1)
}

// Alloc returns a block from the class's sync.Pool, which calls the class's
// constructor when empty. It takes the runtime's class-registry mutex to
// look up the class before calling into the pool.
func (w *Worker) Alloc(id ClassID) interface{} {
	w.r.classesMu.Lock()
	c := w.r.classes[id]
	w.r.classesMu.Unlock()
	v := c.pool.Get()
	if v == nil {
		panic(errors.New("SYNCHROBENCH_GC_OOM", "gc allocator exhausted"))
	}
	return v
}

// Free defers release of ptr to the garbage list of the current epoch; it
// is never freed directly (§4.1 free()).
func (w *Worker) Free(id ClassID, ptr interface{}) {
	rec := w.record
	epoch := atomic.LoadUint64(&w.r.epoch) % epochsRetained

	rec.garbageMu.Lock()
	b := rec.garbage[epoch][id]
	if b == nil {
		b = &garbageBucket{class: id}
		rec.garbage[epoch][id] = b
	}
	b.items = append(b.items, ptr)
	rec.garbageMu.Unlock()
}

// tryReclaim is gc_reclaim: mutually excluded with CAS, it advances the
// epoch once every thread with an open critical section has observed the
// current global epoch, then frees garbage retired epochsRetained-1 epochs
// ago.
func (r *Runtime) tryReclaim() {
	if !atomic.CompareAndSwapInt32(&r.reclaiming, 0, 1) {
		return // another goroutine is already reclaiming
	}
	defer atomic.StoreInt32(&r.reclaiming, 0)

	cur := atomic.LoadUint64(&r.epoch)

	r.recordsMu.Lock()
	records := make([]*threadRecord, len(r.records))
	copy(records, r.records)
	r.recordsMu.Unlock()

	for _, rec := range records {
		if atomic.LoadInt32(&rec.count) > 0 && rec.localEpoch != cur {
			return // a thread is still inside a critical section from a stale epoch
		}
	}

	reclaimEpoch := (cur + 1) % epochsRetained // oldest bucket, filled two epochs ago
	r.hooksMu.Lock()
	hooks := append([]HookFunc(nil), r.hooks...)
	r.hooksMu.Unlock()

	for _, rec := range records {
		rec.garbageMu.Lock()
		bucket := rec.garbage[reclaimEpoch]
		rec.garbage[reclaimEpoch] = make(map[ClassID]*garbageBucket)
		rec.garbageMu.Unlock()

		for id, b := range bucket {
			for _, item := range b.items {
				for _, hook := range hooks {
					hook(id, item)
				}
			}
		}
	}

	atomic.AddUint64(&r.epoch, 1)
}

// PendingCount returns the total number of retired-but-not-yet-reclaimed
// blocks across all threads and epochs. Exposed for leak tests (§8
// property 9).
func (r *Runtime) PendingCount() int {
	r.recordsMu.Lock()
	records := make([]*threadRecord, len(r.records))
	copy(records, r.records)
	r.recordsMu.Unlock()

	n := 0
	for _, rec := range records {
		rec.garbageMu.Lock()
		for _, bucket := range rec.garbage {
			for _, b := range bucket {
				n += len(b.items)
			}
		}
		rec.garbageMu.Unlock()
	}
	return n
}

// CurrentEpoch returns the current global epoch.
func (r *Runtime) CurrentEpoch() uint64 {
	return atomic.LoadUint64(&r.epoch)
}
