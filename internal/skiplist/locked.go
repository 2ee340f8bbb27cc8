// locked.go: coarse/medium/fine lock skip list (§4.4.1).
//
// Grounded on the skip-list-lock node shape in
// original_source/c-cpp/src/skiplists/skiplist-lock/skiplist-lock.h
// (marked + fullylinked flags, per-node lock) and on the classic
// Herlihy-Shavit optimistic concurrent skip list this header implements:
// lookups are unlocked and read each successor once with an atomic load,
// without re-reading it until it is stable; updaters
// find predecessors without locking, then acquire the locks needed for the
// affected levels in ascending level order (deadlock-free, §5 lock
// discipline) and validate before linking.
package skiplist

import (
	"sync"
	"sync/atomic"

	"github.com/agilira/synchrobench/internal/rng"
	"github.com/agilira/synchrobench/internal/set"
)

// LockGranularity selects how many locks the list uses (§4.4.1).
type LockGranularity int

const (
	// CoarseLock serializes the whole list behind one mutex.
	CoarseLock LockGranularity = iota
	// MediumLock puts one mutex on each node.
	MediumLock
	// FineLock puts one mutex on each forward pointer of each node.
	FineLock
)

type lockedNode struct {
	key      set.Key
	val      set.Value
	topLevel int
	// next holds concurrently-shared forward pointers: Contains and
	// findNode read these without taking any lock (even under CoarseLock,
	// whose lock isn't held until after the first unlocked findNode pass),
	// so every level must be an atomic.Pointer like every other engine in
	// this package rather than a plain slice element.
	next        []atomic.Pointer[lockedNode]
	nodeLock    sync.Mutex   // used in MediumLock mode
	levelLocks  []sync.Mutex // used in FineLock mode, one per level
	marked      atomic.Bool
	fullyLinked atomic.Bool
}

func (n *lockedNode) lockLevel(g LockGranularity, level int) {
	switch g {
	case MediumLock:
		n.nodeLock.Lock()
	case FineLock:
		n.levelLocks[level].Lock()
	}
}

func (n *lockedNode) unlockLevel(g LockGranularity, level int) {
	switch g {
	case MediumLock:
		n.nodeLock.Unlock()
	case FineLock:
		n.levelLocks[level].Unlock()
	}
}

// LockedSkipList is the coarse/medium/fine lock skip list.
type LockedSkipList struct {
	granularity LockGranularity
	maxLevel    int
	head, tail  *lockedNode
	globalMu    sync.Mutex
	scratch     *rng.Scratch
	size        atomic.Int64
}

// NewLocked constructs a skip list using the given lock granularity.
func NewLocked(granularity LockGranularity, maxLevel int) *LockedSkipList {
	if maxLevel < 1 {
		maxLevel = set.DefaultInitialLevelMax
	}
	tail := newLockedNode(set.KeyMax, nil, maxLevel, granularity)
	head := newLockedNode(set.KeyMin, nil, maxLevel, granularity)
	for i := range head.next {
		head.next[i].Store(tail)
	}
	head.fullyLinked.Store(true)
	tail.fullyLinked.Store(true)
	return &LockedSkipList{
		granularity: granularity,
		maxLevel:    maxLevel,
		head:        head,
		tail:        tail,
		scratch:     rng.New(1),
	}
}

func newLockedNode(k set.Key, v set.Value, topLevel int, g LockGranularity) *lockedNode {
	n := &lockedNode{key: k, val: v, topLevel: topLevel, next: make([]atomic.Pointer[lockedNode], topLevel+1)}
	if g == FineLock {
		n.levelLocks = make([]sync.Mutex, topLevel+1)
	}
	return n
}

// findNode locates preds/succs at every level, returning the highest level
// at which a node with key k was found, or -1.
func (l *LockedSkipList) findNode(k set.Key, preds, succs []*lockedNode) int {
	lFound := -1
	pred := l.head
	for level := l.maxLevel; level >= 0; level-- {
		curr := pred.next[level].Load()
		for curr.key < k {
			pred = curr
			curr = pred.next[level].Load()
		}
		if lFound == -1 && curr.key == k {
			lFound = level
		}
		preds[level] = pred
		succs[level] = curr
	}
	return lFound
}

// Contains implements set.Set. It never locks (§4.4.1 "Lookups are
// unlocked"): it makes a single top-down descent of its own, reading each
// successor once, and does not repeat a read until it is stable.
func (l *LockedSkipList) Contains(k set.Key) bool {
	pred := l.head
	for level := l.maxLevel; level >= 0; level-- {
		curr := pred.next[level].Load()
		for curr.key < k {
			pred = curr
			curr = pred.next[level].Load()
		}
		if curr.key == k {
			return curr.fullyLinked.Load() && !curr.marked.Load()
		}
	}
	return false
}

func (l *LockedSkipList) lockAll(nodes []*lockedNode, highestLevel int) {
	if l.granularity == CoarseLock {
		l.globalMu.Lock()
		return
	}
	locked := make(map[*lockedNode]bool, highestLevel+1)
	for level := 0; level <= highestLevel; level++ {
		n := nodes[level]
		if n == nil || locked[n] {
			continue
		}
		n.lockLevel(l.granularity, level)
		locked[n] = true
	}
}

func (l *LockedSkipList) unlockAll(nodes []*lockedNode, highestLevel int) {
	if l.granularity == CoarseLock {
		l.globalMu.Unlock()
		return
	}
	unlocked := make(map[*lockedNode]bool, highestLevel+1)
	for level := 0; level <= highestLevel; level++ {
		n := nodes[level]
		if n == nil || unlocked[n] {
			continue
		}
		n.unlockLevel(l.granularity, level)
		unlocked[n] = true
	}
}

// Insert implements set.Set.
func (l *LockedSkipList) Insert(k set.Key, v set.Value) bool {
	topLevel := l.scratch.SkipListLevel(l.maxLevel+1) - 1
	preds := make([]*lockedNode, l.maxLevel+1)
	succs := make([]*lockedNode, l.maxLevel+1)

	for {
		lFound := l.findNode(k, preds, succs)
		if lFound != -1 {
			found := succs[lFound]
			if !found.marked.Load() {
				for !found.fullyLinked.Load() {
					// spin until the concurrent insert that created this
					// node finishes linking it.
				}
				return false
			}
			continue
		}

		highestLocked := topLevel
		l.lockAll(preds, highestLocked)
		valid := true
		for level := 0; valid && level <= topLevel; level++ {
			pred, succ := preds[level], succs[level]
			valid = !pred.marked.Load() && !succ.marked.Load() && pred.next[level].Load() == succ
		}
		if !valid {
			l.unlockAll(preds, highestLocked)
			continue
		}

		node := newLockedNode(k, v, topLevel, l.granularity)
		for level := 0; level <= topLevel; level++ {
			node.next[level].Store(succs[level])
		}
		for level := 0; level <= topLevel; level++ {
			preds[level].next[level].Store(node)
		}
		node.fullyLinked.Store(true)
		l.size.Add(1)
		l.unlockAll(preds, highestLocked)
		return true
	}
}

// Remove implements set.Set.
func (l *LockedSkipList) Remove(k set.Key) bool {
	var victim *lockedNode
	isMarked := false
	topLevel := -1
	preds := make([]*lockedNode, l.maxLevel+1)
	succs := make([]*lockedNode, l.maxLevel+1)

	for {
		lFound := l.findNode(k, preds, succs)
		if !isMarked {
			if lFound == -1 {
				return false
			}
			victim = succs[lFound]
			if !victim.fullyLinked.Load() || victim.topLevel != lFound || victim.marked.Load() {
				return false
			}
			topLevel = victim.topLevel
		}

		if isMarked {
			highestLocked := topLevel
			l.lockAll(preds, highestLocked)
			valid := true
			for level := 0; valid && level <= topLevel; level++ {
				valid = !preds[level].marked.Load() && preds[level].next[level].Load() == victim
			}
			if !valid {
				l.unlockAll(preds, highestLocked)
				continue
			}
			for level := topLevel; level >= 0; level-- {
				preds[level].next[level].Store(victim.next[level].Load())
			}
			l.size.Add(-1)
			l.unlockAll(preds, highestLocked)
			return true
		}

		highestLocked := topLevel
		victim.lockLevel(l.granularity, 0)
		if victim.marked.Load() {
			victim.unlockLevel(l.granularity, 0)
			return false
		}
		victim.marked.Store(true)
		isMarked = true
		victim.unlockLevel(l.granularity, 0)
		_ = highestLocked
	}
}

// Size implements set.Set.
func (l *LockedSkipList) Size() int { return int(l.size.Load()) }

// Close implements set.Set. The locked skip list owns no background
// thread.
func (l *LockedSkipList) Close() error { return nil }
