// versioned.go: versioned try-lock list (§4.3.3).
//
// Grounded on original_source's versioned-lock list (Gramoli, Kuznetsov,
// Ravi, Shang — "A Concurrency-Optimal List-Based Set", DISC 2015):
// original_source/c-cpp/src/linkedlists/versioned/versioned-linkedlist.c
// and src/utils/versioned-lock/versioned-lock.h. Each node carries a
// version-with-lock word: even when unlocked, odd while locked. Readers
// never lock; updaters validate a short traversal, try-lock the
// predecessor at the version they observed, and increment the version on
// unlock so any validation that raced the update cannot later succeed.
package list

import (
	"sync/atomic"

	"github.com/agilira/synchrobench/internal/set"
)

type versionedNode struct {
	key     set.Key
	val     set.Value
	next    atomic.Pointer[versionedNode]
	deleted atomic.Bool
	lock    atomic.Uint32 // even = unlocked, odd = locked
}

func (n *versionedNode) getVersion() uint32 {
	return n.lock.Load()
}

// tryLockAtVersion succeeds iff the lock is currently exactly version
// (hence even/unlocked) and CASes it to version+1 (odd/locked).
func (n *versionedNode) tryLockAtVersion(version uint32) bool {
	return n.lock.CompareAndSwap(version, version+1)
}

func (n *versionedNode) spinlock() {
	for {
		v := n.lock.Load()
		if v&1 == 0 && n.lock.CompareAndSwap(v, v+1) {
			return
		}
	}
}

// unlockAndIncrementVersion moves an odd (locked) version to the next even
// value, releasing the lock and invalidating any validation performed
// against the version this call started from.
func (n *versionedNode) unlockAndIncrementVersion() {
	n.lock.Add(1)
}

// VersionedList is the versioned try-lock ordered set.
type VersionedList struct {
	head *versionedNode
	size atomic.Int64
}

// NewVersioned constructs an empty versioned try-lock list.
func NewVersioned() *VersionedList {
	tail := &versionedNode{key: set.KeyMax}
	head := &versionedNode{key: set.KeyMin}
	head.next.Store(tail)
	return &VersionedList{head: head}
}

// Contains implements set.Set. It never locks (§4.3.3 "readers traverse
// without locking").
func (l *VersionedList) Contains(k set.Key) bool {
	curr := l.head
	for curr.key < k {
		curr = curr.next.Load()
	}
	return curr.key == k && !curr.deleted.Load()
}

// traverse walks from start recording the last node whose key < k.
func traverseVersioned(k set.Key, start *versionedNode) (prev, curr *versionedNode) {
	prev = start
	curr = start
	for curr.key < k {
		prev = curr
		curr = curr.next.Load()
	}
	return prev, curr
}

// validate re-walks from prev, recording prev's version just before the
// read that justified treating it as the predecessor. A true result
// guarantees prev was not deleted and curr == prev.next at the moment
// prevVersion was read.
func validateVersioned(k set.Key, prev, curr **versionedNode) (prevVersion uint32, ok bool) {
	for {
		prevVersion = (*prev).getVersion()
		if (*prev).deleted.Load() {
			return 0, false // full abort: caller must re-traverse
		}
		*curr = (*prev).next.Load()
		for (*curr).key < k {
			prevVersion = (*curr).getVersion()
			if (*curr).deleted.Load() {
				break // partial abort: retry validate from prev
			}
			*prev = *curr
			*curr = (*curr).next.Load()
			continue
		}
		if (*curr).key < k {
			continue // the break above landed us on a deleted node
		}
		return prevVersion, true
	}
}

// Insert implements set.Set.
func (l *VersionedList) Insert(k set.Key, v set.Value) bool {
	prev, curr := traverseVersioned(k, l.head)
	for {
		prevVersion, ok := validateVersioned(k, &prev, &curr)
		if !ok {
			prev, curr = traverseVersioned(k, l.head)
			continue
		}
		if curr.deleted.Load() {
			prev, curr = traverseVersioned(k, l.head)
			continue
		}
		if curr.key == k {
			return false
		}
		node := &versionedNode{key: k, val: v}
		node.next.Store(curr)
		if !prev.tryLockAtVersion(prevVersion) {
			continue // partial abort: re-validate, prev unchanged
		}
		prev.next.Store(node)
		l.size.Add(1)
		prev.unlockAndIncrementVersion()
		return true
	}
}

// Remove implements set.Set.
func (l *VersionedList) Remove(k set.Key) bool {
	prev, curr := traverseVersioned(k, l.head)
	for {
		prevVersion, ok := validateVersioned(k, &prev, &curr)
		if !ok {
			prev, curr = traverseVersioned(k, l.head)
			continue
		}
		if curr.key != k || curr.deleted.Load() {
			return false
		}
		if !prev.tryLockAtVersion(prevVersion) {
			continue
		}
		curr.spinlock()
		curr.deleted.Store(true)
		prev.next.Store(curr.next.Load())
		curr.unlockAndIncrementVersion()
		prev.unlockAndIncrementVersion()
		l.size.Add(-1)
		return true
	}
}

// Size implements set.Set.
func (l *VersionedList) Size() int { return int(l.size.Load()) }

// Close implements set.Set.
func (l *VersionedList) Close() error { return nil }
