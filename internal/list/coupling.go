// coupling.go: hand-over-hand lock-coupling list (§4.3.1).
//
// Grounded on original_source/c-cpp/src/linkedlists/lock-coupling-list/
// coupling.c: traversal holds the current and next node's locks
// simultaneously, releasing the predecessor only once the successor's lock
// is held, so no other thread can ever observe a gap in the locked chain.
package list

import (
	"sync"
	"sync/atomic"

	"github.com/agilira/synchrobench/internal/set"
)

type couplingNode struct {
	key  set.Key
	val  set.Value
	mu   sync.Mutex
	next *couplingNode
}

// CouplingList is the hand-over-hand lock-coupling ordered set.
type CouplingList struct {
	head *couplingNode
	size atomic.Int64
}

// NewCoupling constructs an empty list bracketed by the KeyMin/KeyMax
// sentinels (§3 invariant 2).
func NewCoupling() *CouplingList {
	tail := &couplingNode{key: set.KeyMax}
	head := &couplingNode{key: set.KeyMin, next: tail}
	return &CouplingList{head: head}
}

// Contains implements set.Set.
func (l *CouplingList) Contains(k set.Key) bool {
	curr := l.head
	curr.mu.Lock()
	next := curr.next
	next.mu.Lock()

	for next.key < k {
		curr.mu.Unlock()
		curr = next
		next = curr.next
		next.mu.Lock()
	}
	found := next.key == k
	curr.mu.Unlock()
	next.mu.Unlock()
	return found
}

// Insert implements set.Set.
func (l *CouplingList) Insert(k set.Key, v set.Value) bool {
	curr := l.head
	curr.mu.Lock()
	next := curr.next
	next.mu.Lock()

	for next.key < k {
		curr.mu.Unlock()
		curr = next
		next = curr.next
		next.mu.Lock()
	}
	found := next.key == k
	if !found {
		node := &couplingNode{key: k, val: v, next: next}
		curr.next = node
		l.size.Add(1)
	}
	curr.mu.Unlock()
	next.mu.Unlock()
	return !found
}

// Remove implements set.Set.
func (l *CouplingList) Remove(k set.Key) bool {
	curr := l.head
	curr.mu.Lock()
	next := curr.next
	next.mu.Lock()

	for next.key < k {
		curr.mu.Unlock()
		curr = next
		next = curr.next
		next.mu.Lock()
	}
	found := next.key == k
	if found {
		curr.next = next.next
		l.size.Add(-1)
	}
	curr.mu.Unlock()
	next.mu.Unlock()
	return found
}

// Size implements set.Set.
func (l *CouplingList) Size() int { return int(l.size.Load()) }

// Close implements set.Set. The coupling list owns no background thread.
func (l *CouplingList) Close() error { return nil }
