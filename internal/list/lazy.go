// lazy.go: optimistic lazy list (§4.3.2).
//
// Traversal is lock-free and may read stale successors; once a candidate
// (prev, curr) pair is found the two are locked and validated (still
// non-deleted, still adjacent) before the mutation is applied. A per-node
// marked flag announces logical deletion ahead of the physical unlink,
// grounded on the classic Heller/Herlihy lazy-list algorithm that
// original_source's lazy-list directory implements in C.
package list

import (
	"sync"
	"sync/atomic"

	"github.com/agilira/synchrobench/internal/set"
)

type lazyNode struct {
	key    set.Key
	val    set.Value
	mu     sync.Mutex
	marked atomic.Bool
	next   atomic.Pointer[lazyNode]
}

// LazyList is the optimistic lazy ordered set.
type LazyList struct {
	head *lazyNode
	size atomic.Int64
}

// NewLazy constructs an empty lazy list.
func NewLazy() *LazyList {
	tail := &lazyNode{key: set.KeyMax}
	head := &lazyNode{key: set.KeyMin}
	head.next.Store(tail)
	return &LazyList{head: head}
}

// search returns the predecessor and the first node whose key is >= k,
// without taking any lock (§4.3.2 "traversal is lock-free").
func (l *LazyList) search(k set.Key) (prev, curr *lazyNode) {
	prev = l.head
	curr = prev.next.Load()
	for curr.key < k {
		prev = curr
		curr = curr.next.Load()
	}
	return prev, curr
}

func validate(prev, curr *lazyNode) bool {
	return !prev.marked.Load() && !curr.marked.Load() && prev.next.Load() == curr
}

// Contains implements set.Set. It never locks: a node is present iff it is
// reachable and not marked (§4.3.2).
func (l *LazyList) Contains(k set.Key) bool {
	curr := l.head.next.Load()
	for curr.key < k {
		curr = curr.next.Load()
	}
	return curr.key == k && !curr.marked.Load()
}

// Insert implements set.Set.
func (l *LazyList) Insert(k set.Key, v set.Value) bool {
	for {
		prev, curr := l.search(k)
		prev.mu.Lock()
		curr.mu.Lock()
		if validate(prev, curr) {
			if curr.key == k {
				prev.mu.Unlock()
				curr.mu.Unlock()
				return false
			}
			node := &lazyNode{key: k, val: v}
			node.next.Store(curr)
			prev.next.Store(node)
			l.size.Add(1)
			prev.mu.Unlock()
			curr.mu.Unlock()
			return true
		}
		prev.mu.Unlock()
		curr.mu.Unlock()
		// validation failed: another update raced us, restart from the head.
	}
}

// Remove implements set.Set.
func (l *LazyList) Remove(k set.Key) bool {
	for {
		prev, curr := l.search(k)
		if curr.key != k {
			return false
		}
		prev.mu.Lock()
		curr.mu.Lock()
		if validate(prev, curr) {
			if curr.key != k {
				prev.mu.Unlock()
				curr.mu.Unlock()
				return false
			}
			curr.marked.Store(true)
			prev.next.Store(curr.next.Load())
			l.size.Add(-1)
			prev.mu.Unlock()
			curr.mu.Unlock()
			return true
		}
		prev.mu.Unlock()
		curr.mu.Unlock()
	}
}

// Size implements set.Set.
func (l *LazyList) Size() int { return int(l.size.Load()) }

// Close implements set.Set.
func (l *LazyList) Close() error { return nil }
