// lockfree.go: Fomitchev/Ruppert-style lock-free list (§4.3.4).
//
// Grounded on original_source/c-cpp/src/linkedlists/selfish/fomitchev.c
// ("Lock-free linked lists and skip lists", PODC 2004): each edge is a
// (next, mark, flag) triple (TaggedEdge), delete proceeds by flagging the
// predecessor then marking the target then helping complete the unlink,
// and insert/delete both recover from a marked predecessor by following
// its backlink.
package list

import (
	"sync/atomic"

	"github.com/agilira/synchrobench/internal/set"
)

type lfNode struct {
	key      set.Key
	val      set.Value
	next     TaggedEdge[lfNode]
	backlink atomic.Pointer[lfNode]
}

// LockFreeList is the Fomitchev/Ruppert lock-free ordered set.
type LockFreeList struct {
	head *lfNode
	size atomic.Int64
}

// NewLockFree constructs an empty lock-free list.
func NewLockFree() *LockFreeList {
	tail := &lfNode{key: set.KeyMax}
	head := &lfNode{key: set.KeyMin}
	head.next.Store(tail, false, false)
	return &LockFreeList{head: head}
}

// searchFromLE finds (n1, n2) with n1.key <= k < n2.key, helping complete
// any marked deletions it passes through (fomitchev_searchfrom).
func searchFromLE(k set.Key, start *lfNode) (n1, n2 *lfNode) {
	curr := start
	next, _, _ := curr.next.Load()
	for next.key <= k {
		for {
			_, nextMark, _ := next.next.Load()
			_, currMark, _ := curr.next.Load()
			currNext, _, _ := curr.next.Load()
			if !(nextMark && (!currMark || currNext != next)) {
				break
			}
			if currNext == next {
				helpMarked(curr, next)
			}
			next, _, _ = curr.next.Load()
		}
		if next.key <= k {
			curr = next
			next, _, _ = curr.next.Load()
		}
	}
	return curr, next
}

// searchFromLT finds (n1, n2) with n1.key < k <= n2.key
// (fomitchev_searchfrom2), used by delete and by tryFlag's retry.
func searchFromLT(k set.Key, start *lfNode) (n1, n2 *lfNode) {
	curr := start
	next, _, _ := curr.next.Load()
	for next.key < k {
		for {
			_, nextMark, _ := next.next.Load()
			_, currMark, _ := curr.next.Load()
			currNext, _, _ := curr.next.Load()
			if !(nextMark && (!currMark || currNext != next)) {
				break
			}
			if currNext == next {
				helpMarked(curr, next)
			}
			next, _, _ = curr.next.Load()
		}
		if next.key < k {
			curr = next
			next, _, _ = curr.next.Load()
		}
	}
	return curr, next
}

// helpMarked assumes prev is flagged and prev.next == del and del is
// marked; it swings prev.next past del.
func helpMarked(prev, del *lfNode) {
	delNext, _, _ := del.next.Load()
	prev.next.CAS(del, false, true, delNext, false, false)
}

// tryMark assumes del is preceded by a flagged node and attempts to mark
// del's own outgoing edge.
func tryMark(del *lfNode) {
	for {
		next, _, _ := del.next.Load()
		if del.next.CAS(next, false, false, next, true, false) {
			return
		}
		n, mark, flag := del.next.Load()
		if flag && !mark {
			helpFlagged(del, n)
		}
		if _, mark, _ := del.next.Load(); mark {
			return
		}
	}
}

// helpFlagged assumes prev is flagged with prev.next == del; it records
// the backlink, marks del if not already marked, then helps unlink it.
func helpFlagged(prev, del *lfNode) {
	del.backlink.Store(prev)
	if _, mark, _ := del.next.Load(); !mark {
		tryMark(del)
	}
	helpMarked(prev, del)
}

// tryFlag attempts to flag prev as the predecessor of target. It returns
// the node that ended up flagged (nil if target was concurrently deleted)
// and whether this call performed the flagging.
func tryFlag(prev, target *lfNode) (flagged *lfNode, didFlag bool) {
	for {
		next, mark, flag := prev.next.Load()
		if next == target && !mark && flag {
			return prev, false
		}
		if prev.next.CAS(target, false, false, target, false, true) {
			return prev, true
		}
		next, mark, flag = prev.next.Load()
		if next == target && !mark && flag {
			return prev, false
		}
		for {
			_, mark, _ := prev.next.Load()
			if !mark {
				break
			}
			prev = prev.backlink.Load()
		}
		var del *lfNode
		prev, del = searchFromLT(target.key, prev)
		if del != target {
			return nil, false
		}
	}
}

// Contains implements set.Set.
func (l *LockFreeList) Contains(k set.Key) bool {
	curr, _ := searchFromLE(k, l.head)
	return curr.key == k
}

// Insert implements set.Set.
func (l *LockFreeList) Insert(k set.Key, v set.Value) bool {
	prev, next := searchFromLE(k, l.head)
	if prev.key == k {
		return false
	}
	node := &lfNode{key: k, val: v}
	for {
		prevNext, prevMark, prevFlag := prev.next.Load()
		if prevFlag && !prevMark {
			helpFlagged(prev, prevNext)
		} else {
			node.next.Store(next, false, false)
			if prev.next.CAS(next, false, false, node, false, false) {
				l.size.Add(1)
				return true
			}
			prevNext, _, prevFlag = prev.next.Load()
			if prevFlag {
				helpFlagged(prev, prevNext)
			}
			for {
				_, mark, _ := prev.next.Load()
				if !mark {
					break
				}
				prev = prev.backlink.Load()
			}
		}
		prev, next = searchFromLE(k, prev)
		if prev.key == k {
			return false
		}
	}
}

// Remove implements set.Set.
func (l *LockFreeList) Remove(k set.Key) bool {
	prev, del := searchFromLT(k, l.head)
	if del.key != k {
		return false
	}
	flagged, didFlag := tryFlag(prev, del)
	if flagged != nil {
		helpFlagged(flagged, del)
	}
	if !didFlag {
		return false
	}
	l.size.Add(-1)
	return true
}

// Size implements set.Set.
func (l *LockFreeList) Size() int { return int(l.size.Load()) }

// Close implements set.Set.
func (l *LockFreeList) Close() error { return nil }
