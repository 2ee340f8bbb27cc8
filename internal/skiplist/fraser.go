// fraser.go: Fraser-style CAS-only lock-free skip list (§4.4.2).
//
// Grounded on original_source/c-cpp/src/skiplists/fraser/{skip_cas.c,
// ptst.h}: level 0 is the authoritative sorted list and carries the only
// linearization points; higher levels are index shortcuts threaded in with
// best-effort CAS and repaired lazily by whichever searcher notices a stale
// edge. Deletion marks every level from the top down before physically
// unlinking, so a concurrent searcher never observes a half-removed node at
// a level below one it has already passed.
package skiplist

import (
	"github.com/agilira/synchrobench/internal/list"
	"github.com/agilira/synchrobench/internal/rng"
	"github.com/agilira/synchrobench/internal/set"
	"sync/atomic"
)

type fraserNode struct {
	key      set.Key
	val      set.Value
	topLevel int
	next     []list.TaggedEdge[fraserNode]
}

// FraserSkipList is the CAS-only lock-free skip list.
type FraserSkipList struct {
	maxLevel int
	head     *fraserNode
	scratch  *rng.Scratch
	size     atomic.Int64
}

// NewFraser constructs an empty Fraser skip list.
func NewFraser(maxLevel int) *FraserSkipList {
	if maxLevel < 1 {
		maxLevel = set.DefaultInitialLevelMax
	}
	tail := &fraserNode{key: set.KeyMax, topLevel: maxLevel, next: make([]list.TaggedEdge[fraserNode], maxLevel+1)}
	head := &fraserNode{key: set.KeyMin, topLevel: maxLevel, next: make([]list.TaggedEdge[fraserNode], maxLevel+1)}
	for i := 0; i <= maxLevel; i++ {
		head.next[i].Store(tail, false, false)
	}
	return &FraserSkipList{maxLevel: maxLevel, head: head, scratch: rng.New(2)}
}

// find locates, at every level, the predecessor/successor pair that brackets
// k, physically unlinking any marked node it passes through.
func (s *FraserSkipList) find(k set.Key, preds, succs []*fraserNode) int {
	var lFound int
retry:
	lFound = -1
	pred := s.head
	for level := s.maxLevel; level >= 0; level-- {
		curr, _, _ := pred.next[level].Load()
		for {
			currNext, currMark, _ := curr.next[level].Load()
			for currMark {
				unlinked, _, _ := pred.next[level].Load()
				if unlinked != curr {
					goto retry
				}
				if !pred.next[level].CAS(curr, false, false, currNext, false, false) {
					goto retry
				}
				curr = currNext
				currNext, currMark, _ = curr.next[level].Load()
			}
			if curr.key >= k {
				break
			}
			pred = curr
			curr = currNext
		}
		if lFound == -1 && curr.key == k {
			lFound = level
		}
		preds[level] = pred
		succs[level] = curr
	}
	return lFound
}

// Contains implements set.Set.
func (s *FraserSkipList) Contains(k set.Key) bool {
	pred := s.head
	for level := s.maxLevel; level >= 0; level-- {
		curr, _, _ := pred.next[level].Load()
		for curr.key < k {
			pred = curr
			curr, _, _ = pred.next[level].Load()
		}
		if curr.key == k {
			_, mark, _ := curr.next[0].Load()
			return !mark
		}
	}
	return false
}

// Insert implements set.Set.
func (s *FraserSkipList) Insert(k set.Key, v set.Value) bool {
	topLevel := s.scratch.SkipListLevel(s.maxLevel+1) - 1
	preds := make([]*fraserNode, s.maxLevel+1)
	succs := make([]*fraserNode, s.maxLevel+1)

	for {
		lFound := s.find(k, preds, succs)
		if lFound != -1 {
			return false
		}

		node := &fraserNode{key: k, val: v, topLevel: topLevel, next: make([]list.TaggedEdge[fraserNode], topLevel+1)}
		for level := 0; level <= topLevel; level++ {
			node.next[level].Store(succs[level], false, false)
		}
		if !preds[0].next[0].CAS(succs[0], false, false, node, false, false) {
			continue
		}
		s.size.Add(1)

		for level := 1; level <= topLevel; level++ {
			for {
				node.next[level].Store(succs[level], false, false)
				if preds[level].next[level].CAS(succs[level], false, false, node, false, false) {
					break
				}
				s.find(k, preds, succs)
			}
		}
		return true
	}
}

// Remove implements set.Set.
func (s *FraserSkipList) Remove(k set.Key) bool {
	preds := make([]*fraserNode, s.maxLevel+1)
	succs := make([]*fraserNode, s.maxLevel+1)
	lFound := s.find(k, preds, succs)
	if lFound == -1 {
		return false
	}
	victim := succs[lFound]

	for level := victim.topLevel; level >= 1; level-- {
		next, mark, _ := victim.next[level].Load()
		for !mark {
			victim.next[level].CAS(next, false, false, next, true, false)
			next, mark, _ = victim.next[level].Load()
		}
	}
	next, mark, _ := victim.next[0].Load()
	for {
		swapped := victim.next[0].CAS(next, false, false, next, true, false)
		if swapped {
			s.size.Add(-1)
			s.find(k, preds, succs) // help physically unlink
			return true
		}
		next, mark, _ = victim.next[0].Load()
		if mark {
			return false
		}
	}
}

// Size implements set.Set.
func (s *FraserSkipList) Size() int { return int(s.size.Load()) }

// Close implements set.Set.
func (s *FraserSkipList) Close() error { return nil }
