// nohotspot.go: no-hot-spot skip list (§4.4.3).
//
// Grounded on original_source/c-cpp/src/skiplists/nohotspot/{skiplist.c,
// background.c, garbagecoll.h} (Crain, Gramoli, Raynal, "No Hot-Spot
// Non-Blocking Skip List", ICDCS 2013): worker goroutines only ever touch
// the bottom-level node list, and only logically delete (nohotspot_ops.c's
// sl_finish_delete just clears the value); physical removal is reserved
// for the background thread alone (background.c's bg_remove/
// bg_help_remove), which is exactly the point of the algorithm — index
// levels and physical unlinking are both single-writer, so neither is ever
// a multi-thread CAS contention hot spot. Where the original recovers from
// a stale search position via node->prev (sl_do_operation's
// `while (node == node->val) node = node->prev`, walking back through
// self-pointing, physically-removed nodes until it lands on one still
// reachable), this keeps the same recovery idiom but as an explicit
// removed flag plus a prev backlink, since Go has no natural analogue of a
// value pointing at its own node. Index levels are represented as an
// immutable, atomically-swapped slice of shortcut pointers — a
// copy-on-write snapshot readable by any number of workers without
// synchronization, the idiomatic Go analogue of "only the background
// thread ever writes here".
package skiplist

import (
	"sort"
	"sync/atomic"

	"github.com/agilira/synchrobench/internal/maintenance"
	"github.com/agilira/synchrobench/internal/set"
)

type nhsNode struct {
	key     set.Key
	val     set.Value
	deleted atomic.Bool
	// removed is set only by the maintenance thread, only after it has
	// physically unlinked this node from the live chain (mirrors the
	// original's node->val == node self-reference). A node observed with
	// removed == false is guaranteed still reachable by forward traversal
	// from head.
	removed atomic.Bool
	next    atomic.Pointer[nhsNode]
	// prev records this node's predecessor at the moment it was linked in.
	// It need not be the node's *current* predecessor — only live enough
	// that walking it backward through removed nodes eventually reaches
	// one that is. See resolve.
	prev atomic.Pointer[nhsNode]
}

const nhsIndexLevels = 4
const nhsIndexFanout = 4

// NoHotSpotSkipList is the no-hot-spot skip list plus its background
// maintenance thread.
type NoHotSpotSkipList struct {
	head, tail *nhsNode
	index      atomic.Pointer[[nhsIndexLevels][]*nhsNode]
	maintain   *maintenance.Thread
	size       atomic.Int64
}

// NewNoHotSpot constructs a no-hot-spot skip list. If params.StartBackground
// is set, the maintenance thread is started immediately.
func NewNoHotSpot(params set.Params) *NoHotSpotSkipList {
	params = params.Normalize()
	tail := &nhsNode{key: set.KeyMax}
	head := &nhsNode{key: set.KeyMin}
	head.next.Store(tail)
	s := &NoHotSpotSkipList{head: head, tail: tail}
	s.maintain = maintenance.NewThread(params.BackgroundSleep, s.maintenancePass)
	if params.StartBackground {
		s.maintain.Start()
	}
	return s
}

// resolve walks n backward through its prev chain while n has been
// physically unlinked by the maintenance thread, landing on the nearest
// node still reachable from head. Mirrors nohotspot_ops.c's
// `while (node == node->val) node = node->prev`.
func (s *NoHotSpotSkipList) resolve(n *nhsNode) *nhsNode {
	for n != s.head && n.removed.Load() {
		n = n.prev.Load()
	}
	return n
}

// startNode returns the deepest index shortcut whose key is <= k, or head,
// resolved against any physical removal the index hasn't caught up with yet.
func (s *NoHotSpotSkipList) startNode(k set.Key) *nhsNode {
	snap := s.index.Load()
	if snap == nil {
		return s.head
	}
	for level := nhsIndexLevels - 1; level >= 0; level-- {
		levelNodes := snap[level]
		if len(levelNodes) == 0 {
			continue
		}
		i := sort.Search(len(levelNodes), func(i int) bool { return levelNodes[i].key > k })
		if i > 0 {
			return s.resolve(levelNodes[i-1])
		}
	}
	return s.head
}

// Contains implements set.Set.
func (s *NoHotSpotSkipList) Contains(k set.Key) bool {
	pred := s.startNode(k)
	curr := pred.next.Load()
	for curr != s.tail && curr.key < k {
		pred = s.resolve(curr)
		curr = pred.next.Load()
	}
	return curr != s.tail && curr.key == k && !curr.deleted.Load()
}

// Insert implements set.Set.
func (s *NoHotSpotSkipList) Insert(k set.Key, v set.Value) bool {
	for {
		pred := s.startNode(k)
		curr := pred.next.Load()
		for curr != s.tail && curr.key < k {
			pred = s.resolve(curr)
			curr = pred.next.Load()
		}
		if curr != s.tail && curr.key == k && !curr.deleted.Load() {
			return false
		}
		node := &nhsNode{key: k, val: v}
		node.prev.Store(pred)
		node.next.Store(curr)
		if pred.next.CompareAndSwap(curr, node) {
			if curr != s.tail {
				curr.prev.Store(node)
			}
			s.size.Add(1)
			return true
		}
	}
}

// Remove implements set.Set. Workers only ever logically delete; physical
// unlinking is the maintenance thread's job alone (background.c's
// bg_remove), which is what makes resolve's removed-flag invariant hold.
func (s *NoHotSpotSkipList) Remove(k set.Key) bool {
	pred := s.startNode(k)
	curr := pred.next.Load()
	for curr != s.tail && curr.key < k {
		pred = s.resolve(curr)
		curr = pred.next.Load()
	}
	if curr == s.tail || curr.key != k {
		return false
	}
	if !curr.deleted.CompareAndSwap(false, true) {
		return false
	}
	s.size.Add(-1)
	return true
}

// Size implements set.Set.
func (s *NoHotSpotSkipList) Size() int { return int(s.size.Load()) }

// Start implements set.BackgroundEngine.
func (s *NoHotSpotSkipList) Start() { s.maintain.Start() }

// Stop implements set.BackgroundEngine.
func (s *NoHotSpotSkipList) Stop() { s.maintain.Stop() }

// Stats implements set.BackgroundEngine.
func (s *NoHotSpotSkipList) Stats() set.BackgroundStats { return s.maintain.Stats() }

// Close implements set.Set.
func (s *NoHotSpotSkipList) Close() error {
	s.maintain.Stop()
	return nil
}

// maintenancePass is one bg_loop iteration (background.c): first it
// physically removes every node a worker only managed to flag
// (bg_trav_nodes/bg_remove/bg_help_remove), marking each one removed so
// any worker still holding a stale reference recovers via resolve, then it
// rebuilds the index snapshot from the now-clean bottom level
// (bg_raise_nlevel/bg_raise_ilevel).
func (s *NoHotSpotSkipList) maintenancePass() set.BackgroundStats {
	var stats set.BackgroundStats

	prev := s.head
	node := prev.next.Load()
	live := make([]*nhsNode, 0, 64)
	for node != s.tail {
		next := node.next.Load()
		if node.deleted.Load() {
			stats.DeleteAttempts++
			if prev.next.CompareAndSwap(node, next) {
				node.removed.Store(true)
				stats.DeleteSucceeds++
			}
			// prev stays put whether or not the CAS won: either it now
			// points past node, or a worker moved it first and the next
			// pass retries against whatever the chain looks like then.
		} else {
			live = append(live, node)
			prev = node
		}
		node = next
	}

	var snap [nhsIndexLevels][]*nhsNode
	fanout := nhsIndexFanout
	for level := 0; level < nhsIndexLevels; level++ {
		var picked []*nhsNode
		for i := 0; i < len(live); i += fanout {
			picked = append(picked, live[i])
		}
		snap[level] = picked
		if len(picked) > 0 {
			stats.Raises += uint64(len(picked))
		}
		fanout *= nhsIndexFanout
	}
	if old := s.index.Load(); old != nil {
		oldCount := 0
		for _, lv := range old {
			oldCount += len(lv)
		}
		newCount := 0
		for _, lv := range snap {
			newCount += len(lv)
		}
		if newCount < oldCount {
			stats.Lowers += uint64(oldCount - newCount)
		}
	}
	s.index.Store(&snap)

	return stats
}
