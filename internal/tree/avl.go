// avl.go: speculation-friendly AVL tree (§4.5.4).
//
// Grounded on original_source's newavltree/{newavltree.c,newavltree.h} and
// sftree/sftree.h ("Fast Concurrent Lock-free Binary Search Trees" /
// speculation-friendly tree family): an avl_node_t carries both a
// "deleted" flag and a separate "removed" flag, and lefth/righth/localh
// height fields that only the maintenance thread writes. Worker goroutines
// never rebalance and never physically unlink a node — Insert attaches a
// new leaf with a single CAS, Remove only flips the deleted flag. A
// background maintenance thread walks the tree, physically prunes any
// deleted node once it has at most one child, recomputes heights bottom-up,
// and performs the AVL rotations needed to keep every subtree within the
// +-1 balance invariant — the same division of labor as the no-hot-spot
// skip lists (§4.4.3, §4.4.4), applied to a tree instead of an index.
package tree

import (
	"sync/atomic"

	"github.com/agilira/synchrobench/internal/maintenance"
	"github.com/agilira/synchrobench/internal/set"
)

type avlNode struct {
	key     set.Key
	val     set.Value
	deleted atomic.Bool
	left    atomic.Pointer[avlNode]
	right   atomic.Pointer[avlNode]
	height  atomic.Int32 // maintenance-owned
}

// AVLTree is the speculation-friendly AVL tree plus its background
// maintenance thread.
type AVLTree struct {
	root     atomic.Pointer[avlNode]
	maintain *maintenance.Thread
	size     atomic.Int64
}

// NewAVL constructs an empty AVL tree. If params.StartBackground is set,
// the maintenance thread is started immediately.
func NewAVL(params set.Params) *AVLTree {
	params = params.Normalize()
	t := &AVLTree{}
	t.maintain = maintenance.NewThread(params.BackgroundSleep, t.maintenancePass)
	if params.StartBackground {
		t.maintain.Start()
	}
	return t
}

// Contains implements set.Set. It never locks.
func (t *AVLTree) Contains(k set.Key) bool {
	n := t.root.Load()
	for n != nil && n.key != k {
		if k < n.key {
			n = n.left.Load()
		} else {
			n = n.right.Load()
		}
	}
	return n != nil && !n.deleted.Load()
}

// Insert implements set.Set.
func (t *AVLTree) Insert(k set.Key, v set.Value) bool {
	for {
		if t.root.Load() == nil {
			node := &avlNode{key: k, val: v, height: atomic.Int32{}}
			node.height.Store(1)
			if t.root.CompareAndSwap(nil, node) {
				t.size.Add(1)
				return true
			}
			continue
		}

		parent := t.root.Load()
		for {
			if k == parent.key {
				if !parent.deleted.Load() {
					return false
				}
				parent.val = v
				parent.deleted.Store(false)
				t.size.Add(1)
				return true
			}
			var slot *atomic.Pointer[avlNode]
			if k < parent.key {
				slot = &parent.left
			} else {
				slot = &parent.right
			}
			next := slot.Load()
			if next == nil {
				node := &avlNode{key: k, val: v}
				node.height.Store(1)
				if slot.CompareAndSwap(nil, node) {
					t.size.Add(1)
					return true
				}
				break // retry whole insert: lost the race for this slot
			}
			parent = next
		}
	}
}

// Remove implements set.Set. It only flips the logical-delete flag;
// physical removal happens in the next maintenance pass.
func (t *AVLTree) Remove(k set.Key) bool {
	n := t.root.Load()
	for n != nil && n.key != k {
		if k < n.key {
			n = n.left.Load()
		} else {
			n = n.right.Load()
		}
	}
	if n == nil {
		return false
	}
	if !n.deleted.CompareAndSwap(false, true) {
		return false
	}
	t.size.Add(-1)
	return true
}

// Size implements set.Set.
func (t *AVLTree) Size() int { return int(t.size.Load()) }

// Start implements set.BackgroundEngine.
func (t *AVLTree) Start() { t.maintain.Start() }

// Stop implements set.BackgroundEngine.
func (t *AVLTree) Stop() { t.maintain.Stop() }

// Stats implements set.BackgroundEngine.
func (t *AVLTree) Stats() set.BackgroundStats { return t.maintain.Stats() }

// Close implements set.Set.
func (t *AVLTree) Close() error {
	t.maintain.Stop()
	return nil
}

func avlHeight(n *avlNode) int32 {
	if n == nil {
		return 0
	}
	return n.height.Load()
}

func avlUpdateHeight(n *avlNode, left, right *avlNode) {
	lh, rh := avlHeight(left), avlHeight(right)
	if lh > rh {
		n.height.Store(lh + 1)
	} else {
		n.height.Store(rh + 1)
	}
}

// casChild swaps slot from old to new and reports whether it won. It is
// only ever called with old == the value the maintenance thread itself
// read moments earlier; the CAS fails only when that value was nil and a
// worker's Insert raced a fresh leaf into the slot via its own
// CompareAndSwap(nil, node) in the interim — in which case the maintenance
// thread must not clobber it.
func casChild(slot *atomic.Pointer[avlNode], old, new *avlNode) (*avlNode, bool) {
	if old == new {
		return new, true
	}
	if slot.CompareAndSwap(old, new) {
		return new, true
	}
	return slot.Load(), false
}

// avlRotateLeft performs a left rotation around x, reporting false (and
// leaving x untouched) if a worker concurrently attached a fresh leaf to
// x.right's left child before the rotation could claim that slot.
func avlRotateLeft(x *avlNode) (*avlNode, bool) {
	y := x.right.Load()
	yLeft := y.left.Load()
	if _, ok := casChild(&y.left, yLeft, x); !ok {
		return x, false
	}
	x.right.Store(yLeft)
	avlUpdateHeight(x, x.left.Load(), x.right.Load())
	avlUpdateHeight(y, y.left.Load(), y.right.Load())
	return y, true
}

// avlRotateRight is avlRotateLeft's mirror image.
func avlRotateRight(x *avlNode) (*avlNode, bool) {
	y := x.left.Load()
	yRight := y.right.Load()
	if _, ok := casChild(&y.right, yRight, x); !ok {
		return x, false
	}
	x.left.Store(yRight)
	avlUpdateHeight(x, x.left.Load(), x.right.Load())
	avlUpdateHeight(y, y.left.Load(), y.right.Load())
	return y, true
}

// maintenancePass recomputes heights bottom-up, prunes deleted nodes with
// at most one child, and rebalances every subtree that has drifted past
// the AVL invariant.
func (t *AVLTree) maintenancePass() set.BackgroundStats {
	var stats set.BackgroundStats
	oldRoot := t.root.Load()
	newRoot := t.rebalance(oldRoot, &stats)
	casChild(&t.root, oldRoot, newRoot)
	return stats
}

func (t *AVLTree) rebalance(n *avlNode, stats *set.BackgroundStats) *avlNode {
	if n == nil {
		return nil
	}
	oldLeft := n.left.Load()
	left, leftOK := casChild(&n.left, oldLeft, t.rebalance(oldLeft, stats))
	oldRight := n.right.Load()
	right, rightOK := casChild(&n.right, oldRight, t.rebalance(oldRight, stats))
	if !leftOK || !rightOK {
		// a worker attached a fresh leaf to one of n's slots while this
		// pass was rebalancing it; leave n as-is and let the next pass
		// pick up the now-current shape instead of losing the insert.
		return n
	}

	if n.deleted.Load() {
		stats.DeleteAttempts++
		switch {
		case left == nil:
			stats.DeleteSucceeds++
			return right
		case right == nil:
			stats.DeleteSucceeds++
			return left
		}
	}

	avlUpdateHeight(n, left, right)
	balance := avlHeight(left) - avlHeight(right)

	switch {
	case balance > 1:
		if avlHeight(left.left.Load()) < avlHeight(left.right.Load()) {
			if rotated, ok := avlRotateLeft(left); ok {
				if _, ok := casChild(&n.left, left, rotated); ok {
					left = rotated
					stats.Raises++
				}
			}
		}
		stats.Raises++
		if rotated, ok := avlRotateRight(n); ok {
			return rotated
		}
		return n
	case balance < -1:
		if avlHeight(right.right.Load()) < avlHeight(right.left.Load()) {
			if rotated, ok := avlRotateRight(right); ok {
				if _, ok := casChild(&n.right, right, rotated); ok {
					right = rotated
					stats.Lowers++
				}
			}
		}
		stats.Lowers++
		if rotated, ok := avlRotateLeft(n); ok {
			return rotated
		}
		return n
	default:
		return n
	}
}
