// tagged_pointer.go: the (reference, mark, flag) edge used by the
// Fomitchev/Harris-style lock-free list (§4.3.4) and reused, in spirit, by
// the Fraser skip list's per-level mark bit (§4.4.2, §9 "Tagged pointers").
//
// The C original packs mark/flag into the low two bits of the pointer
// itself (original_source's fomitchev.c pack_tuple/get_right). Go pointers
// are scanned and moved by the runtime's GC, so stealing their low bits is
// not available; the idiomatic substitute used here is a small immutable
// edge value addressed through a single atomic.Pointer, CAS'd as a whole.
// This gives the same single-word CAS semantics the algorithm needs
// (compare-and-swap the entire (next, mark, flag) triple atomically)
// without violating the collector's pointer invariants.
package list

import "sync/atomic"

// TaggedEdge is a CAS-able (next, mark, flag) triple.
type TaggedEdge[T any] struct {
	p atomic.Pointer[edgeVal[T]]
}

type edgeVal[T any] struct {
	next  *T
	mark  bool
	flag  bool
}

// Store unconditionally sets the edge.
func (e *TaggedEdge[T]) Store(next *T, mark, flag bool) {
	e.p.Store(&edgeVal[T]{next: next, mark: mark, flag: flag})
}

// Load returns the current (next, mark, flag) triple.
func (e *TaggedEdge[T]) Load() (next *T, mark, flag bool) {
	v := e.p.Load()
	if v == nil {
		return nil, false, false
	}
	return v.next, v.mark, v.flag
}

// CAS compares the current triple against (oldNext, oldMark, oldFlag) and,
// if equal, swaps in (newNext, newMark, newFlag). It reports success.
func (e *TaggedEdge[T]) CAS(oldNext *T, oldMark, oldFlag bool, newNext *T, newMark, newFlag bool) bool {
	old := e.p.Load()
	if old == nil || old.next != oldNext || old.mark != oldMark || old.flag != oldFlag {
		return false
	}
	return e.p.CompareAndSwap(old, &edgeVal[T]{next: newNext, mark: newMark, flag: newFlag})
}
