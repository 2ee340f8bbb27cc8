// engines.go: external factory functions for every ordered-set engine.
//
// This is the one place a caller outside internal/ needs to import to
// reach any engine; it mirrors the teacher's top-level NewCache/
// NewGenericCache re-export pattern, just fanned out over many engines
// instead of one. Names here favor the engine's algorithm (LazyList,
// FraserSkipList, KungLehmanTree) over its internal package-qualified
// type name, so a caller never has to import internal/list etc. directly.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package synchrobench

import (
	"sort"

	"github.com/agilira/synchrobench/internal/list"
	"github.com/agilira/synchrobench/internal/set"
	"github.com/agilira/synchrobench/internal/skiplist"
	"github.com/agilira/synchrobench/internal/tree"
)

// List engines (§4.3). None of these needs an externally supplied
// *gc.Runtime: they are all lock-based (coupling, lazy, versioned) or
// help-based lock-free (LockFree) in a way that never hands a freed node
// back to an allocator a concurrent reader might still be dereferencing —
// Go's own garbage collector is the reclamation mechanism, which is the
// DESIGN.md-recorded resolution for why internal/list doesn't thread a
// *gc.Runtime through these constructors. No tree constructor takes one
// either; the Manber-Ladner tree builds and owns its own.

// NewCouplingList constructs the hand-over-hand lock-coupling list (§4.3.1).
func NewCouplingList() *list.CouplingList { return list.NewCoupling() }

// NewLazyList constructs the optimistic lazy list (§4.3.2).
func NewLazyList() *list.LazyList { return list.NewLazy() }

// NewVersionedList constructs the versioned try-lock list (§4.3.3).
func NewVersionedList() *list.VersionedList { return list.NewVersioned() }

// NewLockFreeList constructs the Fomitchev/Harris-style lock-free list
// (§4.3.4).
func NewLockFreeList() *list.LockFreeList { return list.NewLockFree() }

// Skip-list engines (§4.4).

// NewLockedSkipList constructs the coarse/medium/fine lock skip list
// (§4.4.1).
func NewLockedSkipList(granularity skiplist.LockGranularity, maxLevels int) *skiplist.LockedSkipList {
	return skiplist.NewLocked(granularity, maxLevels)
}

// NewFraserSkipList constructs the CAS-only lock-free skip list (§4.4.2).
func NewFraserSkipList(maxLevels int) *skiplist.FraserSkipList {
	return skiplist.NewFraser(maxLevels)
}

// NewNoHotSpotSkipList constructs the no-hot-spot skip list and its
// maintenance thread (§4.4.3).
func NewNoHotSpotSkipList(params set.Params) *skiplist.NoHotSpotSkipList {
	return skiplist.NewNoHotSpot(params)
}

// NewRotatingSkipList constructs the rotating no-hot-spot skip list and
// its maintenance thread (§4.4.4).
func NewRotatingSkipList(params set.Params) *skiplist.RotatingSkipList {
	return skiplist.NewRotating(params)
}

// Tree engines (§4.5).

// NewKungLehmanTree constructs the lock-coupled Kung-Lehman BST (§4.5.1).
func NewKungLehmanTree() *tree.KungLehmanTree { return tree.NewKungLehman() }

// NewManberLadnerTree constructs the predecessor-substitution BST, with
// its own epoch-reclamation runtime (§4.5.2).
func NewManberLadnerTree() *tree.ManberLadnerTree { return tree.NewManberLadner() }

// NewHankeTree constructs the relaxed-balance-inspired red-black tree
// (§4.5.3).
func NewHankeTree() *tree.RedBlackTree { return tree.NewRedBlack() }

// NewSpeculativeAVLTree constructs the speculation-friendly AVL tree and
// its maintenance thread (§4.5.4).
func NewSpeculativeAVLTree(params set.Params) *tree.AVLTree { return tree.NewAVL(params) }

// Engines returns every engine name recognized by the CLI harness (§6.4),
// along with a constructor that builds it as a plain set.Set with default
// parameters. Names with a maintenance thread are also available via
// BackgroundEngines.
func Engines() map[string]func() set.Set {
	return map[string]func() set.Set{
		"coupling-list":  func() set.Set { return NewCouplingList() },
		"lazy-list":      func() set.Set { return NewLazyList() },
		"versioned-list": func() set.Set { return NewVersionedList() },
		"lockfree-list":  func() set.Set { return NewLockFreeList() },

		"coarse-skiplist": func() set.Set { return NewLockedSkipList(skiplist.CoarseLock, set.DefaultInitialLevelMax) },
		"medium-skiplist": func() set.Set { return NewLockedSkipList(skiplist.MediumLock, set.DefaultInitialLevelMax) },
		"fine-skiplist":   func() set.Set { return NewLockedSkipList(skiplist.FineLock, set.DefaultInitialLevelMax) },
		"fraser-skiplist": func() set.Set { return NewFraserSkipList(set.DefaultInitialLevelMax) },

		"kunglehman-tree":  func() set.Set { return NewKungLehmanTree() },
		"manberladner-tree": func() set.Set { return NewManberLadnerTree() },
		"rbtree":           func() set.Set { return NewHankeTree() },
	}
}

// BackgroundEngines returns every engine name that also implements
// set.BackgroundEngine, constructed with the given params.
func BackgroundEngines(params set.Params) map[string]func() set.BackgroundEngine {
	return map[string]func() set.BackgroundEngine{
		"nohotspot-skiplist": func() set.BackgroundEngine { return NewNoHotSpotSkipList(params) },
		"rotating-skiplist":  func() set.BackgroundEngine { return NewRotatingSkipList(params) },
		"avl-tree":           func() set.BackgroundEngine { return NewSpeculativeAVLTree(params) },
	}
}

// EngineNames returns every recognized engine name (both plain and
// background), sorted, for CLI help text and flag validation.
func EngineNames() []string {
	names := make([]string, 0, 14)
	for name := range Engines() {
		names = append(names, name)
	}
	for name := range BackgroundEngines(set.Params{}) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewEngine constructs the named engine as a set.Set. Background engines
// are returned with their maintenance thread already started
// (params.StartBackground is forced true) since a caller going through
// this generic path has no other way to start it.
func NewEngine(name string, params set.Params) (set.Set, error) {
	if ctor, ok := Engines()[name]; ok {
		return ctor(), nil
	}
	params.StartBackground = true
	if ctor, ok := BackgroundEngines(params)[name]; ok {
		return ctor(), nil
	}
	return nil, NewErrUnknownEngine(name, EngineNames())
}
