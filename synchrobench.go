// Package synchrobench provides a family of concurrent ordered-set engines
// — lists, skip lists, and balanced trees — built around a single abstract
// contract (Set), with an epoch-based reclamation runtime used by the
// Manber-Ladner tree.
//
// Example usage:
//
//	s := synchrobench.NewLazyList()
//	s.Insert(5, nil)
//	s.Contains(5)
//	s.Remove(5)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package synchrobench

const (
	// Version of the synchrobench module.
	Version = "v0.1.0-dev"

	// DefaultKeyRange bounds the workload generator's random key draws
	// when the CLI harness is not given an explicit -r value.
	DefaultKeyRange = 1 << 20
)
