// config.go: harness-level configuration for synchrobench.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package synchrobench

import (
	"time"

	timecache "github.com/agilira/go-timecache"

	"github.com/agilira/synchrobench/internal/set"
)

// Config holds the parameters used by cmd/synchrobench to construct and
// drive an engine (§6.4). Engine-internal construction parameters
// (level counts, background-sleep interval) live in internal/set.Params;
// Config wraps one of those plus the workload knobs.
type Config struct {
	// Engine selects which constructor to run, e.g. "lazy-list",
	// "fraser-skiplist", "rbtree". See Engines() for the full set.
	Engine string

	// Duration bounds how long the workload runs before the harness
	// signals every worker to stop (-d). Zero is normalized to
	// DefaultDuration.
	Duration time.Duration

	// InitialSize is the number of keys pre-populated before workers
	// start (-i).
	InitialSize int

	// Threads is the number of concurrent worker goroutines (-t).
	Threads int

	// KeyRange bounds the random key draws to [1, KeyRange] (-r).
	KeyRange int

	// UpdatePercent is the fraction, 0-100, of operations that are
	// Insert/Remove rather than Contains (-u).
	UpdatePercent int

	// Seed seeds the workload's per-goroutine PRNGs (-S). Zero means
	// derive a seed from the current time.
	Seed int64

	// Params is passed through to the engine constructor unchanged.
	Params set.Params

	// Logger is used for harness diagnostics. If nil, NoOpLogger is
	// used. Default: NoOpLogger.
	Logger Logger

	// TimeProvider provides current time for duration-bounded runs.
	// If nil, a cached-clock implementation is used.
	TimeProvider TimeProvider

	// MetricsCollector records per-op and per-pass counters. If nil,
	// NoOpMetricsCollector is used (zero overhead).
	MetricsCollector MetricsCollector
}

const (
	// DefaultDuration matches the common synchrobench CLI default.
	DefaultDuration = 10 * time.Second
	// DefaultInitialSize is the default pre-populated key count.
	DefaultInitialSize = 1024
	// DefaultThreads is the default worker-goroutine count.
	DefaultThreads = 4
	// DefaultUpdatePercent is the default read/update split.
	DefaultUpdatePercent = 20
)

// Validate normalizes Config's zero-valued fields to sensible defaults.
// It returns nil; like balios.Config.Validate, it normalizes rather than
// rejects, since every field has a workable default (§6.4's CLI only
// fails the process on allocation/thread-creation errors, never on flag
// values).
func (c *Config) Validate() error {
	if c.Duration <= 0 {
		c.Duration = DefaultDuration
	}
	if c.InitialSize <= 0 {
		c.InitialSize = DefaultInitialSize
	}
	if c.Threads <= 0 {
		c.Threads = DefaultThreads
	}
	if c.KeyRange <= 0 {
		c.KeyRange = DefaultKeyRange
	}
	if c.UpdatePercent < 0 || c.UpdatePercent > 100 {
		c.UpdatePercent = DefaultUpdatePercent
	}
	if c.Seed == 0 {
		c.Seed = timecache.CachedTimeNano()
	}
	c.Params = c.Params.Normalize()
	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}
	if c.TimeProvider == nil {
		c.TimeProvider = &systemTimeProvider{}
	}
	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults for every field.
func DefaultConfig() Config {
	c := Config{Engine: "lazy-list"}
	_ = c.Validate()
	return c
}

// systemTimeProvider is the default time provider, backed by go-timecache's
// amortized clock read (the same rationale as balios's TTL path: avoid a
// syscall per call on a hot loop, here the harness's per-op timing path).
type systemTimeProvider struct{}

func (t *systemTimeProvider) Now() int64 {
	return timecache.CachedTimeNano()
}
