// hottuning.go: Argus-backed hot reload for a running maintenance thread.
//
// Modeled directly on agilira-balios/hot-reload.go's HotConfig: watch a
// config file at a poll interval, parse the fields we care about, and
// atomically apply them to the live object — here a *Thread's sleep
// interval, instead of a cache's TTL/window ratio.
package maintenance

import (
	"time"

	"github.com/agilira/argus"
)

// HotTuning watches a config file for changes to a maintenance thread's
// tuning parameters and applies them without restarting the thread.
type HotTuning struct {
	thread  *Thread
	watcher *argus.Watcher
}

// HotTuningOptions configures NewHotTuning.
type HotTuningOptions struct {
	// ConfigPath is the file to watch. Supports the same formats argus
	// supports (JSON, YAML, TOML, HCL, INI, Properties).
	ConfigPath string

	// PollInterval is how often to check for changes. Default 1s, floor
	// 100ms, matching balios.HotConfigOptions.
	PollInterval time.Duration
}

// NewHotTuning starts watching opts.ConfigPath and applies
// "maintenance.bg_sleep" (a duration string, e.g. "5ms") to thread whenever
// the file changes.
func NewHotTuning(thread *Thread, opts HotTuningOptions) (*HotTuning, error) {
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	ht := &HotTuning{thread: thread}

	argusConfig := argus.Config{PollInterval: opts.PollInterval}
	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, ht.handleChange, argusConfig)
	if err != nil {
		return nil, err
	}
	ht.watcher = watcher
	return ht, nil
}

// Start begins watching. No-op if already running.
func (ht *HotTuning) Start() error {
	if ht.watcher.IsRunning() {
		return nil
	}
	return ht.watcher.Start()
}

// Stop stops watching the config file. It does not stop the underlying
// maintenance Thread.
func (ht *HotTuning) Stop() error {
	return ht.watcher.Stop()
}

func (ht *HotTuning) handleChange(data map[string]interface{}) {
	section, ok := data["maintenance"].(map[string]interface{})
	if !ok {
		section = data
	}
	if raw, ok := section["bg_sleep"].(string); ok {
		if d, err := time.ParseDuration(raw); err == nil {
			ht.thread.Retune(d)
		}
	}
}
