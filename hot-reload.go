// hot-reload.go: dynamic configuration with Argus integration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package xanthos

import (
	"sync"
	"time"

	"github.com/agilira/argus"
)

// Reconfigurable is implemented by primitives whose settings can change at
// runtime. *Retrier and *WorkerPool implement it.
type Reconfigurable interface {
	Reconfigure(cfg Config) error
}

// HotConfig provides dynamic configuration reload capabilities using Argus.
// It watches a configuration file and pushes runtime-tunable settings to the
// bound targets when changes are detected.
type HotConfig struct {
	watcher *argus.Watcher
	logger  Logger

	mu      sync.RWMutex
	config  Config
	base    Config
	targets []Reconfigurable

	// OnReload is called after configuration is successfully reloaded.
	// This callback is optional and must be fast and non-blocking.
	OnReload func(oldConfig, newConfig Config)
}

// HotConfigOptions configures hot reload behavior.
type HotConfigOptions struct {
	// ConfigPath is the path to the configuration file to watch.
	// Supports JSON, YAML, TOML, HCL, INI, Properties formats.
	ConfigPath string

	// PollInterval is how often to check for configuration changes.
	// Default: 1 second. Minimum: 100ms.
	PollInterval time.Duration

	// Base supplies the values for keys missing from the file.
	// Default: DefaultConfig().
	Base *Config

	// OnReload is called after configuration is successfully reloaded.
	OnReload func(oldConfig, newConfig Config)

	// Logger for hot reload operations. Default: NoOpLogger.
	Logger Logger
}

// NewHotConfig creates a hot-reloadable configuration applied to targets.
// More targets can be added later with Bind. Call Start to begin watching.
//
// Example configuration file (YAML):
//
//	xanthos:
//	  lru_capacity: 5000
//	  throttle_window: "250ms"
//	  retries: 5
//	  retry_delay: "100ms"
//	  retry_multiplier: 2
//	  max_retry_delay: "5s"
//	  concurrency: 16
//
// Supported configuration keys:
//   - xanthos.lru_capacity (int): capacity for newly built LRU caches
//   - xanthos.throttle_window (duration string): window for new throttles
//   - xanthos.retries (int): retries after the first attempt
//   - xanthos.retry_delay (duration string): wait before the first retry
//   - xanthos.retry_multiplier (float): delay growth factor
//   - xanthos.max_retry_delay (duration string): cap on the grown delay
//   - xanthos.concurrency (int): worker pool limit
//
// Retry and concurrency settings are applied to bound targets immediately.
// LRU capacity and throttle window are fixed per instance, so changes to them
// only affect instances built from GetConfig afterwards.
func NewHotConfig(opts HotConfigOptions, targets ...Reconfigurable) (*HotConfig, error) {
	if opts.ConfigPath == "" {
		return nil, NewErrInvalidConfig("config_path", "is required")
	}

	hc, err := newHotConfig(opts, targets)
	if err != nil {
		return nil, err
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = 1 * time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	argusConfig := argus.Config{
		PollInterval: opts.PollInterval,
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, hc.handleConfigChange, argusConfig)
	if err != nil {
		return nil, NewErrInternal("NewHotConfig", err)
	}
	hc.watcher = watcher

	return hc, nil
}

// newHotConfig builds the reload state without a watcher.
func newHotConfig(opts HotConfigOptions, targets []Reconfigurable) (*HotConfig, error) {
	if opts.Logger == nil {
		opts.Logger = NoOpLogger{}
	}

	base := DefaultConfig()
	if opts.Base != nil {
		if err := opts.Base.Validate(); err != nil {
			return nil, err
		}
		base = *opts.Base
	}

	return &HotConfig{
		logger:   opts.Logger,
		config:   base,
		base:     base,
		targets:  append([]Reconfigurable(nil), targets...),
		OnReload: opts.OnReload,
	}, nil
}

// Bind adds a target and applies the current configuration to it.
func (hc *HotConfig) Bind(target Reconfigurable) error {
	hc.mu.Lock()
	hc.targets = append(hc.targets, target)
	cfg := hc.config
	hc.mu.Unlock()

	return target.Reconfigure(cfg)
}

// Start begins watching the configuration file for changes.
func (hc *HotConfig) Start() error {
	// Check if already running to avoid ARGUS_WATCHER_BUSY error
	if hc.watcher.IsRunning() {
		return nil
	}
	return hc.watcher.Start()
}

// Stop stops watching the configuration file.
func (hc *HotConfig) Stop() error {
	return hc.watcher.Stop()
}

// GetConfig returns the current configuration (thread-safe).
func (hc *HotConfig) GetConfig() Config {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.config
}

// handleConfigChange is called by Argus when configuration changes.
// An invalid configuration is rejected as a whole and the current one kept.
func (hc *HotConfig) handleConfigChange(configData map[string]interface{}) {
	newConfig := parseConfig(configData, hc.base)
	if err := newConfig.Validate(); err != nil {
		hc.logger.Error("configuration rejected", "error", err, "code", GetErrorCode(err))
		return
	}

	hc.mu.Lock()
	oldConfig := hc.config
	hc.config = newConfig
	targets := append([]Reconfigurable(nil), hc.targets...)
	hc.mu.Unlock()

	hc.applyChanges(oldConfig, newConfig, targets)

	if hc.OnReload != nil {
		hc.OnReload(oldConfig, newConfig)
	}
}

// applyChanges pushes the new configuration to every target.
func (hc *HotConfig) applyChanges(old, new Config, targets []Reconfigurable) {
	if old.LRUCapacity != new.LRUCapacity {
		hc.logger.Info("lru capacity changed; applies to new caches only",
			"old", old.LRUCapacity, "new", new.LRUCapacity)
	}
	if old.ThrottleWindow != new.ThrottleWindow {
		hc.logger.Info("throttle window changed; applies to new throttles only",
			"old", old.ThrottleWindow, "new", new.ThrottleWindow)
	}

	for _, t := range targets {
		if err := t.Reconfigure(new); err != nil {
			hc.logger.Error("reconfigure failed", "error", err)
		}
	}
	hc.logger.Info("configuration reloaded", "targets", len(targets))
}

// parseIntAtLeast extracts an integer >= min from an interface{} value.
// Supports both int and float64 types (YAML/JSON may vary).
func parseIntAtLeast(value interface{}, min int) (int, bool) {
	switch v := value.(type) {
	case int:
		if v >= min {
			return v, true
		}
	case int64:
		if v >= int64(min) {
			return int(v), true
		}
	case float64:
		if v >= float64(min) && v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

// parseDuration extracts a non-negative time.Duration from a string value.
func parseDuration(value interface{}) (time.Duration, bool) {
	if str, ok := value.(string); ok {
		if d, err := time.ParseDuration(str); err == nil && d >= 0 {
			return d, true
		}
	}
	return 0, false
}

// parseFloatAtLeast extracts a float64 >= min.
func parseFloatAtLeast(value interface{}, min float64) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if v >= min {
			return v, true
		}
	case int:
		if float64(v) >= min {
			return float64(v), true
		}
	}
	return 0, false
}

// parseConfig extracts the xanthos section from Argus config data on top of
// base. Keys that are missing or malformed keep the base value.
func parseConfig(data map[string]interface{}, base Config) Config {
	config := base

	// Argus might nest the section or provide it directly
	section, ok := data["xanthos"].(map[string]interface{})
	if !ok {
		section = data
	}

	if v, ok := parseIntAtLeast(section["lru_capacity"], 1); ok {
		config.LRUCapacity = v
	}
	if v, ok := parseDuration(section["throttle_window"]); ok {
		config.ThrottleWindow = v
	}
	if v, ok := parseIntAtLeast(section["retries"], 0); ok {
		config.Retries = v
	}
	if v, ok := parseDuration(section["retry_delay"]); ok {
		config.RetryDelay = v
	}
	if v, ok := parseFloatAtLeast(section["retry_multiplier"], 0); ok {
		config.RetryMultiplier = v
	}
	if v, ok := parseDuration(section["max_retry_delay"]); ok {
		config.MaxRetryDelay = v
	}
	if v, ok := parseIntAtLeast(section["concurrency"], 1); ok {
		config.Concurrency = v
	}

	return config
}
