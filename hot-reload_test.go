// hot-reload_test.go: tests for dynamic configuration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package xanthos

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

// writeConfig writes content to a fresh config file and returns its path.
func writeConfig(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

// newTestHotConfig creates a HotConfig without a watcher, for tests that
// drive handleConfigChange directly.
func newTestHotConfig(t *testing.T, opts HotConfigOptions, targets ...Reconfigurable) *HotConfig {
	t.Helper()
	hc, err := newHotConfig(opts, targets)
	if err != nil {
		t.Fatalf("newHotConfig failed: %v", err)
	}
	return hc
}

// failingTarget always rejects a new configuration.
type failingTarget struct{ calls int }

func (f *failingTarget) Reconfigure(Config) error {
	f.calls++
	return errors.New("refused")
}

// TestNewHotConfig tests HotConfig creation
func TestNewHotConfig(t *testing.T) {
	hc, err := NewHotConfig(HotConfigOptions{
		ConfigPath:   writeConfig(t, "test-config.yaml", "xanthos: {}\n"),
		PollInterval: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewHotConfig failed: %v", err)
	}
	defer func() { _ = hc.Stop() }()

	if hc.watcher == nil {
		t.Error("Expected non-nil watcher")
	}
	if hc.GetConfig() != DefaultConfig() {
		t.Error("Expected default config before any reload")
	}
}

// TestNewHotConfig_EmptyPath tests error handling for empty path
func TestNewHotConfig_EmptyPath(t *testing.T) {
	_, err := NewHotConfig(HotConfigOptions{ConfigPath: ""})
	if !IsConfigError(err) {
		t.Errorf("Expected configuration error for empty path, got %v", err)
	}
}

// TestNewHotConfig_InvalidBase tests that an invalid base is rejected
func TestNewHotConfig_InvalidBase(t *testing.T) {
	base := DefaultConfig()
	base.Concurrency = 0

	_, err := NewHotConfig(HotConfigOptions{
		ConfigPath: writeConfig(t, "c.yaml", "xanthos: {}\n"),
		Base:       &base,
	})
	if GetErrorCode(err) != ErrCodeInvalidConcurrency {
		t.Errorf("Expected %s, got %v", ErrCodeInvalidConcurrency, err)
	}
}

// TestHotConfig_ParseConfig tests configuration parsing
func TestHotConfig_ParseConfig(t *testing.T) {
	base := DefaultConfig()

	tests := []struct {
		name   string
		data   map[string]interface{}
		expect func(*testing.T, Config)
	}{
		{
			name: "nested section with all fields",
			data: map[string]interface{}{
				"xanthos": map[string]interface{}{
					"lru_capacity":     float64(5000),
					"throttle_window":  "250ms",
					"retries":          float64(5),
					"retry_delay":      "100ms",
					"retry_multiplier": 2.5,
					"max_retry_delay":  "5s",
					"concurrency":      16,
				},
			},
			expect: func(t *testing.T, cfg Config) {
				want := Config{
					LRUCapacity:     5000,
					ThrottleWindow:  250 * time.Millisecond,
					Retries:         5,
					RetryDelay:      100 * time.Millisecond,
					RetryMultiplier: 2.5,
					MaxRetryDelay:   5 * time.Second,
					Concurrency:     16,
				}
				if diff := cmp.Diff(want, cfg); diff != "" {
					t.Errorf("parseConfig mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "flat keys",
			data: map[string]interface{}{
				"concurrency": int64(3),
			},
			expect: func(t *testing.T, cfg Config) {
				if cfg.Concurrency != 3 {
					t.Errorf("Concurrency: expected 3, got %d", cfg.Concurrency)
				}
			},
		},
		{
			name: "missing section returns base",
			data: map[string]interface{}{
				"other": "value",
			},
			expect: func(t *testing.T, cfg Config) {
				if diff := cmp.Diff(base, cfg); diff != "" {
					t.Errorf("Expected base config (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "malformed values ignored",
			data: map[string]interface{}{
				"xanthos": map[string]interface{}{
					"retry_delay":  "invalid-duration",
					"lru_capacity": 0,
					"retries":      1.5,
					"concurrency":  "many",
				},
			},
			expect: func(t *testing.T, cfg Config) {
				if diff := cmp.Diff(base, cfg); diff != "" {
					t.Errorf("Expected base config (-want +got):\n%s", diff)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.expect(t, parseConfig(tt.data, base))
		})
	}
}

// TestHotConfig_ReloadReconfiguresTargets tests that targets follow reloads
func TestHotConfig_ReloadReconfiguresTargets(t *testing.T) {
	retrier, _ := NewRetrier(RetryPolicy{Retries: 1})
	pool, _ := NewWorkerPool(2)

	var reloads []Config
	hc := newTestHotConfig(t, HotConfigOptions{
		OnReload: func(oldConfig, newConfig Config) {
			reloads = append(reloads, newConfig)
		},
	}, retrier)

	if err := hc.Bind(pool); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if pool.Limit() != DefaultConcurrency {
		t.Errorf("Bind should apply the current config: limit=%d", pool.Limit())
	}

	hc.handleConfigChange(map[string]interface{}{
		"xanthos": map[string]interface{}{
			"retries":     float64(4),
			"retry_delay": "10ms",
			"concurrency": float64(12),
		},
	})

	if got := retrier.Policy().Retries; got != 4 {
		t.Errorf("retrier retries = %d, want 4", got)
	}
	if got := retrier.Policy().Delay; got != 10*time.Millisecond {
		t.Errorf("retrier delay = %v, want 10ms", got)
	}
	if got := pool.Limit(); got != 12 {
		t.Errorf("pool limit = %d, want 12", got)
	}
	if len(reloads) != 1 || reloads[0].Concurrency != 12 {
		t.Errorf("OnReload calls = %+v", reloads)
	}
	if hc.GetConfig().Concurrency != 12 {
		t.Errorf("GetConfig not updated: %+v", hc.GetConfig())
	}
}

// TestHotConfig_InvalidConfigRejected tests that a bad reload changes nothing
func TestHotConfig_InvalidConfigRejected(t *testing.T) {
	retrier, _ := NewRetrier(RetryPolicy{Retries: 2})
	logger := &recordingLogger{}
	reloaded := false

	hc := newTestHotConfig(t, HotConfigOptions{
		Logger:   logger,
		OnReload: func(Config, Config) { reloaded = true },
	}, retrier)

	hc.handleConfigChange(map[string]interface{}{
		"xanthos": map[string]interface{}{
			"retries":          float64(9),
			"retry_multiplier": 0.5,
		},
	})

	if reloaded {
		t.Error("OnReload must not run for a rejected config")
	}
	if retrier.Policy().Retries != 2 {
		t.Errorf("retrier changed by rejected config: %+v", retrier.Policy())
	}
	if hc.GetConfig() != DefaultConfig() {
		t.Errorf("config changed by rejected reload: %+v", hc.GetConfig())
	}
	if logger.count("error", "configuration rejected") != 1 {
		t.Error("Expected rejection to be logged")
	}
}

// TestHotConfig_TargetErrorLogged tests that a failing target does not stop others
func TestHotConfig_TargetErrorLogged(t *testing.T) {
	bad := &failingTarget{}
	pool, _ := NewWorkerPool(1)
	logger := &recordingLogger{}

	hc := newTestHotConfig(t, HotConfigOptions{Logger: logger}, bad, pool)
	hc.handleConfigChange(map[string]interface{}{"concurrency": float64(6)})

	if bad.calls != 1 {
		t.Errorf("failing target called %d times, want 1", bad.calls)
	}
	if pool.Limit() != 6 {
		t.Errorf("pool limit = %d, want 6", pool.Limit())
	}
	if logger.count("error", "reconfigure failed") != 1 {
		t.Error("Expected target failure to be logged")
	}
	if logger.count("info", "configuration reloaded") != 1 {
		t.Error("Expected reload to be logged")
	}
}

// TestHotConfig_FixedSettingsLogged tests the notice for per-instance settings
func TestHotConfig_FixedSettingsLogged(t *testing.T) {
	logger := &recordingLogger{}
	hc := newTestHotConfig(t, HotConfigOptions{Logger: logger})

	hc.handleConfigChange(map[string]interface{}{
		"lru_capacity":    float64(10),
		"throttle_window": "1s",
	})

	if logger.count("info", "lru capacity changed; applies to new caches only") != 1 {
		t.Error("Expected lru capacity notice")
	}
	if logger.count("info", "throttle window changed; applies to new throttles only") != 1 {
		t.Error("Expected throttle window notice")
	}
	if hc.GetConfig().LRUCapacity != 10 {
		t.Errorf("LRUCapacity = %d, want 10", hc.GetConfig().LRUCapacity)
	}
}

// TestHotConfig_StartStop tests starting and stopping the watcher
func TestHotConfig_StartStop(t *testing.T) {
	hc, err := NewHotConfig(HotConfigOptions{
		ConfigPath:   writeConfig(t, "test-config.yaml", "xanthos:\n  retries: 1\n"),
		PollInterval: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewHotConfig failed: %v", err)
	}

	if err := hc.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	// a second Start is a no-op
	if err := hc.Start(); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	if err := hc.Stop(); err != nil {
		t.Errorf("Failed to stop: %v", err)
	}
}

// TestHotConfig_FileReload tests loading settings from a watched YAML file
func TestHotConfig_FileReload(t *testing.T) {
	content, err := yaml.Marshal(map[string]interface{}{
		"xanthos": map[string]interface{}{
			"retries":     6,
			"retry_delay": "20ms",
			"concurrency": 4,
		},
	})
	if err != nil {
		t.Fatalf("Failed to encode config: %v", err)
	}
	configPath := writeConfig(t, "test-config.yaml", string(content))

	retrier, _ := NewRetrier(RetryPolicy{})
	pool, _ := NewWorkerPool(1)

	var mu sync.Mutex
	reloadCh := make(chan Config, 4)
	hc, err := NewHotConfig(HotConfigOptions{
		ConfigPath:   configPath,
		PollInterval: 100 * time.Millisecond,
		OnReload: func(oldConfig, newConfig Config) {
			mu.Lock()
			defer mu.Unlock()
			select {
			case reloadCh <- newConfig:
			default:
			}
		},
	}, retrier, pool)
	if err != nil {
		t.Fatalf("NewHotConfig failed: %v", err)
	}
	defer func() { _ = hc.Stop() }()

	if err := hc.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case cfg := <-reloadCh:
		if cfg.Retries != 6 || cfg.Concurrency != 4 {
			t.Fatalf("Initial config wrong: %+v", cfg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for initial config load")
	}

	if got := retrier.Policy().Retries; got != 6 {
		t.Errorf("retrier retries = %d, want 6", got)
	}
	if got := pool.Limit(); got != 4 {
		t.Errorf("pool limit = %d, want 4", got)
	}
}

// BenchmarkHotConfig_GetConfig benchmarks thread-safe config access
func BenchmarkHotConfig_GetConfig(b *testing.B) {
	hc, err := NewHotConfig(HotConfigOptions{
		ConfigPath: writeConfig(b, "bench-config.yaml", "xanthos: {concurrency: 4}\n"),
	})
	if err != nil {
		b.Fatalf("NewHotConfig failed: %v", err)
	}
	defer func() { _ = hc.Stop() }()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = hc.GetConfig()
	}
}
