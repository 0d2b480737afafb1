// control/hotreload.go
// Author: momentics <momentics@gmail.com>
//
// Typed configuration store with reload listeners.

package control

import (
	"sync"
)

// ConfigStore holds the current Config and notifies listeners on change.
type ConfigStore struct {
	mu        sync.RWMutex
	cfg       *Config
	listeners []func(old, cur *Config)
}

// NewConfigStore initializes a store with cfg.
func NewConfigStore(cfg *Config) *ConfigStore {
	return &ConfigStore{cfg: cfg.Clone()}
}

// Snapshot returns a copy of the current config.
func (cs *ConfigStore) Snapshot() *Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.cfg.Clone()
}

// OnReload registers a listener called after every successful Update.
func (cs *ConfigStore) OnReload(fn func(old, cur *Config)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

// Update validates cfg, installs it and runs the listeners synchronously in
// registration order. An invalid cfg leaves the store untouched.
func (cs *ConfigStore) Update(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cs.mu.Lock()
	old := cs.cfg
	cs.cfg = cfg.Clone()
	listeners := append([]func(old, cur *Config){}, cs.listeners...)
	cur := cs.cfg.Clone()
	cs.mu.Unlock()

	for _, fn := range listeners {
		fn(old.Clone(), cur)
	}
	return nil
}

// Reload rebuilds the config from its sources and installs it. path may be
// empty when no config file is in use; fixed holds values pinned by the
// command line, applied last.
func (cs *ConfigStore) Reload(path string, getenv func(string) string, fixed func(*Config) error) error {
	cfg := Default()
	if path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return err
		}
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return err
	}
	if fixed != nil {
		if err := fixed(cfg); err != nil {
			return err
		}
	}
	return cs.Update(cfg)
}
