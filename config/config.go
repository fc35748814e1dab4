// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: Configuration store for the texeldesk client and server.
// Notes: The file is JSONC: comments and trailing commas are accepted. It is
//        rewritten as plain JSON by Save.

package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/jsonc"
)

const systemConfigName = "texeldesk.json"

// Config stores configuration sections as JSON-compatible data.
type Config map[string]interface{}

// Section stores key/value pairs for a configuration section.
type Section map[string]interface{}

var (
	mu           sync.RWMutex
	once         sync.Once
	system       Config
	loadErr      error
	pathOverride string
)

// UsePath makes the store read and write path instead of the default
// location. It must be called before the first System call.
func UsePath(path string) {
	mu.Lock()
	defer mu.Unlock()
	pathOverride = path
}

// Path returns the file the store reads.
func Path() (string, error) {
	mu.RLock()
	override := pathOverride
	mu.RUnlock()
	if override != "" {
		return override, nil
	}
	return systemConfigPath()
}

// Err returns the most recent load error.
func Err() error {
	once.Do(initStore)
	mu.RLock()
	defer mu.RUnlock()
	return loadErr
}

// System returns the configuration with defaults applied.
func System() Config {
	once.Do(initStore)
	mu.RLock()
	defer mu.RUnlock()
	return system
}

// Reload reads the configuration file again.
func Reload() error {
	once.Do(initStore)
	mu.Lock()
	defer mu.Unlock()
	loadErr = loadSystemLocked()
	return loadErr
}

// Save persists the current configuration.
func Save() error {
	once.Do(initStore)
	path, err := Path()
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	return writeConfig(path, system)
}

// SetSystem replaces the in-memory configuration.
func SetSystem(cfg Config) {
	once.Do(initStore)
	mu.Lock()
	defer mu.Unlock()
	if cfg == nil {
		cfg = make(Config)
	}
	system = Clone(cfg)
	applySystemDefaults(system)
}

func initStore() {
	mu.Lock()
	defer mu.Unlock()
	system = make(Config)
	loadErr = loadSystemLocked()
}

func readConfig(path string) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var cfg Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

func writeConfig(path string, cfg Config) error {
	if cfg == nil {
		cfg = make(Config)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	log.Printf("Config: Wrote %s", path)
	return nil
}
