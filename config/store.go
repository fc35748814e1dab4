// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/store.go
// Summary: Load logic for the config store.

package config

import "log"

// loadSystemLocked reads the file and merges it over the defaults. A
// missing file is written with the defaults so users can edit it; an
// unreadable one leaves the defaults in place and is reported.
func loadSystemLocked() error {
	path := pathOverride
	if path == "" {
		var err error
		path, err = systemConfigPath()
		if err != nil {
			log.Printf("Config: Failed to resolve config path: %v", err)
			system = make(Config)
			applySystemDefaults(system)
			return err
		}
	}

	cfg, exists, readErr := readConfig(path)
	if readErr != nil {
		log.Printf("Config: Failed to read config %s: %v", path, readErr)
		cfg = nil
	}
	if cfg == nil {
		cfg = make(Config)
	}
	applySystemDefaults(cfg)

	if !exists {
		if err := writeConfig(path, cfg); err != nil {
			log.Printf("Config: Failed to write default config: %v", err)
		}
	}

	system = cfg
	if readErr == nil && exists {
		log.Printf("Config: Loaded config from %s", path)
	}
	return readErr
}
