// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/clone.go
// Summary: Clone helpers for config maps.

package config

// Clone returns a copy of the config with its sections copied one level
// deep.
func Clone(cfg Config) Config {
	if cfg == nil {
		return nil
	}
	clone := make(Config, len(cfg))
	for name, value := range cfg {
		var section map[string]interface{}
		switch v := value.(type) {
		case map[string]interface{}:
			section = v
		case Section:
			section = v
		default:
			clone[name] = v
			continue
		}
		out := make(Section, len(section))
		for key, val := range section {
			out[key] = val
		}
		clone[name] = out
	}
	return clone
}
