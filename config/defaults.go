// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Default values for the configuration file.

package config

const (
	DefaultAddress     = "127.0.0.1:3389"
	DefaultCompression = "zstd"
)

func applySystemDefaults(cfg Config) {
	if cfg == nil {
		return
	}
	cfg.RegisterDefaults("client", Section{
		"address":           DefaultAddress,
		"client_name":       "texeldesk-client",
		"compression":       DefaultCompression,
		"input_queue_limit": 0,
		"log_file":          "",
		"panic_log":         "",
	})
	cfg.RegisterDefaults("client.tls", Section{
		"enabled":              false,
		"server_name":          "",
		"insecure_skip_verify": false,
		"ca_file":              "",
	})
	cfg.RegisterDefaults("server", Section{
		"address":       DefaultAddress,
		"name":          "texeldesk-server",
		"compression":   DefaultCompression,
		"width":         640,
		"height":        400,
		"testcard_fps":  10,
		"follow_client": true,
		"clipboard":     true,
		"verbose":       false,
	})
	cfg.RegisterDefaults("server.tls", Section{
		"cert_file": "",
		"key_file":  "",
	})
}
