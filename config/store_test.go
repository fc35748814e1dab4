// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func resetStore() {
	once = sync.Once{}
	system = nil
	loadErr = nil
	pathOverride = ""
}

func TestDefaultsWritten(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetStore()

	cfg := System()
	if got := cfg.Client().Address; got != DefaultAddress {
		t.Fatalf("client address = %q", got)
	}
	if Err() != nil {
		t.Fatalf("load error: %v", Err())
	}

	path, err := systemConfigPath()
	if err != nil {
		t.Fatalf("systemConfigPath: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var disk Config
	if err := json.Unmarshal(data, &disk); err != nil {
		t.Fatalf("unmarshal config: %v", err)
	}
	if disk.Section("server.tls") == nil {
		t.Fatalf("expected server.tls section to be present")
	}
}

func TestJSONCFileMergedOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	body := `{
		// comments and trailing commas are fine
		"client": {
			"address": "desk.example:4000",
			"input_queue_limit": 64,
		},
		"client.tls": {"enabled": true, "server_name": "desk.example"},
		"server": {"compression": "lz4", "follow_client": false},
	}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	resetStore()
	UsePath(path)

	cfg := System()
	if err := Err(); err != nil {
		t.Fatalf("load error: %v", err)
	}
	client := cfg.Client()
	if client.Address != "desk.example:4000" || client.InputQueueLimit != 64 {
		t.Fatalf("client = %+v", client)
	}
	if client.Compression != DefaultCompression {
		t.Fatalf("default compression lost: %q", client.Compression)
	}
	tlsCfg, err := client.TLSConfig()
	if err != nil || tlsCfg == nil || tlsCfg.ServerName != "desk.example" {
		t.Fatalf("tls = %+v, %v", tlsCfg, err)
	}

	srv := cfg.Server()
	if srv.Compression != "lz4" || srv.FollowClient {
		t.Fatalf("server = %+v", srv)
	}
	if srv.Width != 640 || srv.Height != 400 {
		t.Fatalf("server geometry = %dx%d", srv.Width, srv.Height)
	}
	if got, err := Path(); err != nil || got != path {
		t.Fatalf("path = %q, %v", got, err)
	}
}

func TestInvalidFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"client": `), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	resetStore()
	UsePath(path)

	cfg := System()
	if Err() == nil {
		t.Fatalf("expected a load error")
	}
	if cfg.Server().Name != "texeldesk-server" {
		t.Fatalf("defaults missing: %+v", cfg.Server())
	}
	data, _ := os.ReadFile(path)
	if string(data) != `{"client": ` {
		t.Fatalf("broken file was overwritten")
	}
}

func TestSaveWritesUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "texeldesk.json")
	resetStore()
	UsePath(path)

	SetSystem(Config{"server": map[string]interface{}{"name": "studio"}})
	if err := Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := System().Server().Name; got != "studio" {
		t.Fatalf("name = %q", got)
	}
}

func TestServerSettings(t *testing.T) {
	s := ServerSettings{Address: "127.0.0.1:5000"}
	addr, err := s.AddrPort()
	if err != nil || addr.Port() != 5000 {
		t.Fatalf("addr = %v, %v", addr, err)
	}
	if _, err := (ServerSettings{Address: "localhost"}).AddrPort(); err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg, err := s.TLSConfig(); cfg != nil || err != nil {
		t.Fatalf("tls without files = %v, %v", cfg, err)
	}
	s.TLS.CertFile = "cert.pem"
	if _, err := s.TLSConfig(); !errors.Is(err, errIncompleteTLS) {
		t.Fatalf("tls with only a cert = %v", err)
	}
}

func TestTypedGetters(t *testing.T) {
	cfg := Config{
		"s": map[string]interface{}{
			"n":    float64(3),
			"str":  "7",
			"flag": "true",
			"bad":  []interface{}{},
		},
	}
	if got := cfg.GetInt("s", "n", 0); got != 3 {
		t.Errorf("GetInt n = %d", got)
	}
	if got := cfg.GetInt("s", "str", 0); got != 7 {
		t.Errorf("GetInt str = %d", got)
	}
	if !cfg.GetBool("s", "flag", false) {
		t.Errorf("GetBool flag = false")
	}
	if got := cfg.GetString("s", "bad", "fallback"); got != "fallback" {
		t.Errorf("GetString bad = %q", got)
	}
	if got := cfg.GetInt("missing", "n", 9); got != 9 {
		t.Errorf("GetInt missing = %d", got)
	}
}
