// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/settings.go
// Summary: Typed views of the client and server sections.

package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/netip"
	"os"
)

// ClientTLS configures the client's TLS dialer.
type ClientTLS struct {
	Enabled            bool
	ServerName         string
	InsecureSkipVerify bool
	CAFile             string
}

// ClientSettings is the "client" section.
type ClientSettings struct {
	Address         string
	ClientName      string
	Compression     string
	InputQueueLimit int
	LogFile         string
	PanicLog        string
	TLS             ClientTLS
}

// Client reads the client section.
func (c Config) Client() ClientSettings {
	return ClientSettings{
		Address:         c.GetString("client", "address", DefaultAddress),
		ClientName:      c.GetString("client", "client_name", ""),
		Compression:     c.GetString("client", "compression", DefaultCompression),
		InputQueueLimit: c.GetInt("client", "input_queue_limit", 0),
		LogFile:         c.GetString("client", "log_file", ""),
		PanicLog:        c.GetString("client", "panic_log", ""),
		TLS: ClientTLS{
			Enabled:            c.GetBool("client.tls", "enabled", false),
			ServerName:         c.GetString("client.tls", "server_name", ""),
			InsecureSkipVerify: c.GetBool("client.tls", "insecure_skip_verify", false),
			CAFile:             c.GetString("client.tls", "ca_file", ""),
		},
	}
}

// TLSConfig returns the dialer configuration, or nil when TLS is disabled.
func (s ClientSettings) TLSConfig() (*tls.Config, error) {
	if !s.TLS.Enabled {
		return nil, nil
	}
	cfg := &tls.Config{
		ServerName:         s.TLS.ServerName,
		InsecureSkipVerify: s.TLS.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
	if s.TLS.CAFile != "" {
		pem, err := os.ReadFile(s.TLS.CAFile)
		if err != nil {
			return nil, fmt.Errorf("config: read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("config: no certificates in %s", s.TLS.CAFile)
		}
		cfg.RootCAs = pool
	}
	return cfg, nil
}

// ServerTLS names the server certificate files.
type ServerTLS struct {
	CertFile string
	KeyFile  string
}

// ServerSettings is the "server" section.
type ServerSettings struct {
	Address      string
	Name         string
	Compression  string
	Width        int
	Height       int
	TestcardFPS  int
	FollowClient bool
	Clipboard    bool
	Verbose      bool
	TLS          ServerTLS
}

// Server reads the server section.
func (c Config) Server() ServerSettings {
	return ServerSettings{
		Address:      c.GetString("server", "address", DefaultAddress),
		Name:         c.GetString("server", "name", ""),
		Compression:  c.GetString("server", "compression", DefaultCompression),
		Width:        c.GetInt("server", "width", 640),
		Height:       c.GetInt("server", "height", 400),
		TestcardFPS:  c.GetInt("server", "testcard_fps", 10),
		FollowClient: c.GetBool("server", "follow_client", true),
		Clipboard:    c.GetBool("server", "clipboard", true),
		Verbose:      c.GetBool("server", "verbose", false),
		TLS: ServerTLS{
			CertFile: c.GetString("server.tls", "cert_file", ""),
			KeyFile:  c.GetString("server.tls", "key_file", ""),
		},
	}
}

var errIncompleteTLS = errors.New("config: server TLS needs both cert_file and key_file")

// AddrPort parses Address.
func (s ServerSettings) AddrPort() (netip.AddrPort, error) {
	addr, err := netip.ParseAddrPort(s.Address)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("config: server address: %w", err)
	}
	return addr, nil
}

// TLSConfig loads the certificate pair. It returns nil when neither file is
// set.
func (s ServerSettings) TLSConfig() (*tls.Config, error) {
	if s.TLS.CertFile == "" && s.TLS.KeyFile == "" {
		return nil, nil
	}
	if s.TLS.CertFile == "" || s.TLS.KeyFile == "" {
		return nil, errIncompleteTLS
	}
	cert, err := tls.LoadX509KeyPair(s.TLS.CertFile, s.TLS.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("config: load server certificate: %w", err)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}, nil
}
