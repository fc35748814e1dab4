// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: server/security.go
// Summary: Transport security selected by the builder.

package server

import "crypto/tls"

// SecurityKind names the transport security of a Server.
type SecurityKind uint8

const (
	SecurityNone SecurityKind = iota
	SecurityTLS
)

func (k SecurityKind) String() string {
	if k == SecurityTLS {
		return "tls"
	}
	return "none"
}

// Security is either no security or TLS with a server configuration.
type Security struct {
	kind SecurityKind
	tls  *tls.Config
}

func (s Security) Kind() SecurityKind { return s.kind }

// TLSConfig returns the acceptor configuration, or nil for SecurityNone.
func (s Security) TLSConfig() *tls.Config { return s.tls }
