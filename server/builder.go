// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: server/builder.go
// Summary: Step-by-step construction of a Server.
// Usage: NewBuilder().WithAddr(a).WithNoSecurity().WithNoInput().WithNoDisplay().Build()
// Notes: Each step is its own type exposing only the next valid steps, so an
//        incomplete Server cannot be built. Steps are values; calling a
//        method never modifies the receiver.

package server

import (
	"crypto/tls"
	"net/netip"
)

// Builder is the first step: it needs a listen address.
type Builder struct{}

// NewBuilder starts building a Server.
func NewBuilder() Builder { return Builder{} }

// WithAddr sets the TCP address to listen on.
func (Builder) WithAddr(addr netip.AddrPort) WantsSecurity {
	return WantsSecurity{addr: addr}
}

// WantsSecurity needs a transport security choice.
type WantsSecurity struct {
	addr netip.AddrPort
}

// WithNoSecurity serves plain TCP.
func (b WantsSecurity) WithNoSecurity() WantsHandler {
	return WantsHandler{addr: b.addr, security: Security{kind: SecurityNone}}
}

// WithTLS wraps every accepted connection in TLS using cfg. The
// configuration is cloned. It panics if cfg is nil.
func (b WantsSecurity) WithTLS(cfg *tls.Config) WantsHandler {
	if cfg == nil {
		panic("server: WithTLS called with nil config")
	}
	return WantsHandler{addr: b.addr, security: Security{kind: SecurityTLS, tls: cfg.Clone()}}
}

// WantsHandler needs an input handler.
type WantsHandler struct {
	addr     netip.AddrPort
	security Security
}

// WithInputHandler routes client input to h. A nil h is treated as
// WithNoInput.
func (b WantsHandler) WithInputHandler(h InputHandler) WantsDisplay {
	if h == nil {
		return b.WithNoInput()
	}
	return WantsDisplay{addr: b.addr, security: b.security, handler: h}
}

// WithNoInput discards all client input.
func (b WantsHandler) WithNoInput() WantsDisplay {
	return WantsDisplay{addr: b.addr, security: b.security, handler: noopInputHandler{}}
}

// WantsDisplay needs a display.
type WantsDisplay struct {
	addr     netip.AddrPort
	security Security
	handler  InputHandler
}

// WithDisplayHandler serves the desktop produced by d. A nil d is treated
// as WithNoDisplay.
func (b WantsDisplay) WithDisplayHandler(d Display) BuilderDone {
	if d == nil {
		return b.WithNoDisplay()
	}
	return BuilderDone{addr: b.addr, security: b.security, handler: b.handler, display: d}
}

// WithNoDisplay serves an empty desktop that never changes.
func (b WantsDisplay) WithNoDisplay() BuilderDone {
	return BuilderDone{addr: b.addr, security: b.security, handler: b.handler, display: noopDisplay{}}
}

// BuilderDone holds a complete configuration.
type BuilderDone struct {
	addr     netip.AddrPort
	security Security
	handler  InputHandler
	display  Display
	cliprdr  CliprdrBackendFactory
}

// WithCliprdrFactory enables clipboard sharing through backends built by
// f. Only the last call counts; nil disables clipboard sharing.
func (b BuilderDone) WithCliprdrFactory(f CliprdrBackendFactory) BuilderDone {
	b.cliprdr = f
	return b
}

// Build returns the configured Server.
func (b BuilderDone) Build() *Server {
	return newServer(b.addr, b.security, b.handler, b.display, b.cliprdr)
}
