// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: server/server.go
// Summary: Server descriptor and its accept loop.
// Usage: Built with NewBuilder, then Run until the context is cancelled.
// Notes: Clients are served one at a time since the strategies have a
//        single owner.

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/framegrace/texeldesk/protocol"
)

const (
	defaultServerName = "texeldesk-server"
	acceptRetryDelay  = 100 * time.Millisecond
)

// Server is a fully configured remote desktop server.
type Server struct {
	addr     netip.AddrPort
	security Security
	handler  InputHandler
	display  Display
	cliprdr  CliprdrBackendFactory

	name        string
	compression protocol.Compression

	mu       sync.Mutex
	listener net.Listener
}

func newServer(addr netip.AddrPort, security Security, handler InputHandler, display Display, cliprdr CliprdrBackendFactory) *Server {
	return &Server{
		addr:        addr,
		security:    security,
		handler:     handler,
		display:     display,
		cliprdr:     cliprdr,
		name:        defaultServerName,
		compression: protocol.CompressionZstd,
	}
}

func (s *Server) Addr() netip.AddrPort                  { return s.addr }
func (s *Server) Security() Security                    { return s.security }
func (s *Server) Handler() InputHandler                 { return s.handler }
func (s *Server) Display() Display                      { return s.display }
func (s *Server) CliprdrFactory() CliprdrBackendFactory { return s.cliprdr }

// SetName changes the name announced in the handshake.
func (s *Server) SetName(name string) {
	if name != "" {
		s.name = name
	}
}

// SetCompression selects the bitmap codec offered to clients that support
// it. Other clients get uncompressed bitmaps.
func (s *Server) SetCompression(c protocol.Compression) {
	s.compression = c
}

// ListenAddr returns the bound address while Run or Serve is active.
func (s *Server) ListenAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run listens on the configured address and serves clients until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr.String())
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.addr, err)
	}
	if s.security.kind == SecurityTLS {
		ln = tls.NewListener(ln, s.security.tls)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts clients from ln until ctx is cancelled, then closes ln.
// Cancelling ctx also ends the active session.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.listener = nil
		s.mu.Unlock()
	}()

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer ln.Close()

	log.Printf("server: listening on %s (security %s)", ln.Addr(), s.security.kind)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			log.Printf("server: accept failed: %v", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(acceptRetryDelay):
			}
			continue
		}
		if err := s.serveConn(ctx, conn); err != nil {
			log.Printf("server: session from %s ended: %v", conn.RemoteAddr(), err)
		}
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) error {
	defer conn.Close()
	log.Printf("server: client connected from %s", conn.RemoteAddr())

	if tc, ok := conn.(*tls.Conn); ok {
		hsCtx, cancel := context.WithTimeout(ctx, handshakeTimeout)
		err := tc.HandshakeContext(hsCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("tls handshake: %w", err)
		}
	}

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	sess, err := s.handshake(ctx, conn)
	stop()
	if err != nil {
		return err
	}
	log.Printf("server: session %s for %q (compression %s, desktop %dx%d)",
		formatID(sess.id), sess.clientName, sess.compression, sess.desktop.Width, sess.desktop.Height)

	c := newConnection(conn, sess, s.handler, s.display)
	if s.cliprdr != nil {
		c.clipboard = s.cliprdr.BuildCliprdrBackend()
	}
	return c.serve(ctx)
}
