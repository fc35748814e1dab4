// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: client/simple_client.go
// Summary: Dials a texeldesk server and performs the protocol handshake.
// Usage: Used by the client runtime's protocol engine before it starts pumping frames.

package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/framegrace/texeldesk/protocol"
)

const defaultDialTimeout = 5 * time.Second

var errUnexpectedMessage = errors.New("client: unexpected message")

// Options configures a SimpleClient.
type Options struct {
	Address     string
	TLS         *tls.Config // nil dials plain TCP
	ClientName  string
	DialTimeout time.Duration

	// DisableCompression stops the client from advertising any bitmap codec.
	DisableCompression bool
}

// SimpleClient handles connection setup to a texeldesk server.
type SimpleClient struct {
	opts Options
}

// Session is an established connection after the handshake.
type Session struct {
	ID          [16]byte
	ServerName  string
	Compression protocol.Compression
	Desktop     protocol.DesktopSize

	conn   net.Conn
	writer *protocol.Writer
}

// NewSimpleClient creates a new simple client.
func NewSimpleClient(opts Options) *SimpleClient {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.ClientName == "" {
		opts.ClientName = "texeldesk-client"
	}
	return &SimpleClient{opts: opts}
}

// Connect dials the server and performs the handshake, announcing the
// initial window geometry.
func (c *SimpleClient) Connect(ctx context.Context, initial protocol.ConnectRequest) (*Session, error) {
	dialer := &net.Dialer{Timeout: c.opts.DialTimeout}
	var (
		conn net.Conn
		err  error
	)
	if c.opts.TLS != nil {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: c.opts.TLS}
		conn, err = tlsDialer.DialContext(ctx, "tcp", c.opts.Address)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", c.opts.Address)
	}
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	session, err := c.Handshake(conn, initial)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return session, nil
}

// Handshake runs the Hello/Welcome and Connect exchange on an already
// established connection.
func (c *SimpleClient) Handshake(conn net.Conn, initial protocol.ConnectRequest) (*Session, error) {
	if deadline, ok := handshakeDeadline(c.opts.DialTimeout); ok {
		_ = conn.SetDeadline(deadline)
		defer conn.SetDeadline(time.Time{})
	}
	writer := protocol.NewWriter(conn)

	hello := protocol.Hello{
		ClientID:   uuid.New(),
		ClientName: c.opts.ClientName,
	}
	if !c.opts.DisableCompression {
		hello.Capabilities = protocol.CapCompressZstd | protocol.CapCompressLZ4
	}
	helloPayload, err := protocol.EncodeHello(hello)
	if err != nil {
		return nil, err
	}
	if err := writer.Send(protocol.MsgHello, helloPayload); err != nil {
		return nil, err
	}

	hdr, payload, err := protocol.ReadMessage(conn)
	if err != nil {
		return nil, err
	}
	if err := expect(hdr, payload, protocol.MsgWelcome); err != nil {
		return nil, err
	}
	welcome, err := protocol.DecodeWelcome(payload)
	if err != nil {
		return nil, err
	}
	writer.SetSessionID(welcome.SessionID)

	connectPayload, err := protocol.EncodeConnectRequest(initial)
	if err != nil {
		return nil, err
	}
	if err := writer.Send(protocol.MsgConnectRequest, connectPayload); err != nil {
		return nil, err
	}

	hdr, payload, err = protocol.ReadMessage(conn)
	if err != nil {
		return nil, err
	}
	if err := expect(hdr, payload, protocol.MsgConnectAccept); err != nil {
		return nil, err
	}
	accept, err := protocol.DecodeConnectAccept(payload)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:          accept.SessionID,
		ServerName:  welcome.ServerName,
		Compression: welcome.Compression,
		Desktop:     protocol.DesktopSize{Width: accept.Width, Height: accept.Height},
		conn:        conn,
		writer:      writer,
	}, nil
}

func handshakeDeadline(timeout time.Duration) (time.Time, bool) {
	if timeout <= 0 {
		return time.Time{}, false
	}
	return time.Now().Add(timeout), true
}

// expect turns an ErrorFrame or any other unexpected type into an error.
func expect(hdr protocol.Header, payload []byte, want protocol.MessageType) error {
	if hdr.Type == want {
		return nil
	}
	if hdr.Type == protocol.MsgError {
		if frame, err := protocol.DecodeErrorFrame(payload); err == nil {
			return frame
		}
	}
	return fmt.Errorf("%w: got %v, want %v", errUnexpectedMessage, hdr.Type, want)
}

// Read blocks for the next frame from the server.
func (s *Session) Read() (protocol.Header, []byte, error) {
	return protocol.ReadMessage(s.conn)
}

// Send writes a raw frame.
func (s *Session) Send(t protocol.MessageType, payload []byte) error {
	return s.writer.Send(t, payload)
}

// SendValue writes a codec-encoded frame.
func (s *Session) SendValue(t protocol.MessageType, v any) error {
	return s.writer.SendValue(t, v)
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	return s.conn.Close()
}

// FormatUUID returns the session ID as a human readable string.
func FormatUUID(id [16]byte) string {
	return uuid.UUID(id).String()
}
