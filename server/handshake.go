// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: server/handshake.go
// Summary: Server side of the Hello/Welcome and Connect exchange.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/framegrace/texeldesk/protocol"
)

const handshakeTimeout = 10 * time.Second

// Error frame codes sent before the server drops a connection.
const (
	errorCodeProtocol uint16 = iota + 1
	errorCodeDisplay
)

var errUnexpectedMessage = errors.New("server: unexpected message type")

type session struct {
	id          [16]byte
	clientName  string
	compression protocol.Compression
	desktop     DesktopSize
	writer      *protocol.Writer
}

func formatID(id [16]byte) string {
	return uuid.UUID(id).String()
}

// handshake negotiates a session on conn. On a protocol error the client is
// told why before the error is returned.
func (s *Server) handshake(ctx context.Context, conn net.Conn) (*session, error) {
	_ = conn.SetDeadline(time.Now().Add(handshakeTimeout))
	defer conn.SetDeadline(time.Time{})

	writer := protocol.NewWriter(conn)
	fail := func(err error) (*session, error) {
		frame, encErr := protocol.EncodeErrorFrame(protocol.ErrorFrame{Code: errorCodeProtocol, Message: err.Error()})
		if encErr == nil {
			_ = writer.Send(protocol.MsgError, frame)
		}
		return nil, err
	}

	hdr, payload, err := protocol.ReadMessage(conn)
	if err != nil {
		return nil, fmt.Errorf("read hello: %w", err)
	}
	if hdr.Type != protocol.MsgHello {
		return fail(fmt.Errorf("%w: got %v, want %v", errUnexpectedMessage, hdr.Type, protocol.MsgHello))
	}
	hello, err := protocol.DecodeHello(payload)
	if err != nil {
		return fail(err)
	}

	sess := &session{
		id:          uuid.New(),
		clientName:  hello.ClientName,
		compression: protocol.Negotiate(s.compression, hello.Capabilities),
		writer:      writer,
	}
	welcome, err := protocol.EncodeWelcome(protocol.Welcome{
		SessionID:   sess.id,
		ServerName:  s.name,
		Compression: sess.compression,
	})
	if err != nil {
		return nil, err
	}
	writer.SetSessionID(sess.id)
	if err := writer.Send(protocol.MsgWelcome, welcome); err != nil {
		return nil, fmt.Errorf("send welcome: %w", err)
	}

	hdr, payload, err = protocol.ReadMessage(conn)
	if err != nil {
		return nil, fmt.Errorf("read connect request: %w", err)
	}
	if hdr.Type != protocol.MsgConnectRequest {
		return fail(fmt.Errorf("%w: got %v, want %v", errUnexpectedMessage, hdr.Type, protocol.MsgConnectRequest))
	}
	req, err := protocol.DecodeConnectRequest(payload)
	if err != nil {
		return fail(err)
	}
	debugLog.Printf("server: connect request %dx%d scale %d%%", req.Width, req.Height, req.ScaleFactor)

	if lr, ok := s.display.(LayoutRequester); ok && req.Width > 0 && req.Height > 0 {
		lr.RequestLayout(req.Width, req.Height)
	}
	sess.desktop = s.display.Size(ctx)

	accept, err := protocol.EncodeConnectAccept(protocol.ConnectAccept{
		SessionID: sess.id,
		Width:     sess.desktop.Width,
		Height:    sess.desktop.Height,
	})
	if err != nil {
		return nil, err
	}
	if err := writer.Send(protocol.MsgConnectAccept, accept); err != nil {
		return nil, fmt.Errorf("send connect accept: %w", err)
	}
	return sess, nil
}
