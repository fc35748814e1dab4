// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/runtime/client/engine.go
// Summary: Protocol engine that owns the server connection.
// Usage: Started on its own goroutine by Run; talks to the GUI loop only
//   through the InputReceiver and the Proxy.

package clientruntime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"time"

	"github.com/framegrace/texeldesk/client"
	"github.com/framegrace/texeldesk/protocol"
)

// Engine runs one session against a server.
type Engine struct {
	dialer  *client.SimpleClient
	initial protocol.ConnectRequest
	proxy   Proxy
	panics  *PanicLogger
}

// NewEngine prepares an engine. initial is the window geometry announced in
// the handshake.
func NewEngine(dialer *client.SimpleClient, initial protocol.ConnectRequest, proxy Proxy, panics *PanicLogger) *Engine {
	if panics == nil {
		panics = NewPanicLogger("")
	}
	return &Engine{dialer: dialer, initial: initial, proxy: proxy, panics: panics}
}

// Run connects and pumps the session until it ends or ctx is cancelled.
// The receiver stays open once the loop has taken the terminal event, so the
// loop ends on that event rather than on the closed channel.
func (e *Engine) Run(ctx context.Context, inputs *InputReceiver) {
	session, err := e.dialer.Connect(ctx, e.initial)
	if err != nil {
		log.Printf("connect failed: %v", err)
		e.finish(inputs, OutputConnectionFailure{Err: err})
		return
	}
	e.Serve(ctx, session, inputs)
}

// Serve pumps an established session.
func (e *Engine) Serve(ctx context.Context, session *client.Session, inputs *InputReceiver) {
	log.Printf("Connected to session %s (server %q, compression %s)",
		client.FormatUUID(session.ID), session.ServerName, session.Compression)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		session.Close()
	}()

	writerDone := make(chan struct{})
	e.panics.Go("engine-writer", func() {
		defer close(writerDone)
		if err := e.writeLoop(ctx, session, inputs); err != nil {
			log.Printf("write loop stopped: %v", err)
			cancel()
		}
	})
	e.panics.Go("engine-ping", func() { e.pingLoop(ctx, session) })

	e.finish(inputs, e.pump(session))
	cancel()
	<-writerDone
}

// finish posts the terminal event. The receiver is closed only when the loop
// could not take it.
func (e *Engine) finish(inputs *InputReceiver, ev OutputEvent) {
	if ev == nil || e.post(ev) != nil {
		inputs.Close()
	}
}

func (e *Engine) writeLoop(ctx context.Context, session *client.Session, inputs *InputReceiver) error {
	for {
		ev, err := inputs.Recv(ctx)
		if err != nil {
			if errors.Is(err, ErrChannelClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if err := e.sendInput(session, ev); err != nil {
			return err
		}
	}
}

func (e *Engine) sendInput(session *client.Session, ev InputEvent) error {
	switch ev := ev.(type) {
	case InputResize:
		msg := protocol.Resize{Width: ev.Width, Height: ev.Height, ScaleFactor: ev.ScaleFactor}
		if ev.PhysicalSize != nil {
			msg.PhysicalWidth = ev.PhysicalSize.Width
			msg.PhysicalHeight = ev.PhysicalSize.Height
		}
		return session.SendValue(protocol.MsgResize, msg)
	case InputClose:
		payload, err := protocol.EncodeDisconnectNotice(protocol.DisconnectNotice{
			ReasonCode: protocol.DisconnectUserRequested,
			Message:    "user requested",
		})
		if err != nil {
			return err
		}
		return session.Send(protocol.MsgDisconnectNotice, payload)
	case InputFastPath:
		return session.SendValue(protocol.MsgFastPathInput, protocol.FastPathInput{Events: ev.Events})
	case InputClipboard:
		return session.SendValue(protocol.MsgClipboardSet, protocol.ClipboardSet{MimeType: ev.MimeType, Data: ev.Data})
	}
	return fmt.Errorf("clientruntime: unknown input event %T", ev)
}

// pump runs the read loop over a desktop-sized framebuffer and returns the
// terminal event.
func (e *Engine) pump(session *client.Session) OutputEvent {
	fb, err := client.NewFramebuffer(int(session.Desktop.Width), int(session.Desktop.Height))
	if err != nil {
		return OutputTerminated{Err: err}
	}
	// The blank frame announces the desktop geometry before the first update.
	if err := e.post(frame(fb)); errors.Is(err, ErrEventLoopClosed) {
		return nil
	}
	return e.readLoop(session, fb)
}

// readLoop handles server frames and returns the terminal event.
func (e *Engine) readLoop(session *client.Session, fb *client.Framebuffer) OutputEvent {
	for {
		hdr, payload, err := session.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = errors.New("server closed the connection")
			}
			return OutputTerminated{Err: err}
		}
		ev, terminal, err := e.handleFrame(session, fb, hdr, payload)
		if err != nil {
			log.Printf("%s frame rejected: %v", hdr.Type, err)
			continue
		}
		if terminal {
			return ev
		}
		if ev != nil {
			if err := e.post(ev); errors.Is(err, ErrEventLoopClosed) {
				return nil
			}
		}
	}
}

func (e *Engine) handleFrame(session *client.Session, fb *client.Framebuffer, hdr protocol.Header, payload []byte) (OutputEvent, bool, error) {
	switch hdr.Type {
	case protocol.MsgDesktopSize:
		var size protocol.DesktopSize
		if err := protocol.Unmarshal(payload, &size); err != nil {
			return nil, false, err
		}
		if err := fb.Resize(int(size.Width), int(size.Height)); err != nil {
			return OutputTerminated{Err: err}, true, nil
		}
		return frame(fb), false, nil
	case protocol.MsgBitmapUpdate:
		var update protocol.BitmapUpdate
		if err := protocol.Unmarshal(payload, &update); err != nil {
			return nil, false, err
		}
		if err := fb.Apply(update); err != nil {
			return nil, false, err
		}
		return frame(fb), false, nil
	case protocol.MsgPointerPosition:
		var pos protocol.PointerPosition
		if err := protocol.Unmarshal(payload, &pos); err != nil {
			return nil, false, err
		}
		return OutputPointerPosition{X: pos.X, Y: pos.Y}, false, nil
	case protocol.MsgPointerHidden:
		return OutputPointerHidden{}, false, nil
	case protocol.MsgPointerDefault:
		return OutputPointerDefault{}, false, nil
	case protocol.MsgClipboardData:
		var clip protocol.ClipboardData
		if err := protocol.Unmarshal(payload, &clip); err != nil {
			return nil, false, err
		}
		return OutputClipboard{MimeType: clip.MimeType, Data: clip.Data}, false, nil
	case protocol.MsgPing:
		ping, err := protocol.DecodePing(payload)
		if err != nil {
			return nil, false, err
		}
		pong, _ := protocol.EncodePong(protocol.Pong{Timestamp: ping.Timestamp})
		return nil, false, session.Send(protocol.MsgPong, pong)
	case protocol.MsgPong:
		return nil, false, nil
	case protocol.MsgDisconnectNotice:
		notice, err := protocol.DecodeDisconnectNotice(payload)
		if err != nil {
			return OutputTerminated{Err: err}, true, nil
		}
		reason := notice.Message
		if reason == "" {
			reason = fmt.Sprintf("reason code %d", notice.ReasonCode)
		}
		return OutputTerminated{Reason: reason}, true, nil
	case protocol.MsgError:
		frame, err := protocol.DecodeErrorFrame(payload)
		if err != nil {
			return OutputTerminated{Err: err}, true, nil
		}
		return OutputTerminated{Err: frame}, true, nil
	}
	log.Printf("ignoring unexpected %s frame", hdr.Type)
	return nil, false, nil
}

// frame snapshots fb as an image. An empty framebuffer yields nil.
func frame(fb *client.Framebuffer) OutputEvent {
	pixels, w, h := fb.Snapshot()
	if w == 0 || h == 0 {
		return nil
	}
	return OutputImage{Buffer: pixels, Width: uint16(w), Height: uint16(h)}
}

// post delivers ev to the GUI loop. A nil ev is ignored.
func (e *Engine) post(ev OutputEvent) error {
	if ev == nil {
		return nil
	}
	err := e.proxy.Send(ev)
	if err != nil && !errors.Is(err, ErrEventLoopClosed) {
		log.Printf("output event %T dropped: %v", ev, err)
	}
	return err
}

func isNetworkClosed(err error) bool {
	if errors.Is(err, os.ErrClosed) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	ne, ok := err.(net.Error)
	return ok && !ne.Timeout()
}

// pingInterval spaces keepalive pings on an idle session.
const pingInterval = 30 * time.Second

func (e *Engine) pingLoop(ctx context.Context, session *client.Session) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			payload, _ := protocol.EncodePing(protocol.Ping{Timestamp: now.UnixNano()})
			if err := session.Send(protocol.MsgPing, payload); err != nil {
				if !isNetworkClosed(err) {
					log.Printf("ping failed: %v", err)
				}
				return
			}
		}
	}
}
