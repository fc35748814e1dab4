// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: server/connection.go
// Summary: One client session after the handshake.
// Notes: The read loop owns the InputHandler; display updates and clipboard
//        changes are written from their own goroutines through the shared
//        frame writer.

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/framegrace/texeldesk/protocol"
)

const noticeTimeout = time.Second

type connection struct {
	conn      net.Conn
	sess      *session
	handler   InputHandler
	display   Display
	clipboard ClipboardBackend

	closeOnce sync.Once
}

func newConnection(conn net.Conn, sess *session, handler InputHandler, display Display) *connection {
	return &connection{conn: conn, sess: sess, handler: handler, display: display}
}

func (c *connection) serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if c.clipboard != nil {
		defer c.clipboard.Close()
	}

	if err := c.sendDesktopSize(c.sess.desktop); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() {
		c.disconnect(protocol.DisconnectServerShutdown, "server shutting down")
	})
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.pumpUpdates(ctx)
	}()
	if c.clipboard != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.relayClipboard(ctx)
		}()
	}

	err := c.readLoop()
	stop()
	cancel()
	c.conn.Close()
	wg.Wait()
	return err
}

func (c *connection) sendDesktopSize(size DesktopSize) error {
	return c.sess.writer.SendValue(protocol.MsgDesktopSize, protocol.DesktopSize{Width: size.Width, Height: size.Height})
}

// disconnect tells the client why the session ends, then closes it.
func (c *connection) disconnect(code uint16, message string) {
	c.closeOnce.Do(func() {
		payload, err := protocol.EncodeDisconnectNotice(protocol.DisconnectNotice{ReasonCode: code, Message: message})
		if err == nil {
			_ = c.conn.SetWriteDeadline(time.Now().Add(noticeTimeout))
			_ = c.sess.writer.Send(protocol.MsgDisconnectNotice, payload)
		}
		c.conn.Close()
	})
}

// fail reports err to the client with an error frame and closes the session.
func (c *connection) fail(code uint16, err error) {
	c.closeOnce.Do(func() {
		log.Printf("server: session %s: %v", formatID(c.sess.id), err)
		payload, encErr := protocol.EncodeErrorFrame(protocol.ErrorFrame{Code: code, Message: err.Error()})
		if encErr == nil {
			_ = c.conn.SetWriteDeadline(time.Now().Add(noticeTimeout))
			_ = c.sess.writer.Send(protocol.MsgError, payload)
		}
		c.conn.Close()
	})
}

func (c *connection) pumpUpdates(ctx context.Context) {
	for {
		update, err := c.display.GetUpdate(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.fail(errorCodeDisplay, fmt.Errorf("display update: %w", err))
			return
		}
		if update == nil {
			debugLog.Printf("server: session %s: display has no further updates", formatID(c.sess.id))
			c.disconnect(protocol.DisconnectNoUpdates, "display closed")
			return
		}
		if err := c.sendUpdate(update); err != nil {
			if ctx.Err() == nil && !isClosed(err) {
				c.fail(errorCodeDisplay, err)
			}
			return
		}
	}
}

func (c *connection) sendUpdate(update DisplayUpdate) error {
	w := c.sess.writer
	switch u := update.(type) {
	case *BitmapUpdate:
		if want := int(u.Width) * int(u.Height) * 4; len(u.Pixels) != want {
			return fmt.Errorf("server: bitmap %dx%d has %d bytes, want %d", u.Width, u.Height, len(u.Pixels), want)
		}
		bmp, err := protocol.EncodeBitmap(u.Left, u.Top, u.Width, u.Height, u.Pixels, c.sess.compression)
		if err != nil {
			return err
		}
		debugLog.Printf("server: bitmap %dx%d at %d,%d (%d -> %d bytes)", u.Width, u.Height, u.Left, u.Top, bmp.RawLength, len(bmp.Data))
		return w.SendValue(protocol.MsgBitmapUpdate, bmp)
	case PointerPositionUpdate:
		return w.SendValue(protocol.MsgPointerPosition, protocol.PointerPosition{X: u.X, Y: u.Y})
	case PointerHiddenUpdate:
		return w.Send(protocol.MsgPointerHidden, nil)
	case PointerDefaultUpdate:
		return w.Send(protocol.MsgPointerDefault, nil)
	case ResizeUpdate:
		c.sess.desktop = u.Size
		return c.sendDesktopSize(u.Size)
	}
	return fmt.Errorf("server: unsupported display update %T", update)
}

func (c *connection) relayClipboard(ctx context.Context) {
	updates := c.clipboard.Updates()
	for {
		select {
		case <-ctx.Done():
			return
		case content, ok := <-updates:
			if !ok {
				return
			}
			err := c.sess.writer.SendValue(protocol.MsgClipboardData, protocol.ClipboardData{MimeType: content.MimeType, Data: content.Data})
			if err != nil {
				return
			}
		}
	}
}

func (c *connection) readLoop() error {
	for {
		hdr, payload, err := protocol.ReadMessage(c.conn)
		if err != nil {
			if errors.Is(err, io.EOF) || isClosed(err) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		done, err := c.handleFrame(hdr, payload)
		if err != nil {
			c.fail(errorCodeProtocol, err)
			return err
		}
		if done {
			return nil
		}
	}
}

func (c *connection) handleFrame(hdr protocol.Header, payload []byte) (bool, error) {
	switch hdr.Type {
	case protocol.MsgFastPathInput:
		var batch protocol.FastPathInput
		if err := protocol.Unmarshal(payload, &batch); err != nil {
			return false, err
		}
		for _, ev := range batch.Events {
			if !deliverFastPath(c.handler, ev) {
				debugLog.Printf("server: ignoring fast-path record %+v", ev)
			}
		}
	case protocol.MsgResize:
		var resize protocol.Resize
		if err := protocol.Unmarshal(payload, &resize); err != nil {
			return false, err
		}
		log.Printf("server: client window resized to %dx%d (scale %d%%)", resize.Width, resize.Height, resize.ScaleFactor)
		if lr, ok := c.display.(LayoutRequester); ok && resize.Width > 0 && resize.Height > 0 {
			lr.RequestLayout(resize.Width, resize.Height)
		}
	case protocol.MsgClipboardSet:
		var clip protocol.ClipboardSet
		if err := protocol.Unmarshal(payload, &clip); err != nil {
			return false, err
		}
		if c.clipboard != nil {
			c.clipboard.OnRemoteCopy(ClipboardContent{MimeType: clip.MimeType, Data: clip.Data})
		}
	case protocol.MsgPing:
		ping, err := protocol.DecodePing(payload)
		if err != nil {
			return false, err
		}
		pong, err := protocol.EncodePong(protocol.Pong{Timestamp: ping.Timestamp})
		if err != nil {
			return false, err
		}
		return false, c.sess.writer.Send(protocol.MsgPong, pong)
	case protocol.MsgPong:
	case protocol.MsgDisconnectNotice:
		notice, err := protocol.DecodeDisconnectNotice(payload)
		if err != nil {
			return false, err
		}
		log.Printf("server: session %s: client disconnected (%d %s)", formatID(c.sess.id), notice.ReasonCode, notice.Message)
		c.disconnect(protocol.DisconnectUserRequested, "client requested disconnect")
		return true, nil
	default:
		debugLog.Printf("server: ignoring %v frame", hdr.Type)
	}
	return false, nil
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
