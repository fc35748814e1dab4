package clientruntime

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/framegrace/texeldesk/client"
	"github.com/framegrace/texeldesk/input"
	"github.com/framegrace/texeldesk/protocol"
)

type chanProxy struct {
	events chan OutputEvent
}

func (p *chanProxy) Send(ev OutputEvent) error {
	p.events <- ev
	return nil
}

func (p *chanProxy) next(t *testing.T) OutputEvent {
	t.Helper()
	select {
	case ev := <-p.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for output event")
		return nil
	}
}

// scriptedServer accepts the handshake, sends a desktop, then echoes the
// client's frames on received until it asks to disconnect.
func scriptedServer(t *testing.T, conn net.Conn, received chan<- protocol.Header) {
	t.Helper()
	go func() {
		defer conn.Close()
		w := protocol.NewWriter(conn)
		if _, _, err := protocol.ReadMessage(conn); err != nil {
			return
		}
		welcome, _ := protocol.EncodeWelcome(protocol.Welcome{ServerName: "scripted"})
		_ = w.Send(protocol.MsgWelcome, welcome)
		if _, _, err := protocol.ReadMessage(conn); err != nil {
			return
		}
		accept, _ := protocol.EncodeConnectAccept(protocol.ConnectAccept{Width: 4, Height: 2})
		_ = w.Send(protocol.MsgConnectAccept, accept)

		_ = w.SendValue(protocol.MsgDesktopSize, protocol.DesktopSize{Width: 2, Height: 2})
		pixels := make([]byte, 2*2*4)
		for i := 0; i < 4; i++ {
			binary.LittleEndian.PutUint32(pixels[i*4:], uint32(0x010101*(i+1)))
		}
		update, _ := protocol.EncodeBitmap(0, 0, 2, 2, pixels, protocol.CompressionNone)
		_ = w.SendValue(protocol.MsgBitmapUpdate, update)
		_ = w.Send(protocol.MsgPointerHidden, nil)
		_ = w.SendValue(protocol.MsgPointerPosition, protocol.PointerPosition{X: 1, Y: 1})

		for {
			hdr, payload, err := protocol.ReadMessage(conn)
			if err != nil {
				return
			}
			received <- hdr
			if hdr.Type == protocol.MsgFastPathInput {
				var batch protocol.FastPathInput
				if err := protocol.Unmarshal(payload, &batch); err != nil || len(batch.Events) != 1 {
					t.Errorf("bad fast-path payload: %v %+v", err, batch)
				}
			}
			if hdr.Type == protocol.MsgDisconnectNotice {
				bye, _ := protocol.EncodeDisconnectNotice(protocol.DisconnectNotice{ReasonCode: protocol.DisconnectUserRequested, Message: "bye"})
				_ = w.Send(protocol.MsgDisconnectNotice, bye)
				return
			}
		}
	}()
}

func TestEngineSession(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	received := make(chan protocol.Header, 8)
	scriptedServer(t, serverConn, received)

	session, err := client.NewSimpleClient(client.Options{}).Handshake(clientConn, protocol.ConnectRequest{Width: 4, Height: 2})
	if err != nil {
		t.Fatalf("handshake: %v", err)
	}

	proxy := &chanProxy{events: make(chan OutputEvent, 8)}
	engine := NewEngine(nil, protocol.ConnectRequest{}, proxy, nil)
	sender, receiver := NewInputChannel(0)
	done := make(chan struct{})
	go func() {
		defer close(done)
		engine.Serve(context.Background(), session, receiver)
	}()

	// Blank frames for the accepted desktop, then for the announced size.
	for _, want := range [][2]uint16{{4, 2}, {2, 2}} {
		blank, ok := proxy.next(t).(OutputImage)
		if !ok || blank.Width != want[0] || blank.Height != want[1] {
			t.Fatalf("expected blank %dx%d frame, got %+v", want[0], want[1], blank)
		}
		for _, p := range blank.Buffer {
			if p != 0 {
				t.Fatalf("blank frame has pixel %#x", p)
			}
		}
	}
	img, ok := proxy.next(t).(OutputImage)
	if !ok {
		t.Fatalf("expected bitmap image")
	}
	if img.Width != 2 || img.Height != 2 || img.Buffer[3] != 0x040404 {
		t.Fatalf("image = %+v", img)
	}
	if _, ok := proxy.next(t).(OutputPointerHidden); !ok {
		t.Fatalf("expected pointer hidden")
	}
	if pos, ok := proxy.next(t).(OutputPointerPosition); !ok || pos.X != 1 || pos.Y != 1 {
		t.Fatalf("expected pointer position, got %+v", pos)
	}

	_ = sender.Send(InputFastPath{Events: []input.FastPathEvent{input.NewMouseEvent(input.PointerMove, 1, 1)}})
	_ = sender.Send(InputResize{Width: 10, Height: 10, ScaleFactor: 100})
	_ = sender.Send(InputClose{})

	term, ok := proxy.next(t).(OutputTerminated)
	if !ok || term.Err != nil || term.Reason != "bye" {
		t.Fatalf("terminated = %+v", term)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("engine did not stop")
	}
	if sender.IsClosed() {
		t.Fatalf("receiver closed although the loop took the terminal event")
	}

	var types []protocol.MessageType
	for len(received) > 0 {
		types = append(types, (<-received).Type)
	}
	want := []protocol.MessageType{protocol.MsgFastPathInput, protocol.MsgResize, protocol.MsgDisconnectNotice}
	if len(types) != len(want) {
		t.Fatalf("server received %v", types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("server received %v, want %v", types, want)
		}
	}
}

func TestEngineServerHangupIsSessionError(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	go func() {
		w := protocol.NewWriter(serverConn)
		_, _, _ = protocol.ReadMessage(serverConn)
		welcome, _ := protocol.EncodeWelcome(protocol.Welcome{})
		_ = w.Send(protocol.MsgWelcome, welcome)
		_, _, _ = protocol.ReadMessage(serverConn)
		accept, _ := protocol.EncodeConnectAccept(protocol.ConnectAccept{Width: 1, Height: 1})
		_ = w.Send(protocol.MsgConnectAccept, accept)
		serverConn.Close()
	}()
	session, err := client.NewSimpleClient(client.Options{}).Handshake(clientConn, protocol.ConnectRequest{Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("handshake: %v", err)
	}
	proxy := &chanProxy{events: make(chan OutputEvent, 4)}
	_, receiver := NewInputChannel(0)
	go NewEngine(nil, protocol.ConnectRequest{}, proxy, nil).Serve(context.Background(), session, receiver)

	if _, ok := proxy.next(t).(OutputImage); !ok {
		t.Fatalf("expected the initial blank frame")
	}
	term, ok := proxy.next(t).(OutputTerminated)
	if !ok || term.Err == nil {
		t.Fatalf("expected session error, got %+v", term)
	}
}

// unreachableDialer targets a port nothing listens on.
func unreachableDialer(t *testing.T) *client.SimpleClient {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return client.NewSimpleClient(client.Options{Address: addr, DialTimeout: time.Second})
}

func TestEngineConnectionFailure(t *testing.T) {
	proxy := &chanProxy{events: make(chan OutputEvent, 1)}
	sender, receiver := NewInputChannel(0)
	NewEngine(unreachableDialer(t), protocol.ConnectRequest{Width: 1, Height: 1}, proxy, nil).Run(context.Background(), receiver)

	if _, ok := proxy.next(t).(OutputConnectionFailure); !ok {
		t.Fatalf("expected connection failure")
	}
	if sender.IsClosed() {
		t.Fatalf("receiver closed although the loop took the failure")
	}
}

type closedProxy struct{}

func (closedProxy) Send(OutputEvent) error { return ErrEventLoopClosed }

func TestEngineClosesReceiverWhenLoopIsGone(t *testing.T) {
	sender, receiver := NewInputChannel(0)
	NewEngine(unreachableDialer(t), protocol.ConnectRequest{Width: 1, Height: 1}, closedProxy{}, nil).Run(context.Background(), receiver)
	if !sender.IsClosed() {
		t.Fatalf("receiver left open with no loop to take the failure")
	}
}
