// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: client/cmd/texeldesk-headless/main.go
// Summary: Headless client harness.
// Usage: Used in CI and scripted checks to validate a server without a terminal.
// Notes: Optionally writes the final desktop to a PNG file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/gg"
	"github.com/spf13/pflag"

	"github.com/framegrace/texeldesk/client"
	"github.com/framegrace/texeldesk/protocol"
)

type headlessState struct {
	session *client.Session
	fb      *client.Framebuffer

	bitmapCount uint64
	logEvery    int
	maxFrames   uint64
}

func main() {
	flags := pflag.NewFlagSet("texeldesk-headless", pflag.ContinueOnError)
	address := flags.StringP("address", "a", "127.0.0.1:3389", "server address host:port")
	width := flags.Uint16("width", 640, "advertised window width")
	height := flags.Uint16("height", 400, "advertised window height")
	frames := flags.Uint64("frames", 0, "disconnect after this many bitmaps (0 runs until interrupted)")
	logEvery := flags.Int("log-every", 100, "log every N bitmaps (0 disables periodic logging)")
	snapshot := flags.String("snapshot", "", "write the final desktop to this PNG file")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	logger := log.New(os.Stdout, "[headless] ", log.LstdFlags|log.Lmicroseconds)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	simple := client.NewSimpleClient(client.Options{Address: *address, ClientName: "texeldesk-headless"})
	session, err := simple.Connect(ctx, protocol.ConnectRequest{Width: *width, Height: *height, ScaleFactor: 100})
	if err != nil {
		logger.Fatalf("connect failed: %v", err)
	}
	logger.Printf("connected to session %s on %q (%s, desktop %dx%d)",
		client.FormatUUID(session.ID), session.ServerName, session.Compression, session.Desktop.Width, session.Desktop.Height)

	fb, err := client.NewFramebuffer(int(session.Desktop.Width), int(session.Desktop.Height))
	if err != nil {
		_ = session.Close()
		logger.Fatalf("desktop: %v", err)
	}
	state := &headlessState{
		session:   session,
		fb:        fb,
		logEvery:  *logEvery,
		maxFrames: *frames,
	}

	done := make(chan error, 1)
	go func() { done <- state.readLoop(logger) }()

	select {
	case <-ctx.Done():
		logger.Printf("interrupted, closing connection")
		state.disconnect()
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	case err := <-done:
		if err != nil {
			logger.Printf("session ended: %v", err)
		}
	}
	_ = session.Close()

	if *snapshot != "" {
		if err := state.writeSnapshot(*snapshot); err != nil {
			logger.Fatalf("write snapshot: %v", err)
		}
		logger.Printf("wrote %s", *snapshot)
	}
	logger.Printf("exiting: bitmaps=%d", state.bitmapCount)
}

func (s *headlessState) readLoop(logger *log.Logger) error {
	for {
		hdr, payload, err := s.session.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		done, err := s.handleMessage(logger, hdr, payload)
		if err != nil {
			return fmt.Errorf("handle %v: %w", hdr.Type, err)
		}
		if done {
			return nil
		}
	}
}

func (s *headlessState) handleMessage(logger *log.Logger, hdr protocol.Header, payload []byte) (bool, error) {
	switch hdr.Type {
	case protocol.MsgDesktopSize:
		var size protocol.DesktopSize
		if err := protocol.Unmarshal(payload, &size); err != nil {
			return false, err
		}
		if err := s.fb.Resize(int(size.Width), int(size.Height)); err != nil {
			return false, err
		}
		logger.Printf("desktop is %dx%d", size.Width, size.Height)
	case protocol.MsgBitmapUpdate:
		var update protocol.BitmapUpdate
		if err := protocol.Unmarshal(payload, &update); err != nil {
			return false, err
		}
		if err := s.fb.Apply(update); err != nil {
			return false, err
		}
		s.bitmapCount++
		if s.logEvery > 0 && s.bitmapCount%uint64(s.logEvery) == 0 {
			logger.Printf("bitmaps=%d last-seq=%d", s.bitmapCount, hdr.Sequence)
		}
		if s.maxFrames > 0 && s.bitmapCount >= s.maxFrames {
			s.disconnect()
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
		return false, s.session.Send(protocol.MsgPong, pong)
	case protocol.MsgClipboardData:
		var clip protocol.ClipboardData
		if err := protocol.Unmarshal(payload, &clip); err != nil {
			return false, err
		}
		logger.Printf("clipboard %s (%d bytes)", clip.MimeType, len(clip.Data))
	case protocol.MsgDisconnectNotice:
		notice, err := protocol.DecodeDisconnectNotice(payload)
		if err != nil {
			return false, err
		}
		logger.Printf("server closed the session: %s", notice.Message)
		return true, nil
	case protocol.MsgError:
		frame, err := protocol.DecodeErrorFrame(payload)
		if err != nil {
			return false, err
		}
		return false, frame
	default:
		// Pointer state has no meaning without a screen.
	}
	return false, nil
}

func (s *headlessState) disconnect() {
	payload, err := protocol.EncodeDisconnectNotice(protocol.DisconnectNotice{ReasonCode: protocol.DisconnectUserRequested})
	if err == nil {
		_ = s.session.Send(protocol.MsgDisconnectNotice, payload)
	}
}

func (s *headlessState) writeSnapshot(path string) error {
	pixels, w, h := s.fb.Snapshot()
	pm := gg.NewPixmap(w, h)
	data := pm.Data()
	for i, p := range pixels {
		o := i * 4
		data[o] = uint8(p >> 16)
		data[o+1] = uint8(p >> 8)
		data[o+2] = uint8(p)
		data[o+3] = 0xFF
	}
	return pm.SavePNG(path)
}
