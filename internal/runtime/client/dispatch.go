// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/runtime/client/dispatch.go
// Summary: Applies protocol output events to the window and surface.

package clientruntime

import (
	"errors"
	"fmt"
	"log"
)

var errEmptyImage = errors.New("clientruntime: image with zero dimension")

func (l *eventLoop) dispatch(ev OutputEvent) ControlFlow {
	g := l.gui
	switch ev := ev.(type) {
	case OutputImage:
		if err := l.present(ev); err != nil {
			log.Printf("present frame failed: %v", err)
		}
	case OutputConnectionFailure:
		log.Printf("connection failure: %v", ev.Err)
		fmt.Fprintf(g.stderr, "Connection error: %v\n", ev.Err)
		return l.finish(ExitProtocolError)
	case OutputTerminated:
		if ev.Err != nil {
			log.Printf("session terminated: %v", ev.Err)
			fmt.Fprintf(g.stderr, "Active session error: %v\n", ev.Err)
			return l.finish(ExitProtocolError)
		}
		log.Printf("session terminated gracefully: %s", ev.Reason)
		fmt.Fprintf(g.stdout, "Terminated gracefully: %s\n", ev.Reason)
		return l.finish(ExitOK)
	case OutputPointerHidden:
		g.window.SetCursorVisible(false)
	case OutputPointerDefault:
		g.window.SetCursorVisible(true)
	case OutputPointerPosition:
		x, y := l.toWindow(ev.X, ev.Y)
		if err := g.window.SetCursorPosition(x, y); err != nil {
			log.Printf("set cursor position failed: %v", err)
			fmt.Fprintf(g.stderr, "Failed to set cursor position: %v\n", err)
		}
	case OutputClipboard:
		g.window.SetClipboard(ev.Data)
	}
	return ControlWait
}

// present resizes the surface, copies the frame and presents it, in that
// order.
func (l *eventLoop) present(img OutputImage) error {
	if img.Width == 0 || img.Height == 0 {
		return errEmptyImage
	}
	want := int(img.Width) * int(img.Height)
	if len(img.Buffer) < want {
		return fmt.Errorf("clientruntime: image buffer has %d pixels, want %d", len(img.Buffer), want)
	}
	surface := l.gui.surface
	if err := surface.Resize(uint32(img.Width), uint32(img.Height)); err != nil {
		return fmt.Errorf("resize surface: %w", err)
	}
	buf, err := surface.BufferMut()
	if err != nil {
		return fmt.Errorf("map surface: %w", err)
	}
	copy(buf.Pixels(), img.Buffer[:want])
	if err := buf.Present(); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	l.remoteW, l.remoteH = img.Width, img.Height
	return nil
}

// toWindow maps desktop coordinates back into window-local coordinates.
func (l *eventLoop) toWindow(x, y uint16) (float64, float64) {
	w, h := l.gui.window.InnerSize()
	if l.remoteW == 0 || l.remoteH == 0 {
		return float64(x), float64(y)
	}
	return float64(x) * float64(w) / float64(l.remoteW), float64(y) * float64(h) / float64(l.remoteH)
}
