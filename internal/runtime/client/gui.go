// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/runtime/client/gui.go
// Summary: Single-threaded session event loop bridging the window and the engine.
// Usage: Created once per process; Run blocks until the session ends.
// Notes: The loop never touches the network. Input leaves through the
//        InputSender, output arrives as UserEvent through the frontend.

package clientruntime

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/framegrace/texeldesk/input"
)

// ExitStatus is the process exit code reported by the loop.
type ExitStatus int

const (
	ExitOK            ExitStatus = 0
	ExitFailure       ExitStatus = 1
	ExitProtocolError ExitStatus = 76
)

// GuiContext owns the frontend for its whole lifetime.
type GuiContext struct {
	frontend Frontend
	window   Window
	surface  Surface
	stdout   io.Writer
	stderr   io.Writer
	closed   bool
}

// NewGuiContext wraps fe. Operator-facing messages go to stdout and stderr.
func NewGuiContext(fe Frontend, stdout, stderr io.Writer) *GuiContext {
	return &GuiContext{
		frontend: fe,
		window:   fe.Window(),
		surface:  fe.Surface(),
		stdout:   stdout,
		stderr:   stderr,
	}
}

// Proxy returns the handle the engine posts output events through.
func (g *GuiContext) Proxy() Proxy {
	return g.frontend.Proxy()
}

// Window exposes the native window.
func (g *GuiContext) Window() Window {
	return g.window
}

// Run drives the loop until a terminal output event arrives, the close
// request cannot be delivered, or the engine drops its receiver.
func (g *GuiContext) Run(sender *InputSender) ExitStatus {
	w, h := g.window.InnerSize()
	loop := &eventLoop{
		gui:     g,
		sender:  sender,
		tracker: input.NewDatabase(),
		remoteW: clampU16(w),
		remoteH: clampU16(h),
		status:  ExitOK,
	}
	if err := g.frontend.Run(loop.handle); err != nil {
		log.Printf("event loop failed: %v", err)
		fmt.Fprintf(g.stderr, "Event loop error: %v\n", err)
		return ExitFailure
	}
	return loop.status
}

// Close releases the frontend. Calling it more than once is a no-op.
func (g *GuiContext) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	return g.frontend.Close()
}

type eventLoop struct {
	gui     *GuiContext
	sender  *InputSender
	tracker *input.Database

	// Dimensions of the last frame received, used for coordinate scaling.
	remoteW uint16
	remoteH uint16

	done   bool
	status ExitStatus
}

func (l *eventLoop) handle(ev Event) ControlFlow {
	if l.done {
		return ControlExit
	}

	switch ev := ev.(type) {
	case Resized:
		l.send(InputResize{
			Width:       clampU16(ev.Width),
			Height:      clampU16(ev.Height),
			ScaleFactor: uint32(l.gui.window.ScaleFactor() * 100),
		})
	case CloseRequested:
		if err := l.sender.Send(InputClose{}); err != nil {
			log.Printf("close request not delivered: %v", err)
			return l.finish(l.status)
		}
	case Focused:
		if !ev.Focused {
			l.forward(l.tracker.ReleaseAll())
		}
	case Paste:
		if ev.Text != "" {
			l.send(InputClipboard{MimeType: "text/plain;charset=utf-8", Data: []byte(ev.Text)})
		}
	case UserEvent:
		if l.dispatch(ev.Output) == ControlExit {
			return ControlExit
		}
	default:
		ops := Translate(ev, l.geometry())
		if len(ops) > 0 {
			l.forward(l.tracker.Apply(ops))
		}
	}

	if l.sender.IsClosed() {
		log.Printf("input channel closed, leaving event loop")
		return l.finish(l.status)
	}
	return ControlWait
}

func (l *eventLoop) geometry() Geometry {
	w, h := l.gui.window.InnerSize()
	return Geometry{WindowWidth: w, WindowHeight: h, RemoteWidth: l.remoteW, RemoteHeight: l.remoteH}
}

// forward sends a fast-path batch; empty batches are not sent.
func (l *eventLoop) forward(events []input.FastPathEvent) {
	if len(events) == 0 {
		return
	}
	l.send(InputFastPath{Events: events})
}

func (l *eventLoop) send(ev InputEvent) {
	if err := l.sender.Send(ev); err != nil {
		if !errors.Is(err, ErrChannelClosed) {
			log.Printf("input event dropped: %v", err)
		}
	}
}

func (l *eventLoop) finish(status ExitStatus) ControlFlow {
	l.done = true
	l.status = status
	return ControlExit
}

func clampU16(v uint32) uint16 {
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}
