// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/runtime/client/window.go
// Summary: Native window events and the front-end contract used by the GUI loop.
// Usage: internal/tcellwin implements Frontend on a terminal; tests use fakes.

package clientruntime

import "errors"

// ErrEventLoopClosed is returned by Proxy.Send once the loop has exited.
var ErrEventLoopClosed = errors.New("clientruntime: event loop closed")

// Event is one native window event. The set of implementations is closed.
type Event interface {
	isEvent()
}

// ElementState is the state of a key or button.
type ElementState uint8

const (
	Released ElementState = iota
	Pressed
)

// ModifiersState is a bitmask of the left-hand modifiers.
type ModifiersState uint8

const (
	ModShift ModifiersState = 1 << iota
	ModControl
	ModAlt
	ModSuper
)

// DeltaKind distinguishes wheel deltas in lines from deltas in pixels.
type DeltaKind uint8

const (
	LineDelta DeltaKind = iota
	PixelDelta
)

// ScrollDelta is a wheel movement on both axes.
type ScrollDelta struct {
	Kind DeltaKind
	X    float64
	Y    float64
}

// ButtonKind enumerates the buttons a front-end can report.
type ButtonKind uint8

const (
	ButtonLeft ButtonKind = iota
	ButtonRight
	ButtonMiddle
	ButtonBack
	ButtonForward
	ButtonOther
)

// NativeButton is a mouse button; Code is only meaningful for ButtonOther.
type NativeButton struct {
	Kind ButtonKind
	Code uint16
}

// Resized reports the new inner size of the window.
type Resized struct {
	Width  uint32
	Height uint32
}

// CloseRequested is delivered when the user asks to close the window.
type CloseRequested struct{}

// Focused reports a focus change.
type Focused struct {
	Focused bool
}

// KeyboardInput reports a physical key transition.
type KeyboardInput struct {
	Key   KeyCode
	State ElementState
}

// ModifiersChanged reports the current modifier state.
type ModifiersChanged struct {
	State ModifiersState
}

// CursorMoved reports the pointer in window-local logical coordinates.
type CursorMoved struct {
	X float64
	Y float64
}

// MouseWheel reports wheel movement.
type MouseWheel struct {
	Delta ScrollDelta
}

// MouseInput reports a mouse button transition.
type MouseInput struct {
	State  ElementState
	Button NativeButton
}

// Paste carries text pasted into the window.
type Paste struct {
	Text string
}

// UserEvent wraps an OutputEvent posted through the Proxy.
type UserEvent struct {
	Output OutputEvent
}

func (Resized) isEvent()          {}
func (CloseRequested) isEvent()   {}
func (Focused) isEvent()          {}
func (KeyboardInput) isEvent()    {}
func (ModifiersChanged) isEvent() {}
func (CursorMoved) isEvent()      {}
func (MouseWheel) isEvent()       {}
func (MouseInput) isEvent()       {}
func (Paste) isEvent()            {}
func (UserEvent) isEvent()        {}

// ControlFlow is returned by the event handler after every event.
type ControlFlow uint8

const (
	ControlWait ControlFlow = iota
	ControlExit
)

// Window is the part of the native window the loop drives.
type Window interface {
	// InnerSize returns the drawable area in logical pixels.
	InnerSize() (width, height uint32)
	ScaleFactor() float64
	SetCursorVisible(visible bool)
	SetCursorPosition(x, y float64) error
	SetClipboard(data []byte)
}

// Buffer is a writable frame of 0x00RRGGBB pixels.
type Buffer interface {
	Pixels() []uint32
	Present() error
}

// Surface is the rendering surface attached to the window.
type Surface interface {
	Resize(width, height uint32) error
	BufferMut() (Buffer, error)
	Release()
}

// Proxy injects output events into a running loop from another goroutine.
type Proxy interface {
	Send(ev OutputEvent) error
}

// Frontend owns the native window, its surface and the event loop.
type Frontend interface {
	Window() Window
	Surface() Surface
	Proxy() Proxy
	// Run delivers events to handler until it returns ControlExit.
	Run(handler func(Event) ControlFlow) error
	// Close releases the surface before the window and display connection.
	Close() error
}
