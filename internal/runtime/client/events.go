// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/runtime/client/events.go
// Summary: Messages exchanged between the GUI loop and the protocol engine.
// Notes: Values are handed over by the channel and must not be mutated after sending.

package clientruntime

import "github.com/framegrace/texeldesk/input"

// InputEvent flows from the GUI loop to the protocol engine.
type InputEvent interface {
	isInputEvent()
}

// PhysicalSize is the window size in device pixels.
type PhysicalSize struct {
	Width  uint32
	Height uint32
}

// InputResize reports a new window geometry. ScaleFactor is in percent.
type InputResize struct {
	Width        uint16
	Height       uint16
	ScaleFactor  uint32
	PhysicalSize *PhysicalSize
}

// InputClose asks the engine to end the session.
type InputClose struct{}

// InputFastPath carries one non-empty batch of fast-path records.
type InputFastPath struct {
	Events []input.FastPathEvent
}

// InputClipboard hands local clipboard contents to the server.
type InputClipboard struct {
	MimeType string
	Data     []byte
}

func (InputResize) isInputEvent()    {}
func (InputClose) isInputEvent()     {}
func (InputFastPath) isInputEvent()  {}
func (InputClipboard) isInputEvent() {}

// OutputEvent flows from the protocol engine to the GUI loop.
type OutputEvent interface {
	isOutputEvent()
}

// OutputImage is a complete desktop frame of Width*Height 0x00RRGGBB pixels.
type OutputImage struct {
	Buffer []uint32
	Width  uint16
	Height uint16
}

// OutputConnectionFailure reports that the session could not be established.
type OutputConnectionFailure struct {
	Err error
}

// OutputTerminated ends an established session. A nil Err is a graceful
// shutdown described by Reason.
type OutputTerminated struct {
	Reason string
	Err    error
}

// OutputPointerHidden hides the local cursor.
type OutputPointerHidden struct{}

// OutputPointerDefault shows the local cursor.
type OutputPointerDefault struct{}

// OutputPointerPosition moves the cursor to desktop coordinates.
type OutputPointerPosition struct {
	X uint16
	Y uint16
}

// OutputClipboard delivers remote clipboard contents.
type OutputClipboard struct {
	MimeType string
	Data     []byte
}

func (OutputImage) isOutputEvent()             {}
func (OutputConnectionFailure) isOutputEvent() {}
func (OutputTerminated) isOutputEvent()        {}
func (OutputPointerHidden) isOutputEvent()     {}
func (OutputPointerDefault) isOutputEvent()    {}
func (OutputPointerPosition) isOutputEvent()   {}
func (OutputClipboard) isOutputEvent()         {}
