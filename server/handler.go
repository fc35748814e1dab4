// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: server/handler.go
// Summary: Input handler strategy fed from client fast-path records.

package server

import (
	"fmt"

	"github.com/framegrace/texeldesk/input"
)

// KeyboardEvent is a key transition on the remote keyboard.
type KeyboardEvent struct {
	Released bool
	Scancode input.Scancode
}

func (e KeyboardEvent) String() string {
	if e.Released {
		return fmt.Sprintf("key %s up", e.Scancode)
	}
	return fmt.Sprintf("key %s down", e.Scancode)
}

// MouseEventKind selects which MouseEvent fields are meaningful.
type MouseEventKind uint8

const (
	// MouseMove uses X and Y.
	MouseMove MouseEventKind = iota
	// MouseButtonDown and MouseButtonUp use Button, X and Y.
	MouseButtonDown
	MouseButtonUp
	// MouseVerticalScroll and MouseHorizontalScroll use Value, positive
	// being up and right.
	MouseVerticalScroll
	MouseHorizontalScroll
)

// MouseEvent is a pointer action in desktop coordinates.
type MouseEvent struct {
	Kind   MouseEventKind
	X      uint16
	Y      uint16
	Button input.MouseButton
	Value  int16
}

// InputHandler receives client input. Calls are made from the connection's
// read loop, one at a time, and must not block for long. There is no way to
// report a failure back to the client.
type InputHandler interface {
	Keyboard(KeyboardEvent)
	Mouse(MouseEvent)
}
