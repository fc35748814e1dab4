// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: input/scancode.go
// Summary: Hardware key identifiers and mouse buttons shared by client and server.

package input

import "fmt"

// Scancode is a set-1 keyboard scancode: an 8-bit code plus the extended
// (0xE0 prefix) bit.
type Scancode struct {
	Extended bool
	Code     uint8
}

// ScancodeFromU8 builds a scancode from its parts.
func ScancodeFromU8(extended bool, code uint8) Scancode {
	return Scancode{Extended: extended, Code: code}
}

// ScancodeFromU16 decodes the 0xE0XX form used by most platforms, where a
// high byte of 0xE0 (or 0xE1) marks an extended key.
func ScancodeFromU16(v uint16) Scancode {
	high := uint8(v >> 8)
	return Scancode{Extended: high == 0xE0 || high == 0xE1, Code: uint8(v)}
}

// AsU16 is the inverse of ScancodeFromU16.
func (s Scancode) AsU16() uint16 {
	if s.Extended {
		return 0xE000 | uint16(s.Code)
	}
	return uint16(s.Code)
}

func (s Scancode) index() int {
	if s.Extended {
		return 256 + int(s.Code)
	}
	return int(s.Code)
}

func (s Scancode) String() string {
	if s.Extended {
		return fmt.Sprintf("E0%02X", s.Code)
	}
	return fmt.Sprintf("%02X", s.Code)
}

// MouseButton enumerates the buttons the protocol can carry.
type MouseButton uint8

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
	MouseButtonX1
	MouseButtonX2

	mouseButtonCount
)

var mouseButtonNames = [...]string{"left", "right", "middle", "x1", "x2"}

func (b MouseButton) String() string {
	if b < mouseButtonCount {
		return mouseButtonNames[b]
	}
	return fmt.Sprintf("button(%d)", uint8(b))
}

// MouseButtonFromNative resolves an X11-style button number. Buttons 4-7
// are wheel rotations on that numbering and are not buttons.
func MouseButtonFromNative(code uint16) (MouseButton, bool) {
	switch code {
	case 1:
		return MouseButtonLeft, true
	case 2:
		return MouseButtonMiddle, true
	case 3:
		return MouseButtonRight, true
	case 8:
		return MouseButtonX1, true
	case 9:
		return MouseButtonX2, true
	}
	return 0, false
}

// MousePosition is a point on the remote desktop.
type MousePosition struct {
	X uint16
	Y uint16
}

// WheelRotations is a signed wheel movement on one axis.
type WheelRotations struct {
	IsVertical    bool
	RotationUnits int16
}
