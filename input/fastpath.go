// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: input/fastpath.go
// Summary: Compact protocol-level input records carried in FastPathInput frames.

package input

// FastPathKind tags the record layout of a FastPathEvent.
type FastPathKind uint8

const (
	FastPathKeyboard FastPathKind = iota + 1
	FastPathMouse
	FastPathMouseX
)

// KeyboardFlags qualify a keyboard record.
type KeyboardFlags uint16

const (
	KeyboardRelease  KeyboardFlags = 0x01
	KeyboardExtended KeyboardFlags = 0x02
)

// PointerFlags qualify a mouse record. Values follow the TS_POINTER_EVENT
// layout so records can be relayed to an RDP peer unchanged.
type PointerFlags uint16

const (
	PointerWheelNegative   PointerFlags = 0x0100
	PointerVerticalWheel   PointerFlags = 0x0200
	PointerHorizontalWheel PointerFlags = 0x0400
	PointerMove            PointerFlags = 0x0800
	PointerLeftButton      PointerFlags = 0x1000
	PointerRightButton     PointerFlags = 0x2000
	PointerMiddleButton    PointerFlags = 0x4000
	PointerDown            PointerFlags = 0x8000

	pointerWheelUnitMask PointerFlags = 0x00FF
)

// Extended mouse flags for the X1/X2 buttons.
const (
	PointerXButton1 PointerFlags = 0x0001
	PointerXButton2 PointerFlags = 0x0002
)

// FastPathEvent is one protocol-level input record. Only the fields relevant
// to Kind are meaningful.
type FastPathEvent struct {
	_ struct{} `cbor:",toarray"`

	Kind  FastPathKind
	Flags uint16
	Code  uint8
	X     uint16
	Y     uint16
}

// NewKeyboardEvent builds a keyboard record.
func NewKeyboardEvent(flags KeyboardFlags, code uint8) FastPathEvent {
	return FastPathEvent{Kind: FastPathKeyboard, Flags: uint16(flags), Code: code}
}

// NewMouseEvent builds a mouse record.
func NewMouseEvent(flags PointerFlags, x, y uint16) FastPathEvent {
	return FastPathEvent{Kind: FastPathMouse, Flags: uint16(flags), X: x, Y: y}
}

// NewMouseEventEx builds an extended mouse record for the X buttons.
func NewMouseEventEx(flags PointerFlags, x, y uint16) FastPathEvent {
	return FastPathEvent{Kind: FastPathMouseX, Flags: uint16(flags), X: x, Y: y}
}

// KeyboardFlags returns Flags interpreted as keyboard flags.
func (e FastPathEvent) KeyboardFlags() KeyboardFlags { return KeyboardFlags(e.Flags) }

// PointerFlags returns Flags interpreted as pointer flags.
func (e FastPathEvent) PointerFlags() PointerFlags { return PointerFlags(e.Flags) }

// WheelUnits decodes the signed rotation carried by a wheel record.
func (e FastPathEvent) WheelUnits() int16 {
	flags := e.PointerFlags()
	units := int16(flags & pointerWheelUnitMask)
	if flags&PointerWheelNegative != 0 {
		// The magnitude is stored as a 9-bit two's complement value.
		units -= 256
	}
	return units
}
