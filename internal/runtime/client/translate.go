// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/runtime/client/translate.go
// Summary: Maps native window events to abstract input operations.
// Notes: Stateless; deduplication is left to input.Database.

package clientruntime

import (
	"math"

	"github.com/framegrace/texeldesk/input"
)

const (
	// wheelLineScale converts one wheel line into rotation units.
	wheelLineScale = 100
	wheelEpsilon   = 0.001
)

// Geometry is what the translator needs to map window coordinates onto the
// remote desktop.
type Geometry struct {
	WindowWidth  uint32
	WindowHeight uint32
	RemoteWidth  uint16
	RemoteHeight uint16
}

// Translate returns the operations for ev. Events that are not input yield
// nil.
func Translate(ev Event, g Geometry) []input.Operation {
	switch ev := ev.(type) {
	case KeyboardInput:
		return TranslateKeyboard(ev)
	case ModifiersChanged:
		return TranslateModifiers(ev.State)
	case CursorMoved:
		return TranslateCursor(ev, g)
	case MouseWheel:
		return TranslateWheel(ev.Delta)
	case MouseInput:
		return TranslateMouseButton(ev)
	}
	return nil
}

// TranslateKeyboard maps a physical key transition. Unmappable keys are
// dropped.
func TranslateKeyboard(ev KeyboardInput) []input.Operation {
	scancode, ok := ev.Key.Scancode()
	if !ok {
		return nil
	}
	if ev.State == Pressed {
		return []input.Operation{input.KeyPressed{Scancode: scancode}}
	}
	return []input.Operation{input.KeyReleased{Scancode: scancode}}
}

// TranslateModifiers emits the reported state of each tracked modifier,
// whether or not it changed.
func TranslateModifiers(state ModifiersState) []input.Operation {
	ops := make([]input.Operation, 0, 4)
	for _, m := range [...]struct {
		bit      ModifiersState
		scancode input.Scancode
	}{
		{ModShift, scancodeShiftLeft},
		{ModControl, scancodeControlLeft},
		{ModAlt, scancodeAltLeft},
		{ModSuper, scancodeSuperLeft},
	} {
		if state&m.bit != 0 {
			ops = append(ops, input.KeyPressed{Scancode: m.scancode})
		} else {
			ops = append(ops, input.KeyReleased{Scancode: m.scancode})
		}
	}
	return ops
}

// TranslateCursor scales window-local coordinates onto the remote desktop.
// Nothing is emitted while the window has no area.
func TranslateCursor(ev CursorMoved, g Geometry) []input.Operation {
	if g.WindowWidth == 0 || g.WindowHeight == 0 {
		return nil
	}
	x := ev.X / float64(g.WindowWidth) * float64(g.RemoteWidth)
	y := ev.Y / float64(g.WindowHeight) * float64(g.RemoteHeight)
	return []input.Operation{input.MouseMove{Position: input.MousePosition{
		X: saturateU16(x),
		Y: saturateU16(y),
	}}}
}

// TranslateWheel emits at most one horizontal and one vertical rotation.
func TranslateWheel(delta ScrollDelta) []input.Operation {
	scale := 1.0
	if delta.Kind == LineDelta {
		scale = wheelLineScale
	}
	var ops []input.Operation
	if math.Abs(delta.X) > wheelEpsilon {
		ops = append(ops, input.WheelRotation{Rotations: input.WheelRotations{
			IsVertical:    false,
			RotationUnits: saturateI16(delta.X * scale),
		}})
	}
	if math.Abs(delta.Y) > wheelEpsilon {
		ops = append(ops, input.WheelRotation{Rotations: input.WheelRotations{
			IsVertical:    true,
			RotationUnits: saturateI16(delta.Y * scale),
		}})
	}
	return ops
}

// TranslateMouseButton maps a button transition. Buttons with no protocol
// equivalent are dropped.
func TranslateMouseButton(ev MouseInput) []input.Operation {
	button, ok := mouseButton(ev.Button)
	if !ok {
		return nil
	}
	if ev.State == Pressed {
		return []input.Operation{input.MouseButtonPressed{Button: button}}
	}
	return []input.Operation{input.MouseButtonReleased{Button: button}}
}

func mouseButton(b NativeButton) (input.MouseButton, bool) {
	switch b.Kind {
	case ButtonLeft:
		return input.MouseButtonLeft, true
	case ButtonRight:
		return input.MouseButtonRight, true
	case ButtonMiddle:
		return input.MouseButtonMiddle, true
	case ButtonBack:
		return input.MouseButtonX1, true
	case ButtonForward:
		return input.MouseButtonX2, true
	case ButtonOther:
		return input.MouseButtonFromNative(b.Code)
	}
	return 0, false
}

// saturateU16 truncates toward zero and clamps; NaN maps to zero.
func saturateU16(v float64) uint16 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(v)
}

func saturateI16(v float64) int16 {
	switch {
	case math.IsNaN(v):
		return 0
	case v <= math.MinInt16:
		return math.MinInt16
	case v >= math.MaxInt16:
		return math.MaxInt16
	}
	return int16(v)
}
