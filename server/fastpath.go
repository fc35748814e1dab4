// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: server/fastpath.go
// Summary: Converts fast-path input records into InputHandler calls.

package server

import "github.com/framegrace/texeldesk/input"

var pointerButtons = [...]struct {
	flag   input.PointerFlags
	button input.MouseButton
}{
	{input.PointerLeftButton, input.MouseButtonLeft},
	{input.PointerRightButton, input.MouseButtonRight},
	{input.PointerMiddleButton, input.MouseButtonMiddle},
}

var extendedButtons = [...]struct {
	flag   input.PointerFlags
	button input.MouseButton
}{
	{input.PointerXButton1, input.MouseButtonX1},
	{input.PointerXButton2, input.MouseButtonX2},
}

// deliverFastPath hands ev to h. It reports false for records it cannot
// interpret.
func deliverFastPath(h InputHandler, ev input.FastPathEvent) bool {
	switch ev.Kind {
	case input.FastPathKeyboard:
		flags := ev.KeyboardFlags()
		h.Keyboard(KeyboardEvent{
			Released: flags&input.KeyboardRelease != 0,
			Scancode: input.ScancodeFromU8(flags&input.KeyboardExtended != 0, ev.Code),
		})
		return true
	case input.FastPathMouse:
		return deliverPointer(h, ev)
	case input.FastPathMouseX:
		flags := ev.PointerFlags()
		delivered := false
		for _, b := range extendedButtons {
			if flags&b.flag != 0 {
				h.Mouse(buttonEvent(ev, b.button))
				delivered = true
			}
		}
		return delivered
	}
	return false
}

func deliverPointer(h InputHandler, ev input.FastPathEvent) bool {
	flags := ev.PointerFlags()
	switch {
	case flags&input.PointerVerticalWheel != 0:
		h.Mouse(MouseEvent{Kind: MouseVerticalScroll, X: ev.X, Y: ev.Y, Value: ev.WheelUnits()})
		return true
	case flags&input.PointerHorizontalWheel != 0:
		h.Mouse(MouseEvent{Kind: MouseHorizontalScroll, X: ev.X, Y: ev.Y, Value: ev.WheelUnits()})
		return true
	}

	delivered := false
	if flags&input.PointerMove != 0 {
		h.Mouse(MouseEvent{Kind: MouseMove, X: ev.X, Y: ev.Y})
		delivered = true
	}
	for _, b := range pointerButtons {
		if flags&b.flag != 0 {
			h.Mouse(buttonEvent(ev, b.button))
			delivered = true
		}
	}
	return delivered
}

func buttonEvent(ev input.FastPathEvent, button input.MouseButton) MouseEvent {
	kind := MouseButtonUp
	if ev.PointerFlags()&input.PointerDown != 0 {
		kind = MouseButtonDown
	}
	return MouseEvent{Kind: kind, X: ev.X, Y: ev.Y, Button: button}
}
