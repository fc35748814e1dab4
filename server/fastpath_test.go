package server

import (
	"reflect"
	"testing"

	"github.com/framegrace/texeldesk/input"
)

func TestDeliverFastPath(t *testing.T) {
	tests := []struct {
		name  string
		ev    input.FastPathEvent
		keys  []KeyboardEvent
		mouse []MouseEvent
	}{
		{
			name: "key press",
			ev:   input.NewKeyboardEvent(0, 0x1E),
			keys: []KeyboardEvent{{Scancode: input.ScancodeFromU8(false, 0x1E)}},
		},
		{
			name: "extended key release",
			ev:   input.NewKeyboardEvent(input.KeyboardRelease|input.KeyboardExtended, 0x48),
			keys: []KeyboardEvent{{Released: true, Scancode: input.ScancodeFromU8(true, 0x48)}},
		},
		{
			name:  "move",
			ev:    input.NewMouseEvent(input.PointerMove, 10, 20),
			mouse: []MouseEvent{{Kind: MouseMove, X: 10, Y: 20}},
		},
		{
			name:  "left down",
			ev:    input.NewMouseEvent(input.PointerLeftButton|input.PointerDown, 1, 2),
			mouse: []MouseEvent{{Kind: MouseButtonDown, X: 1, Y: 2, Button: input.MouseButtonLeft}},
		},
		{
			name:  "middle up",
			ev:    input.NewMouseEvent(input.PointerMiddleButton, 1, 2),
			mouse: []MouseEvent{{Kind: MouseButtonUp, X: 1, Y: 2, Button: input.MouseButtonMiddle}},
		},
		{
			name: "move with right down",
			ev:   input.NewMouseEvent(input.PointerMove|input.PointerRightButton|input.PointerDown, 3, 4),
			mouse: []MouseEvent{
				{Kind: MouseMove, X: 3, Y: 4},
				{Kind: MouseButtonDown, X: 3, Y: 4, Button: input.MouseButtonRight},
			},
		},
		{
			name:  "x2 down",
			ev:    input.NewMouseEventEx(input.PointerXButton2|input.PointerDown, 5, 6),
			mouse: []MouseEvent{{Kind: MouseButtonDown, X: 5, Y: 6, Button: input.MouseButtonX2}},
		},
		{
			name:  "wheel up",
			ev:    input.NewMouseEvent(input.PointerVerticalWheel|0x78, 0, 0),
			mouse: []MouseEvent{{Kind: MouseVerticalScroll, Value: 120}},
		},
		{
			name:  "wheel left",
			ev:    input.NewMouseEvent(input.PointerHorizontalWheel|input.PointerWheelNegative|0x88, 0, 0),
			mouse: []MouseEvent{{Kind: MouseHorizontalScroll, Value: -120}},
		},
	}
	for _, tt := range tests {
		h := &recordingHandler{}
		if !deliverFastPath(h, tt.ev) {
			t.Errorf("%s: not delivered", tt.name)
			continue
		}
		if !reflect.DeepEqual(h.keys, tt.keys) {
			t.Errorf("%s: keys = %+v, want %+v", tt.name, h.keys, tt.keys)
		}
		if !reflect.DeepEqual(h.mouse, tt.mouse) {
			t.Errorf("%s: mouse = %+v, want %+v", tt.name, h.mouse, tt.mouse)
		}
	}
}

func TestDeliverFastPathRejectsUnknown(t *testing.T) {
	h := &recordingHandler{}
	if deliverFastPath(h, input.FastPathEvent{Kind: 99}) {
		t.Fatalf("unknown kind delivered")
	}
	if deliverFastPath(h, input.NewMouseEvent(0, 1, 1)) {
		t.Fatalf("empty pointer record delivered")
	}
	if len(h.keys)+len(h.mouse) != 0 {
		t.Fatalf("handler called: %+v %+v", h.keys, h.mouse)
	}
}
