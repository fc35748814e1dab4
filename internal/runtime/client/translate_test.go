package clientruntime

import (
	"reflect"
	"testing"

	"github.com/framegrace/texeldesk/input"
)

func TestTranslateWheelEpsilon(t *testing.T) {
	tests := []struct {
		name  string
		delta ScrollDelta
		want  []input.Operation
	}{
		{"below epsilon", ScrollDelta{Kind: LineDelta, X: 0.001, Y: -0.0005}, nil},
		{"vertical line", ScrollDelta{Kind: LineDelta, Y: 1}, []input.Operation{
			input.WheelRotation{Rotations: input.WheelRotations{IsVertical: true, RotationUnits: 100}},
		}},
		{"both axes horizontal first", ScrollDelta{Kind: LineDelta, X: -0.5, Y: 0.25}, []input.Operation{
			input.WheelRotation{Rotations: input.WheelRotations{IsVertical: false, RotationUnits: -50}},
			input.WheelRotation{Rotations: input.WheelRotations{IsVertical: true, RotationUnits: 25}},
		}},
		{"pixel delta unscaled", ScrollDelta{Kind: PixelDelta, Y: -12.7}, []input.Operation{
			input.WheelRotation{Rotations: input.WheelRotations{IsVertical: true, RotationUnits: -12}},
		}},
		{"pixel delta just over epsilon", ScrollDelta{Kind: PixelDelta, X: 0.002}, []input.Operation{
			input.WheelRotation{Rotations: input.WheelRotations{IsVertical: false, RotationUnits: 0}},
		}},
		{"saturates", ScrollDelta{Kind: LineDelta, Y: 1e6}, []input.Operation{
			input.WheelRotation{Rotations: input.WheelRotations{IsVertical: true, RotationUnits: 32767}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateWheel(tt.delta)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("TranslateWheel(%+v) = %+v, want %+v", tt.delta, got, tt.want)
			}
		})
	}
}

func TestTranslateModifiersAlwaysEmitsFour(t *testing.T) {
	for state := ModifiersState(0); state < 16; state++ {
		ops := TranslateModifiers(state)
		if len(ops) != 4 {
			t.Fatalf("state %04b: %d operations", state, len(ops))
		}
		for i, bit := range []ModifiersState{ModShift, ModControl, ModAlt, ModSuper} {
			_, pressed := ops[i].(input.KeyPressed)
			if pressed != (state&bit != 0) {
				t.Fatalf("state %04b: operation %d = %+v", state, i, ops[i])
			}
		}
	}
	ops := TranslateModifiers(ModSuper)
	if got := ops[3].(input.KeyPressed).Scancode; got != input.ScancodeFromU8(true, 0x5B) {
		t.Fatalf("super scancode = %v", got)
	}
}

func TestTranslateCursorScaling(t *testing.T) {
	identity := Geometry{WindowWidth: 800, WindowHeight: 600, RemoteWidth: 800, RemoteHeight: 600}
	ops := TranslateCursor(CursorMoved{X: 123.9, Y: 456.2}, identity)
	want := input.MouseMove{Position: input.MousePosition{X: 123, Y: 456}}
	if len(ops) != 1 || ops[0] != want {
		t.Fatalf("identity scale = %+v", ops)
	}

	double := Geometry{WindowWidth: 400, WindowHeight: 300, RemoteWidth: 800, RemoteHeight: 600}
	ops = TranslateCursor(CursorMoved{X: 100, Y: 150}, double)
	want = input.MouseMove{Position: input.MousePosition{X: 200, Y: 300}}
	if len(ops) != 1 || ops[0] != want {
		t.Fatalf("scaled = %+v", ops)
	}

	ops = TranslateCursor(CursorMoved{X: -5, Y: 1}, identity)
	if ops[0].(input.MouseMove).Position.X != 0 {
		t.Fatalf("negative coordinate not clamped: %+v", ops)
	}

	if ops := TranslateCursor(CursorMoved{X: 1, Y: 1}, Geometry{RemoteWidth: 10, RemoteHeight: 10}); ops != nil {
		t.Fatalf("zero-sized window produced %+v", ops)
	}
}

func TestTranslateKeyboard(t *testing.T) {
	ops := TranslateKeyboard(KeyboardInput{Key: KeyArrowUp, State: Pressed})
	want := input.KeyPressed{Scancode: input.ScancodeFromU8(true, 0x48)}
	if len(ops) != 1 || ops[0] != want {
		t.Fatalf("arrow up = %+v", ops)
	}
	ops = TranslateKeyboard(KeyboardInput{Key: KeyA, State: Released})
	if len(ops) != 1 || ops[0] != (input.KeyReleased{Scancode: input.ScancodeFromU8(false, 0x1E)}) {
		t.Fatalf("a release = %+v", ops)
	}
	for _, k := range []KeyCode{KeyUnidentified, KeyPause, keyCodeCount + 3} {
		if ops := TranslateKeyboard(KeyboardInput{Key: k, State: Pressed}); ops != nil {
			t.Fatalf("key %d should be unmappable, got %+v", k, ops)
		}
	}
}

func TestKeymapHasNoDuplicateScancodes(t *testing.T) {
	seen := make(map[input.Scancode]KeyCode)
	for k := KeyCode(0); k < keyCodeCount; k++ {
		sc, ok := k.Scancode()
		if !ok {
			continue
		}
		if prev, dup := seen[sc]; dup {
			t.Fatalf("keys %d and %d share scancode %v", prev, k, sc)
		}
		seen[sc] = k
	}
}

func TestTranslateMouseButton(t *testing.T) {
	tests := []struct {
		button NativeButton
		want   input.MouseButton
		ok     bool
	}{
		{NativeButton{Kind: ButtonLeft}, input.MouseButtonLeft, true},
		{NativeButton{Kind: ButtonRight}, input.MouseButtonRight, true},
		{NativeButton{Kind: ButtonMiddle}, input.MouseButtonMiddle, true},
		{NativeButton{Kind: ButtonBack}, input.MouseButtonX1, true},
		{NativeButton{Kind: ButtonForward}, input.MouseButtonX2, true},
		{NativeButton{Kind: ButtonOther, Code: 8}, input.MouseButtonX1, true},
		{NativeButton{Kind: ButtonOther, Code: 42}, 0, false},
	}
	for _, tt := range tests {
		ops := TranslateMouseButton(MouseInput{State: Pressed, Button: tt.button})
		if !tt.ok {
			if ops != nil {
				t.Fatalf("%+v: expected drop, got %+v", tt.button, ops)
			}
			continue
		}
		if len(ops) != 1 || ops[0] != (input.MouseButtonPressed{Button: tt.want}) {
			t.Fatalf("%+v = %+v", tt.button, ops)
		}
	}
}

func TestTranslateIgnoresNonInput(t *testing.T) {
	for _, ev := range []Event{Resized{Width: 1, Height: 1}, CloseRequested{}, Focused{}, Paste{Text: "x"}} {
		if ops := Translate(ev, Geometry{}); ops != nil {
			t.Fatalf("%T produced %+v", ev, ops)
		}
	}
}
