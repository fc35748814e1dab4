// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: input/database.go
// Summary: Input state tracker that turns operation batches into fast-path records.
// Usage: Owned by a single front-end loop; not safe for concurrent use.
// Notes: Presses and releases are only emitted on state transitions, so callers
//        may resend the full modifier state without producing duplicates.

package input

const maxWheelUnits = 255

// Database remembers which keys and buttons are down and where the pointer
// is, and emits protocol records only for changes.
type Database struct {
	keys     [512]bool
	buttons  [mouseButtonCount]bool
	position MousePosition
}

// NewDatabase returns an empty tracker.
func NewDatabase() *Database {
	return &Database{}
}

// Apply folds ops into the tracked state and returns the resulting records
// in order. The result is empty when nothing changed.
func (db *Database) Apply(ops []Operation) []FastPathEvent {
	var events []FastPathEvent
	for _, op := range ops {
		switch op := op.(type) {
		case KeyPressed:
			idx := op.Scancode.index()
			if db.keys[idx] {
				continue
			}
			db.keys[idx] = true
			events = append(events, keyboardRecord(op.Scancode, false))
		case KeyReleased:
			idx := op.Scancode.index()
			if !db.keys[idx] {
				continue
			}
			db.keys[idx] = false
			events = append(events, keyboardRecord(op.Scancode, true))
		case MouseMove:
			if op.Position == db.position {
				continue
			}
			db.position = op.Position
			events = append(events, NewMouseEvent(PointerMove, op.Position.X, op.Position.Y))
		case MouseButtonPressed:
			if op.Button >= mouseButtonCount || db.buttons[op.Button] {
				continue
			}
			db.buttons[op.Button] = true
			events = append(events, db.buttonRecord(op.Button, true))
		case MouseButtonReleased:
			if op.Button >= mouseButtonCount || !db.buttons[op.Button] {
				continue
			}
			db.buttons[op.Button] = false
			events = append(events, db.buttonRecord(op.Button, false))
		case WheelRotation:
			events = append(events, db.wheelRecords(op.Rotations)...)
		}
	}
	return events
}

// ReleaseAll releases every key and button currently held down.
func (db *Database) ReleaseAll() []FastPathEvent {
	var events []FastPathEvent
	for idx, down := range db.keys {
		if !down {
			continue
		}
		db.keys[idx] = false
		sc := Scancode{Extended: idx >= 256, Code: uint8(idx)}
		events = append(events, keyboardRecord(sc, true))
	}
	for b, down := range db.buttons {
		if !down {
			continue
		}
		db.buttons[b] = false
		events = append(events, db.buttonRecord(MouseButton(b), false))
	}
	return events
}

// IsKeyPressed reports whether sc is currently held.
func (db *Database) IsKeyPressed(sc Scancode) bool {
	return db.keys[sc.index()]
}

// IsButtonPressed reports whether b is currently held.
func (db *Database) IsButtonPressed(b MouseButton) bool {
	return b < mouseButtonCount && db.buttons[b]
}

// Position returns the last pointer position sent.
func (db *Database) Position() MousePosition {
	return db.position
}

func keyboardRecord(sc Scancode, release bool) FastPathEvent {
	var flags KeyboardFlags
	if release {
		flags |= KeyboardRelease
	}
	if sc.Extended {
		flags |= KeyboardExtended
	}
	return NewKeyboardEvent(flags, sc.Code)
}

func (db *Database) buttonRecord(b MouseButton, down bool) FastPathEvent {
	var flags PointerFlags
	if down {
		flags = PointerDown
	}
	switch b {
	case MouseButtonLeft:
		return NewMouseEvent(flags|PointerLeftButton, db.position.X, db.position.Y)
	case MouseButtonRight:
		return NewMouseEvent(flags|PointerRightButton, db.position.X, db.position.Y)
	case MouseButtonMiddle:
		return NewMouseEvent(flags|PointerMiddleButton, db.position.X, db.position.Y)
	case MouseButtonX1:
		return NewMouseEventEx(flags|PointerXButton1, db.position.X, db.position.Y)
	default:
		return NewMouseEventEx(flags|PointerXButton2, db.position.X, db.position.Y)
	}
}

// wheelRecords splits a rotation into records whose magnitude fits the
// 9-bit field.
func (db *Database) wheelRecords(rot WheelRotations) []FastPathEvent {
	axis := PointerHorizontalWheel
	if rot.IsVertical {
		axis = PointerVerticalWheel
	}
	remaining := int(rot.RotationUnits)
	var events []FastPathEvent
	for remaining != 0 {
		step := remaining
		if step > maxWheelUnits {
			step = maxWheelUnits
		} else if step < -maxWheelUnits {
			step = -maxWheelUnits
		}
		remaining -= step
		flags := axis | PointerFlags(uint16(int16(step)))&pointerWheelUnitMask
		if step < 0 {
			flags |= PointerWheelNegative
		}
		events = append(events, NewMouseEvent(flags, db.position.X, db.position.Y))
	}
	return events
}
