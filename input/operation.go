// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package input

// Operation is one abstract input action produced by a front-end. The set of
// implementations is closed.
type Operation interface {
	isOperation()
}

// KeyPressed reports that a key went down.
type KeyPressed struct{ Scancode Scancode }

// KeyReleased reports that a key went up.
type KeyReleased struct{ Scancode Scancode }

// MouseMove moves the pointer to an absolute desktop position.
type MouseMove struct{ Position MousePosition }

// MouseButtonPressed reports that a mouse button went down.
type MouseButtonPressed struct{ Button MouseButton }

// MouseButtonReleased reports that a mouse button went up.
type MouseButtonReleased struct{ Button MouseButton }

// WheelRotation rotates the wheel on one axis.
type WheelRotation struct{ Rotations WheelRotations }

func (KeyPressed) isOperation()          {}
func (KeyReleased) isOperation()         {}
func (MouseMove) isOperation()           {}
func (MouseButtonPressed) isOperation()  {}
func (MouseButtonReleased) isOperation() {}
func (WheelRotation) isOperation()       {}
