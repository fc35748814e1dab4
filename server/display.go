// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: server/display.go
// Summary: Display strategy producing the desktop image and pointer state.

package server

import "context"

// DesktopSize is the size of the remote desktop in pixels.
type DesktopSize struct {
	Width  uint16
	Height uint16
}

// DisplayUpdate is one change to the desktop: a *BitmapUpdate,
// PointerPositionUpdate, PointerHiddenUpdate, PointerDefaultUpdate or
// ResizeUpdate.
type DisplayUpdate interface {
	isDisplayUpdate()
}

// BitmapUpdate replaces a rectangle. Pixels holds Height rows of Width
// 32-bit little-endian XRGB values.
type BitmapUpdate struct {
	Left   uint16
	Top    uint16
	Width  uint16
	Height uint16
	Pixels []byte
}

// PointerPositionUpdate moves the client cursor.
type PointerPositionUpdate struct {
	X uint16
	Y uint16
}

// PointerHiddenUpdate hides the client cursor.
type PointerHiddenUpdate struct{}

// PointerDefaultUpdate restores the client's default cursor.
type PointerDefaultUpdate struct{}

// ResizeUpdate announces a new desktop size. Bitmaps after it are relative
// to the new size.
type ResizeUpdate struct {
	Size DesktopSize
}

func (*BitmapUpdate) isDisplayUpdate()         {}
func (PointerPositionUpdate) isDisplayUpdate() {}
func (PointerHiddenUpdate) isDisplayUpdate()   {}
func (PointerDefaultUpdate) isDisplayUpdate()  {}
func (ResizeUpdate) isDisplayUpdate()          {}

// Display produces the desktop shown to the client.
//
// GetUpdate blocks until the next update is available. It returns a nil
// update and a nil error once the display will never produce another one,
// and ctx.Err() when ctx is cancelled first.
type Display interface {
	Size(ctx context.Context) DesktopSize
	GetUpdate(ctx context.Context) (DisplayUpdate, error)
}

// LayoutRequester is implemented by displays that can follow the client
// window size. The display answers with a ResizeUpdate when it accepts.
type LayoutRequester interface {
	RequestLayout(width, height uint16)
}
