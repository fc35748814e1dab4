// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: client/framebuffer.go
// Summary: Client-side copy of the remote desktop image.
// Usage: The protocol engine applies bitmap updates here and snapshots the
//   result for the GUI.

package client

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/framegrace/texeldesk/protocol"
)

// MaxFramebufferPixels bounds the desktop area a server may announce.
const MaxFramebufferPixels = 1 << 25

var (
	ErrDesktopTooLarge = errors.New("client: desktop size exceeds limit")
	ErrBitmapOffscreen = errors.New("client: bitmap outside the desktop")
	ErrBitmapOversized = errors.New("client: bitmap larger than the desktop")
)

// Framebuffer holds the desktop as packed 0x00RRGGBB pixels in row-major
// order. It is safe for concurrent use.
type Framebuffer struct {
	mu     sync.RWMutex
	width  int
	height int
	pixels []uint32
}

// NewFramebuffer allocates a black framebuffer.
func NewFramebuffer(width, height int) (*Framebuffer, error) {
	fb := &Framebuffer{}
	if err := fb.Resize(width, height); err != nil {
		return nil, err
	}
	return fb, nil
}

// Resize reallocates the framebuffer, discarding its contents. Areas above
// MaxFramebufferPixels are rejected and leave the framebuffer unchanged.
func (fb *Framebuffer) Resize(width, height int) error {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if width*height > MaxFramebufferPixels {
		return fmt.Errorf("%w: %dx%d", ErrDesktopTooLarge, width, height)
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.width = width
	fb.height = height
	fb.pixels = make([]uint32, width*height)
	return nil
}

// Size returns the current dimensions.
func (fb *Framebuffer) Size() (int, int) {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	return fb.width, fb.height
}

// Apply decodes a bitmap update and copies it in place. Parts of the
// rectangle outside the framebuffer are clipped. Updates that miss the
// framebuffer or declare more data than the whole desktop holds are rejected
// before decompression.
func (fb *Framebuffer) Apply(update protocol.BitmapUpdate) error {
	fbw, fbh := fb.Size()
	if update.Width == 0 || update.Height == 0 || int(update.Left) >= fbw || int(update.Top) >= fbh {
		return fmt.Errorf("%w: %dx%d at %d,%d", ErrBitmapOffscreen, update.Width, update.Height, update.Left, update.Top)
	}
	if int64(update.RawLength) > int64(fbw)*int64(fbh)*4 {
		return fmt.Errorf("%w: %d bytes for a %dx%d desktop", ErrBitmapOversized, update.RawLength, fbw, fbh)
	}
	data, err := update.Pixels()
	if err != nil {
		return err
	}
	if len(data) != int(update.Width)*int(update.Height)*4 {
		return fmt.Errorf("client: bitmap data length %d", len(data))
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	left, top := int(update.Left), int(update.Top)
	w, h := int(update.Width), int(update.Height)
	if left >= fb.width || top >= fb.height {
		return nil
	}
	visible := w
	if left+visible > fb.width {
		visible = fb.width - left
	}
	for row := 0; row < h && top+row < fb.height; row++ {
		src := data[row*w*4:]
		dst := fb.pixels[(top+row)*fb.width+left:]
		for col := 0; col < visible; col++ {
			dst[col] = binary.LittleEndian.Uint32(src[col*4:]) & 0x00FFFFFF
		}
	}
	return nil
}

// Snapshot returns a copy of the pixels along with the dimensions.
func (fb *Framebuffer) Snapshot() ([]uint32, int, int) {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	out := make([]uint32, len(fb.pixels))
	copy(out, fb.pixels)
	return out, fb.width, fb.height
}
