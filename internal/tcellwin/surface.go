// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/tcellwin/surface.go
// Summary: Rendering surface that presents frames on the terminal cell grid.
// Notes: Each cell shows two vertically stacked pixels with an upper half
//        block: foreground is the top pixel, background the bottom one.

package tcellwin

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/image/draw"

	clientruntime "github.com/framegrace/texeldesk/internal/runtime/client"
)

const halfBlock = '▀'

var errSurfaceReleased = errors.New("tcellwin: surface released")

type surface struct {
	screen   tcell.Screen
	width    uint32
	height   uint32
	pixels   []uint32
	frame    *image.RGBA
	scaled   *image.RGBA
	released bool
}

func newSurface(screen tcell.Screen) *surface {
	return &surface{screen: screen}
}

func (s *surface) Resize(width, height uint32) error {
	if s.released {
		return errSurfaceReleased
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("tcellwin: invalid surface size %dx%d", width, height)
	}
	if width == s.width && height == s.height {
		return nil
	}
	s.width, s.height = width, height
	s.pixels = make([]uint32, int(width)*int(height))
	s.frame = image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	return nil
}

func (s *surface) BufferMut() (clientruntime.Buffer, error) {
	if s.released {
		return nil, errSurfaceReleased
	}
	if s.pixels == nil {
		return nil, errors.New("tcellwin: surface has no size")
	}
	return buffer{s: s}, nil
}

func (s *surface) Release() {
	s.released = true
	s.pixels = nil
	s.frame = nil
	s.scaled = nil
}

// redraw presents the last frame again, scaled to the current screen.
func (s *surface) redraw() {
	if s.released || s.frame == nil {
		return
	}
	s.paint()
}

func (s *surface) present() error {
	if s.released {
		return errSurfaceReleased
	}
	pix := s.frame.Pix
	for i, p := range s.pixels {
		o := i * 4
		pix[o] = uint8(p >> 16)
		pix[o+1] = uint8(p >> 8)
		pix[o+2] = uint8(p)
		pix[o+3] = 0xFF
	}
	s.paint()
	return nil
}

func (s *surface) paint() {
	cols, rows := s.screen.Size()
	if cols <= 0 || rows <= 0 {
		return
	}
	bounds := image.Rect(0, 0, cols, rows*2)
	if s.scaled == nil || s.scaled.Bounds() != bounds {
		s.scaled = image.NewRGBA(bounds)
	}
	draw.NearestNeighbor.Scale(s.scaled, bounds, s.frame, s.frame.Bounds(), draw.Src, nil)

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := s.scaled.RGBAAt(x, y*2)
			bottom := s.scaled.RGBAAt(x, y*2+1)
			style := tcell.StyleDefault.Foreground(rgb(top)).Background(rgb(bottom))
			s.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}
	s.screen.Show()
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

type buffer struct {
	s *surface
}

func (b buffer) Pixels() []uint32 { return b.s.pixels }
func (b buffer) Present() error   { return b.s.present() }
