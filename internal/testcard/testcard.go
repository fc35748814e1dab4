// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/testcard/testcard.go
// Summary: Demo desktop served by texeldesk-server.
// Usage: Passed to the server builder as both input handler and display.
// Notes: Colour bars with a sweeping marker; a spot follows the pointer,
//        keys cycle its colour, the wheel sizes it and H toggles the cursor.

package testcard

import (
	"context"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"

	"github.com/framegrace/texeldesk/input"
	"github.com/framegrace/texeldesk/server"
)

const (
	minSide       = 16
	defaultRadius = 6.0
	minRadius     = 2.0
	wheelStep     = 120
)

var (
	scancodeEscape = input.ScancodeFromU8(false, 0x01)
	scancodeH      = input.ScancodeFromU8(false, 0x23)
)

var bars = [...]color.RGBA{
	{192, 192, 192, 255},
	{192, 192, 0, 255},
	{0, 192, 192, 255},
	{0, 192, 0, 255},
	{192, 0, 192, 255},
	{192, 0, 0, 255},
	{0, 0, 192, 255},
}

var accents = [...]string{"#ff6b35", "#f7c59f", "#2ec4b6", "#e71d36", "#ffffff"}

// Options tunes a Card.
type Options struct {
	// FPS animates the marker at this rate. Zero redraws only on input.
	FPS int
	// FollowClient resizes the card to the client window.
	FollowClient bool
}

// Card implements server.Display, server.InputHandler and
// server.LayoutRequester.
type Card struct {
	opts     Options
	interval time.Duration
	wake     chan struct{}

	mu      sync.Mutex
	size    server.DesktopSize
	pending []server.DisplayUpdate
	dirty   bool
	frame   int
	accent  int
	radius  float64
	pointer image.Point
	visible bool
	pressed int
	hidden  bool
	dc      *gg.Context
}

// New returns a card of the given size, clamped to a small minimum.
func New(width, height uint16, opts Options) *Card {
	c := &Card{
		opts:   opts,
		wake:   make(chan struct{}, 1),
		size:   clampSize(width, height),
		dirty:  true,
		radius: defaultRadius,
	}
	if opts.FPS > 0 {
		c.interval = time.Second / time.Duration(opts.FPS)
	}
	return c
}

func clampSize(width, height uint16) server.DesktopSize {
	return server.DesktopSize{Width: max(width, minSide), Height: max(height, minSide)}
}

func (c *Card) Size(context.Context) server.DesktopSize {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// GetUpdate returns queued pointer and resize updates first, then a full
// frame whenever the picture changed.
func (c *Card) GetUpdate(ctx context.Context) (server.DisplayUpdate, error) {
	var tick <-chan time.Time
	if c.interval > 0 {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		update, err := c.next()
		if err != nil || update != nil {
			return update, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.wake:
		case <-tick:
			c.mu.Lock()
			c.frame++
			c.dirty = true
			c.mu.Unlock()
		}
	}
}

func (c *Card) next() (server.DisplayUpdate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) > 0 {
		update := c.pending[0]
		c.pending = c.pending[1:]
		return update, nil
	}
	if !c.dirty {
		return nil, nil
	}
	c.dirty = false
	return c.render()
}

// RequestLayout resizes the card when it follows the client.
func (c *Card) RequestLayout(width, height uint16) {
	if !c.opts.FollowClient {
		return
	}
	size := clampSize(width, height)
	c.change(func() {
		if size == c.size {
			return
		}
		c.size = size
		c.pending = append(c.pending, server.ResizeUpdate{Size: size})
	})
}

func (c *Card) Keyboard(ev server.KeyboardEvent) {
	if ev.Released {
		return
	}
	c.change(func() {
		switch ev.Scancode {
		case scancodeEscape:
			c.accent = 0
			c.radius = defaultRadius
		case scancodeH:
			c.hidden = !c.hidden
			if c.hidden {
				c.pending = append(c.pending, server.PointerHiddenUpdate{})
			} else {
				c.pending = append(c.pending, server.PointerDefaultUpdate{})
			}
		default:
			c.accent = (c.accent + 1) % len(accents)
		}
	})
}

func (c *Card) Mouse(ev server.MouseEvent) {
	c.change(func() {
		switch ev.Kind {
		case server.MouseMove:
			c.pointer = image.Pt(int(ev.X), int(ev.Y))
			c.visible = true
		case server.MouseButtonDown:
			c.pressed++
			if ev.Button == input.MouseButtonMiddle {
				c.pending = append(c.pending, server.PointerPositionUpdate{X: c.size.Width / 2, Y: c.size.Height / 2})
				c.pointer = image.Pt(int(c.size.Width/2), int(c.size.Height/2))
			}
		case server.MouseButtonUp:
			if c.pressed > 0 {
				c.pressed--
			}
		case server.MouseVerticalScroll:
			c.radius = max(minRadius, c.radius+float64(ev.Value)/wheelStep)
		}
	})
}

// change applies fn under the lock, marks the picture dirty and wakes a
// waiting GetUpdate.
func (c *Card) change(fn func()) {
	c.mu.Lock()
	fn()
	c.dirty = true
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// render draws the current state. The lock must be held.
func (c *Card) render() (server.DisplayUpdate, error) {
	w, h := int(c.size.Width), int(c.size.Height)
	if c.dc == nil || c.dc.Width() != w || c.dc.Height() != h {
		if c.dc != nil {
			_ = c.dc.Close()
		}
		c.dc = gg.NewContext(w, h)
	}
	dc := c.dc
	fw, fh := float64(w), float64(h)
	dc.ClearWithColor(gg.Hex("#101018"))

	barWidth := fw / float64(len(bars))
	barHeight := fh * 3 / 4
	for i, col := range bars {
		dc.SetColor(col)
		dc.DrawRectangle(float64(i)*barWidth, 0, barWidth+1, barHeight)
		if err := dc.Fill(); err != nil {
			return nil, err
		}
	}
	dc.SetHexColor("#ffffff")
	dc.DrawRectangle(float64(c.frame%w), barHeight, 2, fh-barHeight)
	if err := dc.Fill(); err != nil {
		return nil, err
	}

	if c.visible {
		dc.SetHexColor(accents[c.accent])
		dc.DrawCircle(float64(c.pointer.X)+0.5, float64(c.pointer.Y)+0.5, c.radius)
		var err error
		if c.pressed > 0 {
			err = dc.Fill()
		} else {
			dc.SetLineWidth(2)
			err = dc.Stroke()
		}
		if err != nil {
			return nil, err
		}
	}
	if err := dc.FlushGPU(); err != nil {
		return nil, err
	}

	return &server.BitmapUpdate{
		Width:  c.size.Width,
		Height: c.size.Height,
		Pixels: xrgb(dc.Image()),
	}, nil
}

// xrgb converts img to little-endian XRGB rows.
func xrgb(img image.Image) []byte {
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}
	b := rgba.Bounds()
	out := make([]byte, b.Dx()*b.Dy()*4)
	o := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := rgba.Pix[rgba.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			p := row[x*4:]
			out[o] = p[2]
			out[o+1] = p[1]
			out[o+2] = p[0]
			o += 4
		}
	}
	return out
}
