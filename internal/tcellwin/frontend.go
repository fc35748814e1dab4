// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/tcellwin/frontend.go
// Summary: Terminal frontend for the client runtime built on tcell.
// Usage: cmd/texeldesk-client passes New to clientruntime.Options.NewFrontend.
// Notes: One cell is one logical pixel wide and two tall. Output events are
//        injected into PollEvent as EventInterrupt payloads.

package tcellwin

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	clientruntime "github.com/framegrace/texeldesk/internal/runtime/client"
)

const postRetryDelay = 2 * time.Millisecond

// Options configures the terminal frontend.
type Options struct {
	// CloseKey requests the session to close. Defaults to Ctrl+Q.
	CloseKey tcell.Key
}

// Frontend implements clientruntime.Frontend on a tcell screen.
type Frontend struct {
	screen  tcell.Screen
	opts    Options
	window  *window
	surface *surface
	proxy   *proxy

	mods    clientruntime.ModifiersState
	buttons tcell.ButtonMask
	lastX   int
	lastY   int
	pasting bool
	paste   strings.Builder
}

// New opens the controlling terminal.
func New(opts Options) (*Frontend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen failed: %w", err)
	}
	return NewWithScreen(screen, opts)
}

// NewWithScreen initialises screen and takes ownership of it.
func NewWithScreen(screen tcell.Screen, opts Options) (*Frontend, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen failed: %w", err)
	}
	if opts.CloseKey == 0 {
		opts.CloseKey = tcell.KeyCtrlQ
	}
	screen.EnableMouse()
	screen.EnablePaste()
	screen.EnableFocus()
	screen.HideCursor()
	screen.Clear()

	return &Frontend{
		screen:  screen,
		opts:    opts,
		window:  &window{screen: screen},
		surface: newSurface(screen),
		proxy:   &proxy{screen: screen, done: make(chan struct{})},
		lastX:   -1,
		lastY:   -1,
	}, nil
}

func (f *Frontend) Window() clientruntime.Window   { return f.window }
func (f *Frontend) Surface() clientruntime.Surface { return f.surface }
func (f *Frontend) Proxy() clientruntime.Proxy     { return f.proxy }

// Run polls the screen until handler asks to exit or the screen is
// finalised.
func (f *Frontend) Run(handler func(clientruntime.Event) clientruntime.ControlFlow) error {
	defer f.proxy.close()
	for {
		ev := f.screen.PollEvent()
		if ev == nil {
			return nil
		}
		for _, native := range f.translate(ev) {
			if handler(native) == clientruntime.ControlExit {
				return nil
			}
		}
	}
}

// Close releases the surface, then the screen.
func (f *Frontend) Close() error {
	f.proxy.close()
	f.surface.Release()
	f.screen.DisableMouse()
	f.screen.Fini()
	return nil
}

func (f *Frontend) translate(ev tcell.Event) []clientruntime.Event {
	switch ev := ev.(type) {
	case *tcell.EventInterrupt:
		out, ok := ev.Data().(clientruntime.OutputEvent)
		if !ok {
			return nil
		}
		return []clientruntime.Event{clientruntime.UserEvent{Output: out}}
	case *tcell.EventResize:
		f.screen.Sync()
		f.surface.redraw()
		w, h := f.window.InnerSize()
		return []clientruntime.Event{clientruntime.Resized{Width: w, Height: h}}
	case *tcell.EventFocus:
		return []clientruntime.Event{clientruntime.Focused{Focused: ev.Focused}}
	case *tcell.EventPaste:
		if ev.Start() {
			f.pasting = true
			f.paste.Reset()
			return nil
		}
		f.pasting = false
		text := f.paste.String()
		f.paste.Reset()
		if text == "" {
			return nil
		}
		return []clientruntime.Event{clientruntime.Paste{Text: text}}
	case *tcell.EventKey:
		if f.pasting {
			f.consumePasteKey(ev)
			return nil
		}
		return f.translateKey(ev)
	case *tcell.EventMouse:
		return f.translateMouse(ev)
	}
	return nil
}

func (f *Frontend) consumePasteKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyRune:
		f.paste.WriteRune(ev.Rune())
	case tcell.KeyEnter:
		f.paste.WriteByte('\n')
	case tcell.KeyTab:
		f.paste.WriteByte('\t')
	}
}

// translateKey turns one terminal key event into a full press and release,
// bracketed by the modifiers it implies.
func (f *Frontend) translateKey(ev *tcell.EventKey) []clientruntime.Event {
	if ev.Key() == f.opts.CloseKey {
		return []clientruntime.Event{clientruntime.CloseRequested{}}
	}
	key, mods, ok := physicalKey(ev)
	if !ok {
		return nil
	}
	var out []clientruntime.Event
	if mods != f.mods {
		out = append(out, clientruntime.ModifiersChanged{State: mods})
	}
	out = append(out,
		clientruntime.KeyboardInput{Key: key, State: clientruntime.Pressed},
		clientruntime.KeyboardInput{Key: key, State: clientruntime.Released},
	)
	if mods != 0 {
		out = append(out, clientruntime.ModifiersChanged{State: 0})
	}
	f.mods = 0
	return out
}

var mouseButtons = [...]struct {
	mask   tcell.ButtonMask
	button clientruntime.NativeButton
}{
	{tcell.Button1, clientruntime.NativeButton{Kind: clientruntime.ButtonLeft}},
	{tcell.Button2, clientruntime.NativeButton{Kind: clientruntime.ButtonRight}},
	{tcell.Button3, clientruntime.NativeButton{Kind: clientruntime.ButtonMiddle}},
	{tcell.Button4, clientruntime.NativeButton{Kind: clientruntime.ButtonBack}},
	{tcell.Button5, clientruntime.NativeButton{Kind: clientruntime.ButtonForward}},
}

func (f *Frontend) translateMouse(ev *tcell.EventMouse) []clientruntime.Event {
	var out []clientruntime.Event

	if mods := modifiersOf(ev.Modifiers()); mods != f.mods {
		f.mods = mods
		out = append(out, clientruntime.ModifiersChanged{State: mods})
	}

	x, y := ev.Position()
	if x != f.lastX || y != f.lastY {
		f.lastX, f.lastY = x, y
		out = append(out, clientruntime.CursorMoved{X: float64(x) + 0.5, Y: float64(y)*2 + 1})
	}

	buttons := ev.Buttons()
	for _, b := range mouseButtons {
		was, is := f.buttons&b.mask != 0, buttons&b.mask != 0
		switch {
		case is && !was:
			out = append(out, clientruntime.MouseInput{State: clientruntime.Pressed, Button: b.button})
		case was && !is:
			out = append(out, clientruntime.MouseInput{State: clientruntime.Released, Button: b.button})
		}
	}
	f.buttons = buttons & (tcell.Button1 | tcell.Button2 | tcell.Button3 | tcell.Button4 | tcell.Button5)

	var delta clientruntime.ScrollDelta
	if buttons&tcell.WheelUp != 0 {
		delta.Y++
	}
	if buttons&tcell.WheelDown != 0 {
		delta.Y--
	}
	if buttons&tcell.WheelRight != 0 {
		delta.X++
	}
	if buttons&tcell.WheelLeft != 0 {
		delta.X--
	}
	if delta.X != 0 || delta.Y != 0 {
		out = append(out, clientruntime.MouseWheel{Delta: delta})
	}
	return out
}

type window struct {
	screen        tcell.Screen
	cursorVisible bool
	cursorX       int
	cursorY       int
}

func (w *window) InnerSize() (uint32, uint32) {
	cols, rows := w.screen.Size()
	if cols < 0 || rows < 0 {
		return 0, 0
	}
	return uint32(cols), uint32(rows) * 2
}

func (w *window) ScaleFactor() float64 { return 1 }

func (w *window) SetCursorVisible(visible bool) {
	w.cursorVisible = visible
	w.applyCursor()
}

func (w *window) SetCursorPosition(x, y float64) error {
	cols, rows := w.screen.Size()
	cx, cy := int(x), int(y/2)
	if x < 0 || y < 0 || cx >= cols || cy >= rows {
		return fmt.Errorf("tcellwin: cursor position %.0f,%.0f outside %dx%d window", x, y, cols, rows*2)
	}
	w.cursorX, w.cursorY = cx, cy
	w.applyCursor()
	return nil
}

func (w *window) applyCursor() {
	if w.cursorVisible {
		w.screen.ShowCursor(w.cursorX, w.cursorY)
	} else {
		w.screen.HideCursor()
	}
	w.screen.Show()
}

func (w *window) SetClipboard(data []byte) {
	w.screen.SetClipboard(data)
}

type proxy struct {
	screen tcell.Screen
	once   sync.Once
	done   chan struct{}
}

// Send posts ev to the loop. Images are dropped when the queue is full since
// a newer frame follows; other events are retried until the loop closes.
func (p *proxy) Send(ev clientruntime.OutputEvent) error {
	for {
		select {
		case <-p.done:
			return clientruntime.ErrEventLoopClosed
		default:
		}
		err := p.screen.PostEvent(tcell.NewEventInterrupt(ev))
		if err == nil {
			return nil
		}
		if _, isImage := ev.(clientruntime.OutputImage); isImage {
			return err
		}
		if !errors.Is(err, tcell.ErrEventQFull) {
			return err
		}
		select {
		case <-p.done:
			return clientruntime.ErrEventLoopClosed
		case <-time.After(postRetryDelay):
		}
	}
}

func (p *proxy) close() {
	p.once.Do(func() { close(p.done) })
}
