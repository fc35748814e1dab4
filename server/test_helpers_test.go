package server

import (
	"context"
	"net"
	"sync"
)

type recordingHandler struct {
	mu    sync.Mutex
	keys  []KeyboardEvent
	mouse []MouseEvent
}

func (h *recordingHandler) Keyboard(ev KeyboardEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keys = append(h.keys, ev)
}

func (h *recordingHandler) Mouse(ev MouseEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mouse = append(h.mouse, ev)
}

func (h *recordingHandler) snapshot() ([]KeyboardEvent, []MouseEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]KeyboardEvent(nil), h.keys...), append([]MouseEvent(nil), h.mouse...)
}

// scriptedDisplay serves updates pushed on its channel. Closing the channel
// ends the update stream.
type scriptedDisplay struct {
	size    DesktopSize
	updates chan DisplayUpdate
	layouts chan DesktopSize
}

func newScriptedDisplay(size DesktopSize) *scriptedDisplay {
	return &scriptedDisplay{
		size:    size,
		updates: make(chan DisplayUpdate, 8),
		layouts: make(chan DesktopSize, 8),
	}
}

func (d *scriptedDisplay) Size(context.Context) DesktopSize { return d.size }

func (d *scriptedDisplay) GetUpdate(ctx context.Context) (DisplayUpdate, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case u, ok := <-d.updates:
		if !ok {
			return nil, nil
		}
		return u, nil
	}
}

func (d *scriptedDisplay) RequestLayout(width, height uint16) {
	d.layouts <- DesktopSize{Width: width, Height: height}
}

// pipeListener hands out net.Pipe connections.
type pipeListener struct {
	conns chan net.Conn
	done  chan struct{}
	once  sync.Once
}

func newPipeListener() *pipeListener {
	return &pipeListener{conns: make(chan net.Conn), done: make(chan struct{})}
}

func (l *pipeListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.done:
		return nil, net.ErrClosed
	}
}

func (l *pipeListener) Close() error {
	l.once.Do(func() { close(l.done) })
	return nil
}

func (l *pipeListener) Addr() net.Addr { return pipeAddr{} }

func (l *pipeListener) dial() net.Conn {
	client, srv := net.Pipe()
	l.conns <- srv
	return client
}

type pipeAddr struct{}

func (pipeAddr) Network() string { return "pipe" }
func (pipeAddr) String() string  { return "pipe" }
