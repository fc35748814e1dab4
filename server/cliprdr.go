// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: server/cliprdr.go
// Summary: Clipboard backend strategy and an in-memory implementation.

package server

import "sync"

// ClipboardContent is one clipboard selection.
type ClipboardContent struct {
	MimeType string
	Data     []byte
}

// ClipboardBackend connects a session to the host clipboard.
type ClipboardBackend interface {
	// OnRemoteCopy is called when the client copied something.
	OnRemoteCopy(ClipboardContent)
	// Updates delivers host-side copies to forward to the client. The
	// channel is closed by Close.
	Updates() <-chan ClipboardContent
	Close()
}

// CliprdrBackendFactory builds one backend per client session.
type CliprdrBackendFactory interface {
	BuildCliprdrBackend() ClipboardBackend
}

// CliprdrBackendFactoryFunc adapts a function to CliprdrBackendFactory.
type CliprdrBackendFactoryFunc func() ClipboardBackend

func (f CliprdrBackendFactoryFunc) BuildCliprdrBackend() ClipboardBackend { return f() }

// MemoryClipboard is a process-local clipboard shared by the sessions it
// builds backends for.
type MemoryClipboard struct {
	mu       sync.Mutex
	content  ClipboardContent
	has      bool
	backends map[*memoryBackend]struct{}
}

// NewMemoryClipboard returns an empty clipboard.
func NewMemoryClipboard() *MemoryClipboard {
	return &MemoryClipboard{backends: make(map[*memoryBackend]struct{})}
}

// Content returns the current selection.
func (m *MemoryClipboard) Content() (ClipboardContent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content, m.has
}

// Copy replaces the selection and offers it to every open session.
func (m *MemoryClipboard) Copy(content ClipboardContent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content, m.has = content, true
	for b := range m.backends {
		b.offer(content)
	}
}

// BuildCliprdrBackend implements CliprdrBackendFactory. A new backend
// starts with the current selection pending.
func (m *MemoryClipboard) BuildCliprdrBackend() ClipboardBackend {
	b := &memoryBackend{owner: m, updates: make(chan ClipboardContent, 1)}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backends[b] = struct{}{}
	if m.has {
		b.offer(m.content)
	}
	return b
}

type memoryBackend struct {
	owner   *MemoryClipboard
	updates chan ClipboardContent
	closed  bool
}

func (b *memoryBackend) OnRemoteCopy(content ClipboardContent) {
	m := b.owner
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.closed {
		return
	}
	m.content, m.has = content, true
	for other := range m.backends {
		if other != b {
			other.offer(content)
		}
	}
}

func (b *memoryBackend) Updates() <-chan ClipboardContent { return b.updates }

func (b *memoryBackend) Close() {
	m := b.owner
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	delete(m.backends, b)
	close(b.updates)
}

// offer replaces any undelivered selection with content. The owner's lock
// must be held.
func (b *memoryBackend) offer(content ClipboardContent) {
	select {
	case <-b.updates:
	default:
	}
	b.updates <- content
}
