// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/runtime/client/queue.go
// Summary: FIFO channel carrying input events from the GUI loop to the engine.
// Notes: Send never blocks. With a limit, the newest event is rejected when
//        the queue is full; InputClose is always accepted.

package clientruntime

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrChannelClosed is returned once the other end has gone away.
	ErrChannelClosed = errors.New("clientruntime: input channel closed")
	// ErrQueueFull is returned when a bounded queue rejects an event.
	ErrQueueFull = errors.New("clientruntime: input queue full")
)

type inputQueue struct {
	mu             sync.Mutex
	items          []InputEvent
	limit          int
	senderClosed   bool
	receiverClosed bool
	notify         chan struct{}
}

// InputSender is the GUI side of the channel.
type InputSender struct {
	q *inputQueue
}

// InputReceiver is the engine side of the channel.
type InputReceiver struct {
	q *inputQueue
}

// NewInputChannel creates a connected sender/receiver pair. A limit of zero
// or less leaves the queue unbounded.
func NewInputChannel(limit int) (*InputSender, *InputReceiver) {
	q := &inputQueue{limit: limit, notify: make(chan struct{}, 1)}
	return &InputSender{q: q}, &InputReceiver{q: q}
}

func (q *inputQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Send enqueues ev without blocking.
func (s *InputSender) Send(ev InputEvent) error {
	q := s.q
	q.mu.Lock()
	if q.receiverClosed || q.senderClosed {
		q.mu.Unlock()
		return ErrChannelClosed
	}
	if _, isClose := ev.(InputClose); !isClose && q.limit > 0 && len(q.items) >= q.limit {
		q.mu.Unlock()
		return ErrQueueFull
	}
	q.items = append(q.items, ev)
	q.mu.Unlock()
	q.wake()
	return nil
}

// IsClosed reports whether the receiver has gone away.
func (s *InputSender) IsClosed() bool {
	s.q.mu.Lock()
	defer s.q.mu.Unlock()
	return s.q.receiverClosed
}

// Close tells the receiver no more events will follow. Queued events are
// still delivered.
func (s *InputSender) Close() {
	s.q.mu.Lock()
	s.q.senderClosed = true
	s.q.mu.Unlock()
	s.q.wake()
}

// Recv blocks for the next event. It returns ErrChannelClosed when the
// sender is closed and the queue drained, or ctx.Err() on cancellation.
func (r *InputReceiver) Recv(ctx context.Context) (InputEvent, error) {
	q := r.q
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			ev := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mu.Unlock()
			return ev, nil
		}
		if q.senderClosed || q.receiverClosed {
			q.mu.Unlock()
			return nil, ErrChannelClosed
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Len returns the number of queued events.
func (r *InputReceiver) Len() int {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	return len(r.q.items)
}

// Close drops the receiving end. Pending events are discarded and later
// sends fail.
func (r *InputReceiver) Close() {
	r.q.mu.Lock()
	r.q.receiverClosed = true
	r.q.items = nil
	r.q.mu.Unlock()
	r.q.wake()
}
