// Package broadcast fans received CAN frames out to any number of subscribers.
// Publishing never blocks : a subscriber that stops draining its channel
// loses its oldest frames first.
package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/openbotics/gomotorcan/pkg/can"
)

type Broadcaster struct {
	mu        sync.Mutex
	subs      map[uint64]*Subscription
	nextId    uint64
	capacity  int
	closed    bool
	published atomic.Uint64
}

// A Subscription is a single receiver with its own bounded frame channel
type Subscription struct {
	id     uint64
	frames chan can.Frame
	parent *Broadcaster
}

func NewBroadcaster(capacity int) *Broadcaster {
	return &Broadcaster{
		subs:     make(map[uint64]*Subscription),
		capacity: capacity,
	}
}

// Subscribe creates a new subscription. Returns nil if the broadcaster
// has already been closed.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	sub := &Subscription{
		id:     b.nextId,
		frames: make(chan can.Frame, b.capacity),
		parent: b,
	}
	b.subs[sub.id] = sub
	b.nextId++
	return sub
}

// Publish delivers a frame to every subscription without ever blocking.
// A full subscription drops its oldest frame to make room.
func (b *Broadcaster) Publish(frame can.Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs {
		select {
		case sub.frames <- frame:
			continue
		default:
		}
		select {
		case <-sub.frames:
		default:
		}
		select {
		case sub.frames <- frame:
		default:
		}
	}
	b.published.Add(1)
}

// Published returns the total number of frames published so far
func (b *Broadcaster) Published() uint64 {
	return b.published.Load()
}

// Close shuts the broadcaster down and closes every subscription channel.
// Safe to call more than once.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subs {
		close(sub.frames)
	}
	b.subs = map[uint64]*Subscription{}
}

// C is the receive channel of the subscription. It is closed when the
// broadcaster closes or the subscription is cancelled.
func (s *Subscription) C() <-chan can.Frame {
	return s.frames
}

// Cancel removes the subscription from its broadcaster
func (s *Subscription) Cancel() {
	b := s.parent
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if _, ok := b.subs[s.id]; ok {
		delete(b.subs, s.id)
		close(s.frames)
	}
}
