package motorcan

import (
	"sync"
	"time"

	"github.com/openbotics/gomotorcan/internal/broadcast"
	"github.com/openbotics/gomotorcan/pkg/can"
)

// A Listener receives every frame matching its message type T, decoded
// and queued in arrival order. The queue is bounded : when it is full
// the oldest message is dropped to make room for the newest.
type Listener[T Message] struct {
	queue   chan T
	handler func(T)

	stop     chan struct{}
	stopOnce sync.Once

	err     error
	errCh   chan struct{}
	errOnce sync.Once
}

func newListener[T Message](capacity int, handler func(T)) *Listener[T] {
	return &Listener[T]{
		queue:   make(chan T, capacity),
		handler: handler,
		stop:    make(chan struct{}),
		errCh:   make(chan struct{}),
	}
}

// Next returns the oldest queued message, blocking until one arrives.
// Messages already queued are drained first. After a bus fault Next
// returns that fault, after Stop it returns ErrListenerStopped.
func (l *Listener[T]) Next() (T, error) {
	var zero T
	select {
	case msg := <-l.queue:
		return msg, nil
	default:
	}
	select {
	case msg := <-l.queue:
		return msg, nil
	case <-l.errCh:
		return zero, l.err
	case <-l.stop:
		return zero, ErrListenerStopped
	}
}

// NextTimeout behaves like Next but gives up after the given duration
// with ErrTimeout
func (l *Listener[T]) NextTimeout(timeout time.Duration) (T, error) {
	var zero T
	select {
	case msg := <-l.queue:
		return msg, nil
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case msg := <-l.queue:
		return msg, nil
	case <-l.errCh:
		return zero, l.err
	case <-l.stop:
		return zero, ErrListenerStopped
	case <-timer.C:
		return zero, ErrTimeout
	}
}

// Stop ends message consumption for this listener. Idempotent, does not
// interrupt a handler callback already in flight.
func (l *Listener[T]) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// fail records a fatal error, first writer wins
func (l *Listener[T]) fail(err error) {
	l.errOnce.Do(func() {
		l.err = err
		close(l.errCh)
	})
}

// enqueue adds a message to the bounded queue, dropping the oldest
// entry when full
func (l *Listener[T]) enqueue(msg T) {
	select {
	case l.queue <- msg:
		return
	default:
	}
	select {
	case <-l.queue:
	default:
	}
	select {
	case l.queue <- msg:
	default:
	}
}

// consume classifies and decodes frames from a broadcast subscription
// until the listener is stopped or a fatal error is recorded
func (l *Listener[T]) consume(sub *broadcast.Subscription) error {
	defer sub.Cancel()
	var match T
	for {
		select {
		case <-l.stop:
			return nil
		case <-l.errCh:
			return l.err
		case frame, ok := <-sub.C():
			if !ok {
				// Broadcaster closed under us, resolve with whichever
				// of fault or stop arrives
				select {
				case <-l.errCh:
					return l.err
				case <-l.stop:
					return nil
				}
			}
			if !match.Matches(frame) {
				continue
			}
			msg := decode[T](frame)
			l.enqueue(msg)
			if l.handler != nil {
				l.handler(msg)
			}
		}
	}
}

// decode builds a typed message from a raw frame
func decode[T Message](frame can.Frame) T {
	var msg T
	if dec, ok := any(&msg).(FrameDecoder); ok {
		dec.UnmarshalFrame(frame)
	}
	return msg
}
