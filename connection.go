package motorcan

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/openbotics/gomotorcan/internal/broadcast"
	"github.com/openbotics/gomotorcan/pkg/can"
)

// Default tuning of a Connection, overridable with Options
const (
	DefaultSendQueueSize     = 32
	DefaultBroadcastCapacity = 256
	DefaultListenerQueueSize = 32
	DefaultPollTimeout       = 10 * time.Millisecond
	DefaultBitrate           = 1_000_000
)

// command travels through the pending send queue to the I/O routine
type command struct {
	frame    can.Frame
	shutdown bool
}

// halter is the type independent part of a listener, used to stop it
// and to fan out bus faults
type halter interface {
	Stop()
	fail(err error)
}

type registration struct {
	halt halter
	run  func(sub *broadcast.Subscription) error
}

// A Connection owns a CAN bus. All bus I/O happens on one dedicated
// goroutine, messages reach the rest of the program through typed
// listeners created with [Register].
type Connection struct {
	bus can.Bus
	// bcast distributes every received frame to listener subscriptions
	bcast    *broadcast.Broadcaster
	commands chan command
	done     chan struct{}

	mu        sync.Mutex
	listeners []registration
	closed    bool
	closeOnce sync.Once

	sendQueueSize     int
	broadcastCapacity int
	listenerQueueSize int
	pollTimeout       time.Duration
	bitrate           int
}

// An Option tunes a Connection at creation time
type Option func(*Connection)

// WithSendQueueSize bounds the pending send queue
func WithSendQueueSize(size int) Option {
	return func(c *Connection) { c.sendQueueSize = size }
}

// WithBroadcastCapacity bounds the per listener frame subscription
func WithBroadcastCapacity(capacity int) Option {
	return func(c *Connection) { c.broadcastCapacity = capacity }
}

// WithListenerQueueSize bounds the decoded message queue of listeners
func WithListenerQueueSize(size int) Option {
	return func(c *Connection) { c.listenerQueueSize = size }
}

// WithPollTimeout sets the bus receive timeout of the I/O routine
func WithPollTimeout(timeout time.Duration) Option {
	return func(c *Connection) { c.pollTimeout = timeout }
}

// WithBitrate sets the bitrate requested from the bus driver
func WithBitrate(bitrate int) Option {
	return func(c *Connection) { c.bitrate = bitrate }
}

func newConfig(opts []Option) *Connection {
	c := &Connection{
		sendQueueSize:     DefaultSendQueueSize,
		broadcastCapacity: DefaultBroadcastCapacity,
		listenerQueueSize: DefaultListenerQueueSize,
		pollTimeout:       DefaultPollTimeout,
		bitrate:           DefaultBitrate,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewConnection wraps an already connected bus and starts the I/O
// routine immediately
func NewConnection(bus can.Bus, opts ...Option) *Connection {
	c := newConfig(opts)
	c.bus = bus
	c.bcast = broadcast.NewBroadcaster(c.broadcastCapacity)
	c.commands = make(chan command, c.sendQueueSize)
	c.done = make(chan struct{})
	go c.ioLoop()
	return c
}

// Open creates a bus with the registered driver for canInterface,
// connects to it, discards stale frames and starts the I/O routine.
// An open failure is returned as is, it is never retried here.
func Open(canInterface string, channel string, opts ...Option) (*Connection, error) {
	cfg := newConfig(opts)
	bus, err := can.NewBus(canInterface, channel, cfg.bitrate)
	if err != nil {
		return nil, fmt.Errorf("failed to create %v bus : %w", canInterface, err)
	}
	if err := bus.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to %v : %w", channel, err)
	}
	flush(bus)
	log.Infof("[CONNECTION] connected to %v (%v)", channel, canInterface)
	return NewConnection(bus, opts...), nil
}

// flush discards frames that arrived before the connection was opened
func flush(bus can.Bus) {
	for {
		if _, err := bus.Recv(0); err != nil {
			return
		}
	}
}

// ioLoop owns all bus I/O. Each iteration polls the bus for one frame
// and then drains the pending sends. Exits on the shutdown sentinel or
// on a bus fault.
func (c *Connection) ioLoop() {
	defer close(c.done)
	for {
		frame, err := c.bus.Recv(c.pollTimeout)
		switch {
		case err == nil:
			c.bcast.Publish(frame)
		case errors.Is(err, can.ErrTimeout):
			// Nothing received, not an error
		default:
			log.Errorf("[CONNECTION] bus fault : %v", err)
			c.failAll(fmt.Errorf("bus fault : %w", err))
			c.bcast.Close()
			return
		}
	drain:
		for {
			select {
			case cmd := <-c.commands:
				if cmd.shutdown {
					log.Debug("[CONNECTION] io routine exiting")
					return
				}
				if err := c.bus.Send(cmd.frame); err != nil {
					log.Warnf("[CONNECTION] failed to send frame x%x : %v", cmd.frame.ID, err)
				}
			default:
				break drain
			}
		}
	}
}

// failAll resolves every listener error slot with the same fault and
// refuses further sends and registrations
func (c *Connection) failAll(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for _, reg := range c.listeners {
		reg.halt.fail(err)
	}
}

// Send validates, marshals and queues a message for transmission by the
// I/O routine. Arbitration id errors surface here, transmit errors are
// asynchronous and only logged.
func (c *Connection) Send(msg Message) error {
	frame, err := Marshal(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrConnectionClosed
	}
	select {
	case c.commands <- command{frame: frame}:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	}
}

// Register creates a listener for message type T on the connection. The
// optional handler runs on the dispatch goroutine for every decoded
// message, after it has been queued.
func Register[T Message](c *Connection, handler func(T)) (*Listener[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrConnectionClosed
	}
	l := newListener[T](c.listenerQueueSize, handler)
	c.listeners = append(c.listeners, registration{halt: l, run: l.consume})
	return l, nil
}

// Dispatch fans received frames out to the listeners registered so far,
// one goroutine and one broadcast subscription per listener. It blocks
// until every listener finishes and returns the first listener error,
// if any.
func (c *Connection) Dispatch() error {
	c.mu.Lock()
	regs := make([]registration, len(c.listeners))
	copy(regs, c.listeners)
	c.mu.Unlock()

	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once
	for _, reg := range regs {
		sub := c.bcast.Subscribe()
		if sub == nil {
			errOnce.Do(func() { firstErr = ErrConnectionClosed })
			continue
		}
		wg.Add(1)
		go func(reg registration, sub *broadcast.Subscription) {
			defer wg.Done()
			if err := reg.run(sub); err != nil {
				errOnce.Do(func() { firstErr = err })
			}
		}(reg, sub)
	}
	wg.Wait()
	return firstErr
}

// Disconnect stops every listener, shuts the I/O routine down through
// the pending send queue and closes the bus. It blocks until the
// routine has exited and is safe to call more than once.
func (c *Connection) Disconnect() error {
	c.mu.Lock()
	c.closed = true
	regs := make([]registration, len(c.listeners))
	copy(regs, c.listeners)
	c.mu.Unlock()

	for _, reg := range regs {
		reg.halt.Stop()
	}
	select {
	case c.commands <- command{shutdown: true}:
	case <-c.done:
		// I/O routine already gone after a bus fault
	}
	<-c.done
	c.bcast.Close()
	var err error
	c.closeOnce.Do(func() { err = c.bus.Disconnect() })
	return err
}
