package socketcan

import (
	"time"

	sockcan "github.com/brutella/can"

	can "github.com/openbotics/gomotorcan/pkg/can"
)

// Basic wrapper for socketcan, it uses the implementation
// that can be found here : https://github.com/brutella/can

func init() {
	can.RegisterInterface("socketcan", NewSocketCanBus)
}

const (
	rxQueueSize = 512
	effFlag     = 0x80000000
)

type SocketcanBus struct {
	bus *sockcan.Bus
	rx  chan can.Frame
}

func NewSocketCanBus(channel string) (can.Bus, error) {
	bus, err := sockcan.NewBusForInterfaceWithName(channel)
	if err != nil {
		return nil, err
	}
	return &SocketcanBus{bus: bus, rx: make(chan can.Frame, rxQueueSize)}, nil
}

// "Connect" implementation of Bus interface
func (socketcan *SocketcanBus) Connect(...any) error {
	// brutella/can defines a "Handle" interface for received CAN frames
	socketcan.bus.Subscribe(socketcan)
	go func() {
		// ConnectAndPublish blocks until Disconnect is called
		_ = socketcan.bus.ConnectAndPublish()
	}()
	return nil
}

// "Disconnect" implementation of Bus interface
func (socketcan *SocketcanBus) Disconnect() error {
	return socketcan.bus.Disconnect()
}

// "Send" implementation of Bus interface
func (socketcan *SocketcanBus) Send(frame can.Frame) error {
	id := frame.ID
	if frame.Extended {
		id |= effFlag
	}
	return socketcan.bus.Publish(
		sockcan.Frame{
			ID:     id,
			Length: frame.DLC,
			Flags:  0,
			Res0:   0,
			Res1:   0,
			Data:   frame.Data,
		})
}

// "Recv" implementation of Bus interface
func (socketcan *SocketcanBus) Recv(timeout time.Duration) (can.Frame, error) {
	if timeout == 0 {
		select {
		case frame := <-socketcan.rx:
			return frame, nil
		default:
			return can.Frame{}, can.ErrTimeout
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case frame := <-socketcan.rx:
		return frame, nil
	case <-timer.C:
		return can.Frame{}, can.ErrTimeout
	}
}

// brutella/can specific "Handle" implementation, buffers received
// frames for Recv. The buffer is bounded, the oldest frame is dropped
// when it overflows.
func (socketcan *SocketcanBus) Handle(frame sockcan.Frame) {
	received := can.Frame{
		DLC:      frame.Length,
		Extended: frame.ID&effFlag != 0,
		Data:     frame.Data,
	}
	if received.Extended {
		received.ID = frame.ID & can.CanEffMask
	} else {
		received.ID = frame.ID & can.CanSffMask
	}
	select {
	case socketcan.rx <- received:
		return
	default:
	}
	select {
	case <-socketcan.rx:
	default:
	}
	select {
	case socketcan.rx <- received:
	default:
	}
}
