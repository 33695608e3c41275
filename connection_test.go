package motorcan_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	motorcan "github.com/openbotics/gomotorcan"
	"github.com/openbotics/gomotorcan/pkg/can"
	"github.com/openbotics/gomotorcan/pkg/myactuator"
	"github.com/openbotics/gomotorcan/pkg/odrive"
)

// mockBus is an in memory Bus with frame injection and fault injection
type mockBus struct {
	mu   sync.Mutex
	sent []can.Frame
	rx   chan can.Frame
	err  error
}

func newMockBus() *mockBus {
	return &mockBus{rx: make(chan can.Frame, 64)}
}

func (m *mockBus) Connect(...any) error { return nil }

func (m *mockBus) Disconnect() error { return nil }

func (m *mockBus) Send(frame can.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, frame)
	return nil
}

func (m *mockBus) Recv(timeout time.Duration) (can.Frame, error) {
	m.mu.Lock()
	err := m.err
	m.mu.Unlock()
	if err != nil {
		return can.Frame{}, err
	}
	if timeout == 0 {
		select {
		case frame := <-m.rx:
			return frame, nil
		default:
			return can.Frame{}, can.ErrTimeout
		}
	}
	select {
	case frame := <-m.rx:
		return frame, nil
	case <-time.After(timeout):
		return can.Frame{}, can.ErrTimeout
	}
}

func (m *mockBus) inject(frame can.Frame) { m.rx <- frame }

func (m *mockBus) fault(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *mockBus) sentFrames() []can.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	frames := make([]can.Frame, len(m.sent))
	copy(frames, m.sent)
	return frames
}

func statusFrame(node uint32, speed int16) can.Frame {
	frame := can.NewFrame(motorcan.MyActuatorReplyBase+node, 8)
	frame.Data[0] = 0x9C
	frame.Data[4] = uint8(speed)
	frame.Data[5] = uint8(speed >> 8)
	return frame
}

func TestSendMarshalsAndTransmits(t *testing.T) {
	bus := newMockBus()
	conn := motorcan.NewConnection(bus)
	defer conn.Disconnect()

	assert.Nil(t, conn.Send(myactuator.SpeedControl{Node: 5, Speed: 12.34}))
	assert.Eventually(t, func() bool {
		return len(bus.sentFrames()) == 1
	}, time.Second, time.Millisecond)

	frame := bus.sentFrames()[0]
	assert.Equal(t, uint32(0x145), frame.ID)
	assert.Equal(t, [8]byte{0xA2, 0, 0, 0, 0xD2, 0x04, 0, 0}, frame.Data)
}

func TestSendInvalidArbitrationId(t *testing.T) {
	bus := newMockBus()
	conn := motorcan.NewConnection(bus)
	defer conn.Disconnect()

	err := conn.Send(odrive.EStop{Node: 0x40})
	assert.ErrorIs(t, err, motorcan.ErrNodeIdRange)
	assert.Empty(t, bus.sentFrames())
}

func TestListenerReceivesMatchingMessages(t *testing.T) {
	bus := newMockBus()
	conn := motorcan.NewConnection(bus)

	var handled atomic.Int32
	listener, err := motorcan.Register(conn, func(m myactuator.MotorStatus2) {
		handled.Add(1)
	})
	assert.Nil(t, err)

	dispatchDone := make(chan error, 1)
	go func() { dispatchDone <- conn.Dispatch() }()
	// Frames published before dispatch subscribes are dropped
	time.Sleep(50 * time.Millisecond)

	bus.inject(statusFrame(3, 360))
	// Other families must not reach this listener
	bus.inject(can.NewFrame(3<<5|0x01, 7))

	msg, err := listener.NextTimeout(time.Second)
	assert.Nil(t, err)
	assert.Equal(t, uint32(3), msg.Node)
	assert.Equal(t, int16(360), msg.Speed)

	_, err = listener.NextTimeout(50 * time.Millisecond)
	assert.ErrorIs(t, err, motorcan.ErrTimeout)
	assert.Equal(t, int32(1), handled.Load())

	assert.Nil(t, conn.Disconnect())
	assert.Nil(t, <-dispatchDone)
}

func TestListenerQueueDropsOldest(t *testing.T) {
	bus := newMockBus()
	conn := motorcan.NewConnection(bus, motorcan.WithListenerQueueSize(2))
	defer conn.Disconnect()

	var handled atomic.Int32
	listener, err := motorcan.Register(conn, func(m myactuator.MotorStatus2) {
		handled.Add(1)
	})
	assert.Nil(t, err)
	go conn.Dispatch()
	time.Sleep(50 * time.Millisecond)

	bus.inject(statusFrame(1, 10))
	bus.inject(statusFrame(1, 20))
	bus.inject(statusFrame(1, 30))
	assert.Eventually(t, func() bool {
		return handled.Load() == 3
	}, time.Second, time.Millisecond)

	// Oldest message was dropped to make room
	first, err := listener.Next()
	assert.Nil(t, err)
	assert.Equal(t, int16(20), first.Speed)
	second, err := listener.Next()
	assert.Nil(t, err)
	assert.Equal(t, int16(30), second.Speed)
	_, err = listener.NextTimeout(20 * time.Millisecond)
	assert.ErrorIs(t, err, motorcan.ErrTimeout)
}

func TestSendAfterDisconnect(t *testing.T) {
	bus := newMockBus()
	conn := motorcan.NewConnection(bus)
	assert.Nil(t, conn.Disconnect())

	err := conn.Send(myactuator.Stop{Node: 1})
	assert.ErrorIs(t, err, motorcan.ErrConnectionClosed)

	_, err = motorcan.Register(conn, func(m myactuator.MotorStatus1) {})
	assert.ErrorIs(t, err, motorcan.ErrConnectionClosed)
}

func TestBusFaultReachesAllListeners(t *testing.T) {
	bus := newMockBus()
	conn := motorcan.NewConnection(bus)

	first, err := motorcan.Register(conn, func(m myactuator.MotorStatus1) {})
	assert.Nil(t, err)
	second, err := motorcan.Register(conn, func(m odrive.Heartbeat) {})
	assert.Nil(t, err)

	dispatchDone := make(chan error, 1)
	go func() { dispatchDone <- conn.Dispatch() }()
	time.Sleep(50 * time.Millisecond)

	cause := errors.New("interface down")
	bus.fault(cause)

	_, err = first.NextTimeout(time.Second)
	assert.ErrorIs(t, err, cause)
	_, err = second.NextTimeout(time.Second)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, <-dispatchDone, cause)

	// The connection refuses further traffic
	err = conn.Send(myactuator.Stop{Node: 1})
	assert.ErrorIs(t, err, motorcan.ErrConnectionClosed)
	assert.Nil(t, conn.Disconnect())
}

func TestStoppedListenerReturnsStopped(t *testing.T) {
	bus := newMockBus()
	conn := motorcan.NewConnection(bus)
	defer conn.Disconnect()

	listener, err := motorcan.Register(conn, func(m myactuator.MotorStatus1) {})
	assert.Nil(t, err)
	go conn.Dispatch()

	listener.Stop()
	_, err = listener.Next()
	assert.ErrorIs(t, err, motorcan.ErrListenerStopped)
}

func TestSlowListenerDoesNotStarveOthers(t *testing.T) {
	bus := newMockBus()
	conn := motorcan.NewConnection(bus, motorcan.WithListenerQueueSize(1))
	defer conn.Disconnect()

	// Never consumed, its queue stays saturated
	_, err := motorcan.Register(conn, func(m myactuator.MotorStatus2) {})
	assert.Nil(t, err)
	fast, err := motorcan.Register(conn, func(m odrive.Heartbeat) {})
	assert.Nil(t, err)
	go conn.Dispatch()
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 10; i++ {
		bus.inject(statusFrame(1, int16(i)))
	}
	bus.inject(can.NewFrame(3<<5|0x01, 7))

	msg, err := fast.NextTimeout(time.Second)
	assert.Nil(t, err)
	assert.Equal(t, uint32(3), msg.Node)
}
