package virtual

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	can "github.com/openbotics/gomotorcan/pkg/can"
)

// Single client broker : echoes every byte back to the sender
func startEchoBroker(t *testing.T) string {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	assert.Nil(t, err)
	t.Cleanup(func() { listener.Close() })
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = io.Copy(conn, conn)
	}()
	return listener.Addr().String()
}

func TestSendAndRecvThroughBroker(t *testing.T) {
	bus, err := NewVirtualCanBus(startEchoBroker(t))
	assert.Nil(t, err)
	assert.Nil(t, bus.Connect())
	defer bus.Disconnect()

	sent := can.NewFrame(0x145, 8)
	sent.Data = [8]byte{0xA2, 0, 0, 0, 0xD2, 0x04, 0, 0}
	assert.Nil(t, bus.Send(sent))

	received, err := bus.Recv(500 * time.Millisecond)
	assert.Nil(t, err)
	assert.Equal(t, sent, received)
}

func TestRecvTimeout(t *testing.T) {
	bus, err := NewVirtualCanBus(startEchoBroker(t))
	assert.Nil(t, err)
	assert.Nil(t, bus.Connect())
	defer bus.Disconnect()

	_, err = bus.Recv(20 * time.Millisecond)
	assert.ErrorIs(t, err, can.ErrTimeout)
}

func TestLoopbackWithoutConnection(t *testing.T) {
	bus, err := NewVirtualCanBus("")
	assert.Nil(t, err)
	bus.(*Bus).SetReceiveOwn(true)

	frame := can.NewFrame(0x20, 4)
	assert.Nil(t, bus.Send(frame))

	received, err := bus.Recv(0)
	assert.Nil(t, err)
	assert.Equal(t, frame, received)

	_, err = bus.Recv(0)
	assert.ErrorIs(t, err, can.ErrTimeout)
}
