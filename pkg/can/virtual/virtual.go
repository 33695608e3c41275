package virtual

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"time"

	can "github.com/openbotics/gomotorcan/pkg/can"
)

// Virtual CAN bus implementation over TCP, primarily used for testing.
// This needs a broker server to send CAN frames to all connected
// clients. More information : https://github.com/windelbouwman/virtualcan

func init() {
	can.RegisterInterface("virtual", NewVirtualCanBus)
	can.RegisterInterface("virtualcan", NewVirtualCanBus)
}

const loopbackSize = 16

type Bus struct {
	channel    string
	conn       net.Conn
	receiveOwn bool
	loopback   chan can.Frame
}

func NewVirtualCanBus(channel string) (can.Bus, error) {
	return &Bus{channel: channel, loopback: make(chan can.Frame, loopbackSize)}, nil
}

// Helper function for serializing a CAN frame into the expected binary format
func serializeFrame(frame can.Frame) ([]byte, error) {
	buffer := new(bytes.Buffer)
	err := binary.Write(buffer, binary.BigEndian, frame)
	if err != nil {
		return nil, err
	}
	dataBytes := buffer.Bytes()
	frameBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(frameBytes, uint32(len(dataBytes)))
	frameBytes = append(frameBytes, dataBytes...)
	return frameBytes, nil
}

// Helper function for deserializing a CAN frame from expected binary format
func deserializeFrame(buffer []byte) (can.Frame, error) {
	var frame can.Frame
	err := binary.Read(bytes.NewBuffer(buffer), binary.BigEndian, &frame)
	return frame, err
}

// "Connect" to server e.g. localhost:18889
func (b *Bus) Connect(...any) error {
	conn, err := net.Dial("tcp", b.channel)
	if err != nil {
		return err
	}
	b.conn = conn
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		err := tcpConn.SetNoDelay(true)
		if err != nil {
			return err
		}
	}
	return nil
}

// "Disconnect" from server
func (b *Bus) Disconnect() error {
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}

// "Send" implementation of Bus interface
func (b *Bus) Send(frame can.Frame) error {
	// Local loopback
	if b.receiveOwn {
		select {
		case b.loopback <- frame:
		default:
		}
	} else if b.conn == nil {
		return errors.New("error : no active connection, abort send")
	}
	if b.conn != nil {
		frameBytes, err := serializeFrame(frame)
		if err != nil {
			return err
		}
		_ = b.conn.SetWriteDeadline(time.Now().Add(10 * time.Millisecond))
		_, err = b.conn.Write(frameBytes)
		return err
	}
	return nil
}

// "Recv" implementation of Bus interface. Looped back frames are
// served first, then the connection is read until the timeout expires.
func (b *Bus) Recv(timeout time.Duration) (can.Frame, error) {
	select {
	case frame := <-b.loopback:
		return frame, nil
	default:
	}
	if b.conn == nil {
		if b.receiveOwn {
			return can.Frame{}, can.ErrTimeout
		}
		return can.Frame{}, errors.New("error : no active connection, abort receive")
	}
	_ = b.conn.SetReadDeadline(time.Now().Add(timeout))
	headerBytes := make([]byte, 4)
	_, err := io.ReadFull(b.conn, headerBytes)
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return can.Frame{}, can.ErrTimeout
	}
	if err != nil {
		return can.Frame{}, err
	}
	length := binary.BigEndian.Uint32(headerBytes)
	frameBytes := make([]byte, length)
	_, err = io.ReadFull(b.conn, frameBytes)
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return can.Frame{}, can.ErrTimeout
	}
	if err != nil {
		return can.Frame{}, err
	}
	return deserializeFrame(frameBytes)
}

// Enable local loopback of sent frames, useful for tests without a
// second client
func (b *Bus) SetReceiveOwn(receiveOwn bool) {
	b.receiveOwn = receiveOwn
}
