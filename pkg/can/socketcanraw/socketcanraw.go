package socketcanraw

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	can "github.com/openbotics/gomotorcan/pkg/can"
)

// SocketCAN driver on a raw AF_CAN socket, without third party
// wrappers. Receive timeouts map onto SO_RCVTIMEO so the kernel does
// the waiting.

func init() {
	can.RegisterInterface("socketcanraw", NewSocketCanBus)
}

const (
	frameSize = 16
	effFlag   = 0x80000000
)

type SocketcanBus struct {
	fd int
	// Timeout currently programmed into the socket, updated lazily
	rcvTimeout time.Duration
}

// Create a new raw SocketCAN bus. This expects the CAN channel to be
// up, e.g. running "ip a" should show can0 or something similar.
func NewSocketCanBus(channel string) (can.Bus, error) {
	iface, err := net.InterfaceByName(channel)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("failed to create CAN socket : %v", err)
	}
	addr := &unix.SockaddrCAN{Ifindex: iface.Index}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &SocketcanBus{fd: fd, rcvTimeout: -1}, nil
}

// "Connect" implementation of Bus interface
func (s *SocketcanBus) Connect(...any) error {
	return nil
}

// "Disconnect" implementation of Bus interface
func (s *SocketcanBus) Disconnect() error {
	return unix.Close(s.fd)
}

// "Send" implementation of Bus interface
func (s *SocketcanBus) Send(frame can.Frame) error {
	n, err := unix.Write(s.fd, marshalFrame(frame))
	if err != nil {
		return err
	}
	if n != frameSize {
		return fmt.Errorf("partial frame write : %v bytes", n)
	}
	return nil
}

// "Recv" implementation of Bus interface. A zero timeout polls without
// blocking.
func (s *SocketcanBus) Recv(timeout time.Duration) (can.Frame, error) {
	buffer := make([]byte, frameSize)
	if timeout == 0 {
		n, _, err := unix.Recvfrom(s.fd, buffer, unix.MSG_DONTWAIT)
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			return can.Frame{}, can.ErrTimeout
		}
		if err != nil {
			return can.Frame{}, err
		}
		if n != frameSize {
			return can.Frame{}, fmt.Errorf("partial frame read : %v bytes", n)
		}
		return unmarshalFrame(buffer), nil
	}
	if timeout != s.rcvTimeout {
		tv := unix.NsecToTimeval(timeout.Nanoseconds())
		err := unix.SetsockoptTimeval(s.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv)
		if err != nil {
			return can.Frame{}, fmt.Errorf("failed to set read timeout %v", err)
		}
		s.rcvTimeout = timeout
	}
	n, err := unix.Read(s.fd, buffer)
	if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
		return can.Frame{}, can.ErrTimeout
	}
	if err != nil {
		return can.Frame{}, err
	}
	if n != frameSize {
		return can.Frame{}, fmt.Errorf("partial frame read : %v bytes", n)
	}
	return unmarshalFrame(buffer), nil
}

// Enable own reception on the bus. Can be useful when testing
func (s *SocketcanBus) SetReceiveOwn(enabled bool) error {
	enabledInt := 0
	if enabled {
		enabledInt = 1
	}
	log.Debugf("[SOCKETCAN] setting option 'CAN_RAW_RECV_OWN_MSGS' on fd %v : %v", s.fd, enabled)
	return unix.SetsockoptInt(s.fd, unix.SOL_CAN_RAW, unix.CAN_RAW_RECV_OWN_MSGS, enabledInt)
}

// Add some filtering to CAN bus
func (s *SocketcanBus) SetFilters(filters []unix.CanFilter) error {
	log.Debugf("[SOCKETCAN] setting option 'CAN_RAW_FILTER' on fd %v : %v filters", s.fd, len(filters))
	return unix.SetsockoptCanRawFilter(s.fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FILTER, filters)
}

// marshalFrame packs a frame into the 16 byte kernel can_frame layout
func marshalFrame(frame can.Frame) []byte {
	buffer := make([]byte, frameSize)
	id := frame.ID
	if frame.Extended {
		id |= effFlag
	}
	binary.LittleEndian.PutUint32(buffer[0:4], id)
	buffer[4] = frame.DLC
	copy(buffer[8:], frame.Data[:])
	return buffer
}

func unmarshalFrame(buffer []byte) can.Frame {
	frame := can.Frame{}
	id := binary.LittleEndian.Uint32(buffer[0:4])
	frame.Extended = id&effFlag != 0
	if frame.Extended {
		frame.ID = id & can.CanEffMask
	} else {
		frame.ID = id & can.CanSffMask
	}
	frame.DLC = buffer[4]
	copy(frame.Data[:], buffer[8:16])
	return frame
}
