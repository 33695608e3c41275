package can

import (
	"errors"
	"fmt"
	"time"
)

const CanSffMask uint32 = 0x000007FF
const CanEffMask uint32 = 0x1FFFFFFF

// ErrTimeout is returned by Recv when no frame arrived within the given bound
var ErrTimeout = errors.New("receive timed out")

// A CAN frame
type Frame struct {
	ID       uint32
	DLC      uint8
	Extended bool
	Data     [8]byte
}

func NewFrame(id uint32, dlc uint8) Frame {
	return Frame{ID: id, DLC: dlc}
}

// Payload returns the used portion of the data field
func (frame Frame) Payload() []byte {
	if frame.DLC > 8 {
		return frame.Data[:]
	}
	return frame.Data[:frame.DLC]
}

// A CAN Bus interface
type Bus interface {
	Connect(...any) error                      // Connect to the CAN bus
	Disconnect() error                         // Disconnect from CAN bus
	Send(frame Frame) error                    // Send a frame on the bus
	Recv(timeout time.Duration) (Frame, error) // Receive a single frame, ErrTimeout if none arrived in time
}

// Register a new CAN bus interface type
// This should be called inside an init() function of the driver package
func RegisterInterface(interfaceType string, newInterface NewInterfaceFunc) {
	interfaceRegistry[interfaceType] = newInterface
}

type NewInterfaceFunc func(channel string) (Bus, error)

var interfaceRegistry = make(map[string]NewInterfaceFunc)

// Create a new CAN bus with given interface
// Currently supported : socketcan, socketcanraw, virtualcan
func NewBus(canInterface string, channel string, bitrate int) (Bus, error) {
	createInterface, ok := interfaceRegistry[canInterface]
	if !ok {
		return nil, fmt.Errorf("unsupported interface : %v", canInterface)
	}
	return createInterface(channel)
}
