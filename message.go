package motorcan

import (
	"fmt"

	"github.com/openbotics/gomotorcan/pkg/can"
)

// A Message is a single frame of one of the supported device families.
// Matches must be a pure classification usable on the zero value, so a
// listener can filter frames before decoding them.
type Message interface {
	Matches(frame can.Frame) bool
	NodeID() uint32
	ArbitrationID() ArbitrationID
	MarshalPayload() []byte
}

// FrameDecoder is implemented by the pointer type of every message that
// can be received. Decoding is total : malformed or short payloads leave
// the affected fields at their zero value, they never panic.
type FrameDecoder interface {
	UnmarshalFrame(frame can.Frame)
}

// Marshal builds the wire frame for a message, validating the
// arbitration id and the payload length
func Marshal(msg Message) (can.Frame, error) {
	id := msg.ArbitrationID()
	if err := id.Validate(); err != nil {
		return can.Frame{}, err
	}
	payload := msg.MarshalPayload()
	if len(payload) > 8 {
		return can.Frame{}, fmt.Errorf("payload too long : %v bytes", len(payload))
	}
	frame := can.Frame{ID: id.Value(), DLC: uint8(len(payload)), Extended: id.Extended()}
	copy(frame.Data[:], payload)
	return frame, nil
}
