package motorcan

import (
	"fmt"

	"github.com/openbotics/gomotorcan/pkg/can"
)

// An ArbitrationID maps the addressing scheme of a device family onto a
// raw CAN identifier
type ArbitrationID interface {
	Value() uint32   // Raw arbitration id put on the wire
	Extended() bool  // 29 bit identifier
	Validate() error // Check node and command ranges before sending
}

// ODrive addressing : 6 bit node id and 5 bit command id packed into a
// standard 11 bit identifier
type ODriveID struct {
	Node uint32
	Cmd  uint32
}

const (
	ODriveNodeMax = 0x3F
	ODriveCmdMask = 0x1F
)

func (id ODriveID) Value() uint32 {
	return id.Node<<5 | id.Cmd
}

func (id ODriveID) Extended() bool {
	return false
}

func (id ODriveID) Validate() error {
	if id.Node > ODriveNodeMax {
		return fmt.Errorf("%w : node x%x", ErrNodeIdRange, id.Node)
	}
	if id.Cmd > ODriveCmdMask {
		return fmt.Errorf("%w : cmd x%x", ErrCommandRange, id.Cmd)
	}
	return nil
}

// ParseODriveID splits a raw identifier back into node and command
func ParseODriveID(raw uint32) ODriveID {
	return ODriveID{Node: (raw & can.CanSffMask) >> 5, Cmd: raw & ODriveCmdMask}
}

// MyActuator V3 addressing : commands are sent on 0x140+node, replies
// come back on 0x240+node. The command id travels in the first payload
// byte. A few broadcast commands use a custom identifier instead.
type MyActuatorID struct {
	Node   uint32
	Cmd    uint8
	Custom uint32 // Overrides the computed identifier when non zero
}

const (
	MyActuatorCommandBase = 0x140
	MyActuatorReplyBase   = 0x240
	MyActuatorNodeSpan    = 0x20
)

func (id MyActuatorID) Value() uint32 {
	if id.Custom != 0 {
		return id.Custom
	}
	return MyActuatorCommandBase + id.Node
}

func (id MyActuatorID) Extended() bool {
	return false
}

func (id MyActuatorID) Validate() error {
	if id.Custom != 0 {
		if id.Custom > can.CanSffMask {
			return fmt.Errorf("%w : custom id x%x", ErrNodeIdRange, id.Custom)
		}
		return nil
	}
	if id.Node >= MyActuatorNodeSpan {
		return fmt.Errorf("%w : node x%x", ErrNodeIdRange, id.Node)
	}
	return nil
}

// InMyActuatorWindow reports whether a raw identifier belongs to the V3
// command or reply windows
func InMyActuatorWindow(raw uint32) bool {
	return (raw >= MyActuatorCommandBase && raw < MyActuatorCommandBase+MyActuatorNodeSpan) ||
		(raw >= MyActuatorReplyBase && raw < MyActuatorReplyBase+MyActuatorNodeSpan)
}

// ParseMyActuatorID recovers node and command from a received frame.
// The command id lives in the first payload byte.
func ParseMyActuatorID(frame can.Frame) MyActuatorID {
	id := MyActuatorID{}
	if frame.ID >= MyActuatorReplyBase {
		id.Node = frame.ID - MyActuatorReplyBase
	} else if frame.ID >= MyActuatorCommandBase {
		id.Node = frame.ID - MyActuatorCommandBase
	}
	if frame.DLC > 0 {
		id.Cmd = frame.Data[0]
	}
	return id
}

// X4-24 addressing : the identifier is the motor id itself for control
// frames, or the shared X424ConfigID for configuration frames. The
// command id travels in the payload.
type X424ID struct {
	Node uint32
	Cmd  uint8
}

// X424ConfigID is the shared identifier used by all X4-24 configuration
// and query frames
const X424ConfigID = 0x7FF

func (id X424ID) Value() uint32 {
	return id.Node
}

func (id X424ID) Extended() bool {
	return false
}

func (id X424ID) Validate() error {
	if id.Node > can.CanSffMask {
		return fmt.Errorf("%w : node x%x", ErrNodeIdRange, id.Node)
	}
	return nil
}

// ParseX424ID recovers node and command from a received frame
func ParseX424ID(frame can.Frame) X424ID {
	id := X424ID{Node: frame.ID}
	if frame.DLC > 0 {
		id.Cmd = frame.Data[0]
	}
	return id
}
