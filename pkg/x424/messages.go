// Package x424 implements the CAN protocol of the MyActuator X4-24
// servo. Control frames are addressed with the motor id itself,
// configuration and query frames all share the broadcast identifier
// x7FF and carry the target id in the payload. In question answer mode
// the motor replies on its own id with one of five reply layouts,
// selected by the top three bits of the first payload byte.
package x424

import (
	"encoding/binary"
	"math"

	motorcan "github.com/openbotics/gomotorcan"
	"github.com/openbotics/gomotorcan/pkg/can"
)

const (
	cmdServoPosition = 0x01
	cmdServoSpeed    = 0x02
	cmdCurrent       = 0x03

	cfgSetCommunicationMode   = 0x00
	cfgSetZeroPosition        = 0x03
	cfgSetMotorId             = 0x04
	cfgResetMotorId           = 0x05
	cfgQueryCommunicationMode = 0x81
	cfgQueryCanId             = 0x82

	replyType1 = 0x01
	replyType2 = 0x02
	replyType3 = 0x03
	replyType4 = 0x04
	replyType5 = 0x05
)

// configMatches recognizes frames of the configuration family : shared
// identifier, zero marker byte and the command id in the fourth byte.
// Query replies set the marker byte to x01 and are matched separately.
func configMatches(frame can.Frame, cmd uint8) bool {
	return !frame.Extended && frame.ID == motorcan.X424ConfigID &&
		frame.DLC >= 4 && frame.Data[2] == 0x00 && frame.Data[3] == cmd
}

func configNode(frame can.Frame) uint32 {
	return uint32(binary.BigEndian.Uint16(frame.Data[0:2]))
}

func configArbitration() motorcan.ArbitrationID {
	return motorcan.X424ID{Node: motorcan.X424ConfigID}
}

// configHeader is the common [id high, id low, marker, cmd] prefix
func configHeader(node uint32, cmd uint8) []byte {
	return []byte{uint8(node >> 8), uint8(node), 0x00, cmd}
}

func replyMatches(frame can.Frame, replyType uint8) bool {
	return !frame.Extended && frame.ID != motorcan.X424ConfigID &&
		frame.DLC > 0 && (frame.Data[0]>>5)&0x07 == replyType
}

// SetCommunicationMode switches the motor between auto report and
// question answer mode
type SetCommunicationMode struct {
	Node uint32
	Mode CommunicationMode
}

func (m SetCommunicationMode) Matches(frame can.Frame) bool {
	if frame.Extended || frame.ID != motorcan.X424ConfigID || frame.DLC < 4 {
		return false
	}
	mode := CommunicationMode(frame.Data[3])
	return frame.Data[2] == cfgSetCommunicationMode &&
		(mode == CommunicationModeAutoReport || mode == CommunicationModeQuestionAnswer)
}

func (m SetCommunicationMode) NodeID() uint32 { return m.Node }

func (m SetCommunicationMode) ArbitrationID() motorcan.ArbitrationID { return configArbitration() }

func (m SetCommunicationMode) MarshalPayload() []byte {
	return []byte{uint8(m.Node >> 8), uint8(m.Node), cfgSetCommunicationMode, uint8(m.Mode)}
}

func (m *SetCommunicationMode) UnmarshalFrame(frame can.Frame) {
	m.Node = configNode(frame)
	m.Mode = CommunicationMode(frame.Data[3])
}

// SetZeroPosition stores the current position as the zero point
type SetZeroPosition struct {
	Node uint32
}

func (m SetZeroPosition) Matches(frame can.Frame) bool {
	return configMatches(frame, cfgSetZeroPosition)
}

func (m SetZeroPosition) NodeID() uint32 { return m.Node }

func (m SetZeroPosition) ArbitrationID() motorcan.ArbitrationID { return configArbitration() }

func (m SetZeroPosition) MarshalPayload() []byte {
	return configHeader(m.Node, cfgSetZeroPosition)
}

func (m *SetZeroPosition) UnmarshalFrame(frame can.Frame) { m.Node = configNode(frame) }

// SetMotorID changes the CAN id of the motor currently answering on
// CurrentNode
type SetMotorID struct {
	CurrentNode uint32
	NewNode     uint32
}

func (m SetMotorID) Matches(frame can.Frame) bool {
	return configMatches(frame, cfgSetMotorId)
}

func (m SetMotorID) NodeID() uint32 { return m.CurrentNode }

func (m SetMotorID) ArbitrationID() motorcan.ArbitrationID { return configArbitration() }

func (m SetMotorID) MarshalPayload() []byte {
	payload := configHeader(m.CurrentNode, cfgSetMotorId)
	return append(payload, uint8(m.NewNode>>8), uint8(m.NewNode))
}

func (m *SetMotorID) UnmarshalFrame(frame can.Frame) {
	m.CurrentNode = configNode(frame)
	if frame.DLC >= 6 {
		m.NewNode = uint32(binary.BigEndian.Uint16(frame.Data[4:6]))
	}
}

// ResetMotorID restores the factory CAN id on every motor on the bus
type ResetMotorID struct{}

func (m ResetMotorID) Matches(frame can.Frame) bool {
	return configMatches(frame, cfgResetMotorId)
}

func (m ResetMotorID) NodeID() uint32 { return motorcan.X424ConfigID }

func (m ResetMotorID) ArbitrationID() motorcan.ArbitrationID { return configArbitration() }

func (m ResetMotorID) MarshalPayload() []byte {
	return []byte{0x7F, 0x7F, 0x00, cfgResetMotorId, 0x7F, 0x7F}
}

func (m *ResetMotorID) UnmarshalFrame(frame can.Frame) {}

// QueryCommunicationMode reads the current communication mode. The
// reply comes back on the shared identifier with the marker byte set.
type QueryCommunicationMode struct {
	Node uint32
	Mode CommunicationMode
}

func (m QueryCommunicationMode) Matches(frame can.Frame) bool {
	// The CAN id query reply uses the same marker, it is told apart by
	// its xFF prefix
	return !frame.Extended && frame.ID == motorcan.X424ConfigID &&
		frame.DLC >= 4 && frame.Data[2] == 0x01 && frame.Data[0] != 0xFF
}

func (m QueryCommunicationMode) NodeID() uint32 { return m.Node }

func (m QueryCommunicationMode) ArbitrationID() motorcan.ArbitrationID { return configArbitration() }

func (m QueryCommunicationMode) MarshalPayload() []byte {
	return configHeader(m.Node, cfgQueryCommunicationMode)
}

func (m *QueryCommunicationMode) UnmarshalFrame(frame can.Frame) {
	m.Node = configNode(frame)
	if frame.Data[3] == 0x01 {
		m.Mode = CommunicationModeAutoReport
	} else {
		m.Mode = CommunicationModeQuestionAnswer
	}
}

// QueryCANID asks every motor on the bus to report its CAN id
type QueryCANID struct {
	Node uint32
}

func (m QueryCANID) Matches(frame can.Frame) bool {
	return !frame.Extended && frame.ID == motorcan.X424ConfigID &&
		frame.DLC >= 5 && frame.Data[2] == 0x01 && frame.Data[0] == 0xFF
}

func (m QueryCANID) NodeID() uint32 { return m.Node }

func (m QueryCANID) ArbitrationID() motorcan.ArbitrationID { return configArbitration() }

func (m QueryCANID) MarshalPayload() []byte {
	return []byte{0xFF, 0xFF, 0x00, cfgQueryCanId}
}

func (m *QueryCANID) UnmarshalFrame(frame can.Frame) {
	m.Node = uint32(binary.BigEndian.Uint16(frame.Data[3:5]))
}

// ServoPositionControl commands a position in servo mode with speed and
// current limits. ReplyType selects which reply layout the motor sends
// back. Command only, replies arrive as reply messages.
type ServoPositionControl struct {
	Node         uint32
	Position     float32
	Speed        float32
	CurrentLimit float32
	ReplyType    uint8
}

func (m ServoPositionControl) Matches(frame can.Frame) bool { return false }

func (m ServoPositionControl) NodeID() uint32 { return m.Node }

func (m ServoPositionControl) ArbitrationID() motorcan.ArbitrationID {
	return motorcan.X424ID{Node: m.Node, Cmd: cmdServoPosition}
}

func (m ServoPositionControl) MarshalPayload() []byte {
	speed := uint64(float32(math.Min(float64(m.Speed), 32767))) & 0x7FFF
	current := uint64(float32(math.Min(float64(m.CurrentLimit), 409.5))*10) & 0xFFF
	packed := uint64(cmdServoPosition&0x07) << 61
	packed |= uint64(math.Float32bits(m.Position)) << 29
	packed |= speed << 14
	packed |= current << 2
	packed |= uint64(m.ReplyType & 0x03)
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, packed)
	return payload
}

func (m *ServoPositionControl) UnmarshalFrame(frame can.Frame) { m.Node = frame.ID }

// ServoSpeedControl commands a speed in servo mode with a current limit
type ServoSpeedControl struct {
	Node         uint32
	Speed        float32
	CurrentLimit float32
	ReplyType    uint8
}

func (m ServoSpeedControl) Matches(frame can.Frame) bool { return false }

func (m ServoSpeedControl) NodeID() uint32 { return m.Node }

func (m ServoSpeedControl) ArbitrationID() motorcan.ArbitrationID {
	return motorcan.X424ID{Node: m.Node, Cmd: cmdServoSpeed}
}

func (m ServoSpeedControl) MarshalPayload() []byte {
	current := uint64(float32(math.Min(float64(m.CurrentLimit), 6553.5))*10) & 0xFFFF
	packed := uint64(cmdServoSpeed&0x07) << 53
	packed |= uint64(m.ReplyType&0x03) << 48
	packed |= uint64(math.Float32bits(m.Speed)) << 16
	packed |= current
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, packed)
	return payload
}

func (m *ServoSpeedControl) UnmarshalFrame(frame can.Frame) { m.Node = frame.ID }

// CurrentControl commands a current, torque or fixed duty cycle
// depending on ControlType
type CurrentControl struct {
	Node        uint32
	Current     float32
	ControlType uint8
	ReplyType   uint8
}

func (m CurrentControl) Matches(frame can.Frame) bool { return false }

func (m CurrentControl) NodeID() uint32 { return m.Node }

func (m CurrentControl) ArbitrationID() motorcan.ArbitrationID {
	return motorcan.X424ID{Node: m.Node, Cmd: cmdCurrent}
}

func (m CurrentControl) MarshalPayload() []byte {
	packed := uint32(cmdCurrent&0x07) << 21
	packed |= uint32(m.ControlType&0x07) << 18
	packed |= uint32(m.ReplyType&0x03) << 16
	packed |= uint32(uint16(int16(m.Current * 100)))
	scratch := make([]byte, 4)
	binary.BigEndian.PutUint32(scratch, packed)
	return scratch[1:4]
}

func (m *CurrentControl) UnmarshalFrame(frame can.Frame) { m.Node = frame.ID }

// Reply1 is the packed telemetry reply : position, speed, current and
// both temperatures squeezed into a single frame
type Reply1 struct {
	Node       uint32
	MotorError MotorError
	Position   float32
	Speed      float32
	Current    float32
	MotorTemp  float32
	MosTemp    float32
}

func (m Reply1) Matches(frame can.Frame) bool { return replyMatches(frame, replyType1) }

func (m Reply1) NodeID() uint32 { return m.Node }

func (m Reply1) ArbitrationID() motorcan.ArbitrationID {
	return motorcan.X424ID{Node: m.Node}
}

func (m Reply1) MarshalPayload() []byte { return nil }

func (m *Reply1) UnmarshalFrame(frame can.Frame) {
	m.Node = frame.ID
	m.MotorError = MotorError(frame.Data[0] & 0x1F)
	if frame.DLC != 8 {
		return
	}
	packed := binary.BigEndian.Uint64(frame.Data[:])
	m.Position = float32((packed>>40)&0xFFFF)/65536*25 - 12.5
	m.Speed = float32((packed>>28)&0xFFF)/4095*36 - 18
	m.Current = float32((packed>>16)&0xFFF)/4095*60 - 30
	m.MotorTemp = (float32((packed>>8)&0xFF) - 50) / 2
	m.MosTemp = (float32(packed&0xFF) - 50) / 2
}

// Reply2 carries the exact position as a float plus current and
// temperature
type Reply2 struct {
	Node       uint32
	MotorError MotorError
	Position   float32
	Current    float32
	MotorTemp  float32
}

func (m Reply2) Matches(frame can.Frame) bool { return replyMatches(frame, replyType2) }

func (m Reply2) NodeID() uint32 { return m.Node }

func (m Reply2) ArbitrationID() motorcan.ArbitrationID {
	return motorcan.X424ID{Node: m.Node}
}

func (m Reply2) MarshalPayload() []byte { return nil }

func (m *Reply2) UnmarshalFrame(frame can.Frame) {
	m.Node = frame.ID
	m.MotorError = MotorError(frame.Data[0] & 0x1F)
	if frame.DLC < 8 {
		return
	}
	m.Position = math.Float32frombits(binary.LittleEndian.Uint32(frame.Data[1:5]))
	current := int16(binary.BigEndian.Uint16(frame.Data[5:7]))
	if current < 0 {
		current = -current
	}
	m.Current = float32(current) / 100
	m.MotorTemp = (float32(frame.Data[7]) - 50) / 2
}

// Reply3 carries the exact speed as a float plus current and
// temperature
type Reply3 struct {
	Node       uint32
	MotorError MotorError
	Speed      float32
	Current    float32
	MotorTemp  float32
}

func (m Reply3) Matches(frame can.Frame) bool { return replyMatches(frame, replyType3) }

func (m Reply3) NodeID() uint32 { return m.Node }

func (m Reply3) ArbitrationID() motorcan.ArbitrationID {
	return motorcan.X424ID{Node: m.Node}
}

func (m Reply3) MarshalPayload() []byte { return nil }

func (m *Reply3) UnmarshalFrame(frame can.Frame) {
	m.Node = frame.ID
	m.MotorError = MotorError(frame.Data[0] & 0x1F)
	if frame.DLC < 8 {
		return
	}
	m.Speed = math.Float32frombits(binary.LittleEndian.Uint32(frame.Data[1:5]))
	current := int16(binary.BigEndian.Uint16(frame.Data[5:7]))
	if current < 0 {
		current = -current
	}
	m.Current = float32(current) / 100
	m.MotorTemp = (float32(frame.Data[7]) - 50) / 2
}

// Reply4 acknowledges a configuration command
type Reply4 struct {
	Node         uint32
	MotorError   MotorError
	ConfigCode   uint8
	ConfigStatus bool
}

func (m Reply4) Matches(frame can.Frame) bool { return replyMatches(frame, replyType4) }

func (m Reply4) NodeID() uint32 { return m.Node }

func (m Reply4) ArbitrationID() motorcan.ArbitrationID {
	return motorcan.X424ID{Node: m.Node}
}

func (m Reply4) MarshalPayload() []byte { return nil }

func (m *Reply4) UnmarshalFrame(frame can.Frame) {
	m.Node = frame.ID
	m.MotorError = MotorError(frame.Data[0] & 0x1F)
	if frame.DLC < 3 {
		return
	}
	m.ConfigCode = frame.Data[1]
	m.ConfigStatus = frame.Data[2] == 1
}

// Reply5 answers a single value query. Query codes 1 to 4 return a
// float, codes 5 to 9 return a 16 bit value.
type Reply5 struct {
	Node        uint32
	MotorError  MotorError
	QueryCode   uint8
	Position    float32
	Speed       float32
	Current     float32
	Power       float32
	Uint16Value uint16
}

func (m Reply5) Matches(frame can.Frame) bool { return replyMatches(frame, replyType5) }

func (m Reply5) NodeID() uint32 { return m.Node }

func (m Reply5) ArbitrationID() motorcan.ArbitrationID {
	return motorcan.X424ID{Node: m.Node}
}

func (m Reply5) MarshalPayload() []byte { return nil }

func (m *Reply5) UnmarshalFrame(frame can.Frame) {
	m.Node = frame.ID
	m.MotorError = MotorError(frame.Data[0] & 0x1F)
	if frame.DLC < 3 {
		return
	}
	m.QueryCode = frame.Data[1]
	switch {
	case m.QueryCode >= 1 && m.QueryCode <= 4 && frame.DLC >= 6:
		value := math.Float32frombits(binary.LittleEndian.Uint32(frame.Data[2:6]))
		switch m.QueryCode {
		case 1:
			m.Position = value
		case 2:
			m.Speed = value
		case 3:
			m.Current = value
		case 4:
			m.Power = value
		}
	case m.QueryCode >= 5 && m.QueryCode <= 9 && frame.DLC >= 4:
		m.Uint16Value = binary.BigEndian.Uint16(frame.Data[2:4])
	}
}
