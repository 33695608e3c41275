// Package myactuator implements the CAN protocol of MyActuator V3
// motor controllers. Commands go out on identifier x140+node, replies
// come back on x240+node, and the command id is the first payload byte.
// Payloads are always 8 bytes.
package myactuator

import (
	"encoding/binary"

	motorcan "github.com/openbotics/gomotorcan"
	"github.com/openbotics/gomotorcan/pkg/can"
)

const (
	cmdFunctionControl     = 0x20
	cmdWriteZeroPosition   = 0x64
	cmdOperatingModeQuery  = 0x70
	cmdSystemReset         = 0x76
	cmdBrakeRelease        = 0x77
	cmdBrakeLock           = 0x78
	cmdCanId               = 0x79
	cmdShutdown            = 0x80
	cmdStop                = 0x81
	cmdMultiTurnAngle      = 0x92
	cmdMotorStatus1        = 0x9A
	cmdMotorStatus2        = 0x9C
	cmdTorqueControl       = 0xA1
	cmdSpeedControl        = 0xA2
	cmdPositionControl     = 0xA4
	cmdIncrementalPosition = 0xA8
	cmdVersion             = 0xB2
)

// canIdBroadcast is the identifier used by the CANID read/write command
const canIdBroadcast = 0x300

func matches(frame can.Frame, cmd uint8) bool {
	return !frame.Extended && motorcan.InMyActuatorWindow(frame.ID) &&
		frame.DLC > 0 && frame.Data[0] == cmd
}

func nodeOf(frame can.Frame) uint32 {
	return motorcan.ParseMyActuatorID(frame).Node
}

func arbitration(node uint32, cmd uint8) motorcan.ArbitrationID {
	return motorcan.MyActuatorID{Node: node, Cmd: cmd}
}

// payload8 allocates the fixed 8 byte payload with the command byte set
func payload8(cmd uint8) []byte {
	data := make([]byte, 8)
	data[0] = cmd
	return data
}

func clip(value int32, min int32, max int32) int32 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// MotorStatus1 reports temperature, brake state, voltage and the error
// flags. Sending the zero valued command polls the status.
type MotorStatus1 struct {
	Node          uint32
	Temperature   int8
	BrakeReleased bool
	Voltage       float32
	ErrorState    uint16
}

func (m MotorStatus1) Matches(frame can.Frame) bool { return matches(frame, cmdMotorStatus1) }

func (m MotorStatus1) NodeID() uint32 { return m.Node }

func (m MotorStatus1) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdMotorStatus1)
}

func (m MotorStatus1) MarshalPayload() []byte { return payload8(cmdMotorStatus1) }

func (m *MotorStatus1) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.Temperature = int8(data[1])
	m.BrakeReleased = data[3] != 0
	m.Voltage = float32(binary.LittleEndian.Uint16(data[4:6])) * 0.1
	m.ErrorState = binary.LittleEndian.Uint16(data[6:8])
}

// MotorStatus2 reports temperature, torque current, speed and angle
type MotorStatus2 struct {
	Node          uint32
	Temperature   int8
	TorqueCurrent float32
	Speed         int16
	Angle         int16
}

func (m MotorStatus2) Matches(frame can.Frame) bool { return matches(frame, cmdMotorStatus2) }

func (m MotorStatus2) NodeID() uint32 { return m.Node }

func (m MotorStatus2) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdMotorStatus2)
}

func (m MotorStatus2) MarshalPayload() []byte { return payload8(cmdMotorStatus2) }

func (m *MotorStatus2) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.Temperature = int8(data[1])
	m.TorqueCurrent = float32(int16(binary.LittleEndian.Uint16(data[2:4]))) * 0.01
	m.Speed = int16(binary.LittleEndian.Uint16(data[4:6]))
	m.Angle = int16(binary.LittleEndian.Uint16(data[6:8]))
}

// WriteZeroPosition stores the current position as the zero point
type WriteZeroPosition struct {
	Node uint32
}

func (m WriteZeroPosition) Matches(frame can.Frame) bool {
	return matches(frame, cmdWriteZeroPosition)
}

func (m WriteZeroPosition) NodeID() uint32 { return m.Node }

func (m WriteZeroPosition) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdWriteZeroPosition)
}

func (m WriteZeroPosition) MarshalPayload() []byte { return payload8(cmdWriteZeroPosition) }

func (m *WriteZeroPosition) UnmarshalFrame(frame can.Frame) { m.Node = nodeOf(frame) }

// TorqueControl commands a torque current in amperes
type TorqueControl struct {
	Node          uint32
	TorqueCurrent float32
}

func (m TorqueControl) Matches(frame can.Frame) bool { return matches(frame, cmdTorqueControl) }

func (m TorqueControl) NodeID() uint32 { return m.Node }

func (m TorqueControl) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdTorqueControl)
}

func (m TorqueControl) MarshalPayload() []byte {
	data := payload8(cmdTorqueControl)
	binary.LittleEndian.PutUint16(data[4:6], uint16(int16(m.TorqueCurrent*100)))
	return data
}

func (m *TorqueControl) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 6 {
		return
	}
	m.TorqueCurrent = float32(int16(binary.LittleEndian.Uint16(data[4:6]))) * 0.01
}

// SpeedControl commands a speed in degrees per second
type SpeedControl struct {
	Node  uint32
	Speed float32
}

func (m SpeedControl) Matches(frame can.Frame) bool { return matches(frame, cmdSpeedControl) }

func (m SpeedControl) NodeID() uint32 { return m.Node }

func (m SpeedControl) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdSpeedControl)
}

func (m SpeedControl) MarshalPayload() []byte {
	data := payload8(cmdSpeedControl)
	binary.LittleEndian.PutUint32(data[4:8], uint32(int32(m.Speed*100)))
	return data
}

func (m *SpeedControl) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.Speed = float32(int32(binary.LittleEndian.Uint32(data[4:8]))) / 100
}

// PositionControl commands an absolute position in degrees with a speed
// limit in degrees per second
type PositionControl struct {
	Node     uint32
	Position float32
	MaxSpeed uint16
}

func (m PositionControl) Matches(frame can.Frame) bool { return matches(frame, cmdPositionControl) }

func (m PositionControl) NodeID() uint32 { return m.Node }

func (m PositionControl) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdPositionControl)
}

func (m PositionControl) MarshalPayload() []byte {
	data := payload8(cmdPositionControl)
	binary.LittleEndian.PutUint16(data[2:4], m.MaxSpeed)
	binary.LittleEndian.PutUint32(data[4:8], uint32(int32(m.Position*100)))
	return data
}

func (m *PositionControl) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.MaxSpeed = binary.LittleEndian.Uint16(data[2:4])
	m.Position = float32(int32(binary.LittleEndian.Uint32(data[4:8]))) / 100
}

// IncrementalPositionControl commands a position relative to the
// current one
type IncrementalPositionControl struct {
	Node              uint32
	PositionIncrement float32
	MaxSpeed          uint16
}

func (m IncrementalPositionControl) Matches(frame can.Frame) bool {
	return matches(frame, cmdIncrementalPosition)
}

func (m IncrementalPositionControl) NodeID() uint32 { return m.Node }

func (m IncrementalPositionControl) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdIncrementalPosition)
}

func (m IncrementalPositionControl) MarshalPayload() []byte {
	data := payload8(cmdIncrementalPosition)
	binary.LittleEndian.PutUint16(data[2:4], m.MaxSpeed)
	binary.LittleEndian.PutUint32(data[4:8], uint32(int32(m.PositionIncrement*100)))
	return data
}

func (m *IncrementalPositionControl) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.MaxSpeed = binary.LittleEndian.Uint16(data[2:4])
	m.PositionIncrement = float32(int32(binary.LittleEndian.Uint32(data[4:8]))) / 100
}

// Shutdown turns the motor output off
type Shutdown struct {
	Node uint32
}

func (m Shutdown) Matches(frame can.Frame) bool { return matches(frame, cmdShutdown) }

func (m Shutdown) NodeID() uint32 { return m.Node }

func (m Shutdown) ArbitrationID() motorcan.ArbitrationID { return arbitration(m.Node, cmdShutdown) }

func (m Shutdown) MarshalPayload() []byte { return payload8(cmdShutdown) }

func (m *Shutdown) UnmarshalFrame(frame can.Frame) { m.Node = nodeOf(frame) }

// Stop halts the motor without leaving closed loop mode
type Stop struct {
	Node uint32
}

func (m Stop) Matches(frame can.Frame) bool { return matches(frame, cmdStop) }

func (m Stop) NodeID() uint32 { return m.Node }

func (m Stop) ArbitrationID() motorcan.ArbitrationID { return arbitration(m.Node, cmdStop) }

func (m Stop) MarshalPayload() []byte { return payload8(cmdStop) }

func (m *Stop) UnmarshalFrame(frame can.Frame) { m.Node = nodeOf(frame) }

// MultiTurnAngle reads the accumulated multi turn angle in degrees
type MultiTurnAngle struct {
	Node  uint32
	Angle float32
}

func (m MultiTurnAngle) Matches(frame can.Frame) bool { return matches(frame, cmdMultiTurnAngle) }

func (m MultiTurnAngle) NodeID() uint32 { return m.Node }

func (m MultiTurnAngle) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdMultiTurnAngle)
}

func (m MultiTurnAngle) MarshalPayload() []byte { return payload8(cmdMultiTurnAngle) }

func (m *MultiTurnAngle) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.Angle = float32(int32(binary.LittleEndian.Uint32(data[4:8]))) * 0.01
}

// BrakeRelease opens the holding brake
type BrakeRelease struct {
	Node uint32
}

func (m BrakeRelease) Matches(frame can.Frame) bool { return matches(frame, cmdBrakeRelease) }

func (m BrakeRelease) NodeID() uint32 { return m.Node }

func (m BrakeRelease) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdBrakeRelease)
}

func (m BrakeRelease) MarshalPayload() []byte { return payload8(cmdBrakeRelease) }

func (m *BrakeRelease) UnmarshalFrame(frame can.Frame) { m.Node = nodeOf(frame) }

// BrakeLock closes the holding brake
type BrakeLock struct {
	Node uint32
}

func (m BrakeLock) Matches(frame can.Frame) bool { return matches(frame, cmdBrakeLock) }

func (m BrakeLock) NodeID() uint32 { return m.Node }

func (m BrakeLock) ArbitrationID() motorcan.ArbitrationID { return arbitration(m.Node, cmdBrakeLock) }

func (m BrakeLock) MarshalPayload() []byte { return payload8(cmdBrakeLock) }

func (m *BrakeLock) UnmarshalFrame(frame can.Frame) { m.Node = nodeOf(frame) }

// OperatingModeQuery reads the current operating mode
type OperatingModeQuery struct {
	Node uint32
	Mode OperatingMode
}

func (m OperatingModeQuery) Matches(frame can.Frame) bool {
	return matches(frame, cmdOperatingModeQuery)
}

func (m OperatingModeQuery) NodeID() uint32 { return m.Node }

func (m OperatingModeQuery) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdOperatingModeQuery)
}

func (m OperatingModeQuery) MarshalPayload() []byte { return payload8(cmdOperatingModeQuery) }

func (m *OperatingModeQuery) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.Mode = OperatingMode(data[7])
}

// SystemReset reboots the controller
type SystemReset struct {
	Node uint32
}

func (m SystemReset) Matches(frame can.Frame) bool { return matches(frame, cmdSystemReset) }

func (m SystemReset) NodeID() uint32 { return m.Node }

func (m SystemReset) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdSystemReset)
}

func (m SystemReset) MarshalPayload() []byte { return payload8(cmdSystemReset) }

func (m *SystemReset) UnmarshalFrame(frame can.Frame) { m.Node = nodeOf(frame) }

// Version reads the firmware version date, encoded as yyyymmdd
type Version struct {
	Node        uint32
	VersionDate uint32
}

func (m Version) Matches(frame can.Frame) bool { return matches(frame, cmdVersion) }

func (m Version) NodeID() uint32 { return m.Node }

func (m Version) ArbitrationID() motorcan.ArbitrationID { return arbitration(m.Node, cmdVersion) }

func (m Version) MarshalPayload() []byte { return payload8(cmdVersion) }

func (m *Version) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.VersionDate = binary.LittleEndian.Uint32(data[4:8])
}

// FunctionControl drives the auxiliary functions listed in
// [FunctionIndex]
type FunctionControl struct {
	Node     uint32
	Function FunctionIndex
	Value    int32
}

func (m FunctionControl) Matches(frame can.Frame) bool { return matches(frame, cmdFunctionControl) }

func (m FunctionControl) NodeID() uint32 { return m.Node }

func (m FunctionControl) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdFunctionControl)
}

func (m FunctionControl) MarshalPayload() []byte {
	data := payload8(cmdFunctionControl)
	data[1] = uint8(m.Function)
	binary.LittleEndian.PutUint32(data[4:8], uint32(m.Value))
	return data
}

func (m *FunctionControl) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.Function = FunctionIndex(data[1])
	m.Value = int32(binary.LittleEndian.Uint32(data[4:8]))
}

// CANIDCommand reads or writes the CANID of a motor. It is broadcast on
// identifier x300, the target id is clipped to 1..32.
type CANIDCommand struct {
	Node  uint32
	Read  bool
	CANID uint32
}

func (m CANIDCommand) Matches(frame can.Frame) bool { return matches(frame, cmdCanId) }

func (m CANIDCommand) NodeID() uint32 { return m.Node }

func (m CANIDCommand) ArbitrationID() motorcan.ArbitrationID {
	return motorcan.MyActuatorID{Node: m.Node, Cmd: cmdCanId, Custom: canIdBroadcast}
}

func (m CANIDCommand) MarshalPayload() []byte {
	data := payload8(cmdCanId)
	if m.Read {
		data[2] = 0x01
	}
	data[7] = uint8(clip(int32(m.CANID), 1, 32))
	return data
}

func (m *CANIDCommand) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.Read = data[2] != 0
	m.CANID = uint32(data[7])
}
