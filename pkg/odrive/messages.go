// Package odrive implements the CAN simple protocol of ODrive motor
// controllers. The 11 bit identifier packs a 6 bit node id and a 5 bit
// command id, payloads are little endian.
package odrive

import (
	"encoding/binary"
	"fmt"
	"math"

	motorcan "github.com/openbotics/gomotorcan"
	"github.com/openbotics/gomotorcan/pkg/can"
)

const (
	cmdGetVersion          = 0x00
	cmdHeartbeat           = 0x01
	cmdEStop               = 0x02
	cmdError               = 0x03
	cmdRWParameter         = 0x04
	cmdParameterResponse   = 0x05
	cmdSetAxisState        = 0x07
	cmdEncoderEstimates    = 0x09
	cmdSetControllerMode   = 0x0B
	cmdSetPosition         = 0x0C
	cmdSetVelocity         = 0x0D
	cmdSetTorque           = 0x0E
	cmdSetLimits           = 0x0F
	cmdSetTrajVelLimit     = 0x11
	cmdSetTrajAccelLimits  = 0x12
	cmdSetTrajInertia      = 0x13
	cmdIq                  = 0x14
	cmdTemperature         = 0x15
	cmdReboot              = 0x16
	cmdBusVoltageCurrent   = 0x17
	cmdClearErrors         = 0x18
	cmdSetAbsolutePosition = 0x19
	cmdSetPosGain          = 0x1A
	cmdSetVelGains         = 0x1B
	cmdTorques             = 0x1C
	cmdPowers              = 0x1D
	cmdEnterDfuMode        = 0x1F
)

func matches(frame can.Frame, cmd uint32) bool {
	return !frame.Extended && frame.ID&motorcan.ODriveCmdMask == cmd
}

func nodeOf(frame can.Frame) uint32 {
	return motorcan.ParseODriveID(frame.ID).Node
}

func arbitration(node uint32, cmd uint32) motorcan.ArbitrationID {
	return motorcan.ODriveID{Node: node, Cmd: cmd}
}

func getF32(data []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data))
}

func putF32(data []byte, value float32) {
	binary.LittleEndian.PutUint32(data, math.Float32bits(value))
}

// GetVersion requests and carries hardware and firmware versions
type GetVersion struct {
	Node       uint32
	HwMajor    uint8
	HwMinor    uint8
	HwVariant  uint8
	FwMajor    uint8
	FwMinor    uint8
	FwRevision uint8
}

func (m GetVersion) Matches(frame can.Frame) bool { return matches(frame, cmdGetVersion) }

func (m GetVersion) NodeID() uint32 { return m.Node }

func (m GetVersion) ArbitrationID() motorcan.ArbitrationID { return arbitration(m.Node, cmdGetVersion) }

func (m GetVersion) MarshalPayload() []byte { return nil }

func (m *GetVersion) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.HwMajor = data[1]
	m.HwMinor = data[2]
	m.HwVariant = data[3]
	m.FwMajor = data[4]
	m.FwMinor = data[5]
	m.FwRevision = data[6]
}

func (m GetVersion) HwVersion() string {
	return fmt.Sprintf("%d.%d.%d", m.HwMajor, m.HwMinor, m.HwVariant)
}

func (m GetVersion) FwVersion() string {
	return fmt.Sprintf("%d.%d.%d", m.FwMajor, m.FwMinor, m.FwRevision)
}

// Heartbeat is sent cyclically by every axis
type Heartbeat struct {
	Node            uint32
	AxisError       DriveError
	AxisState       AxisState
	ProcedureResult ProcedureResult
	TrajectoryDone  bool
}

func (m Heartbeat) Matches(frame can.Frame) bool { return matches(frame, cmdHeartbeat) }

func (m Heartbeat) NodeID() uint32 { return m.Node }

func (m Heartbeat) ArbitrationID() motorcan.ArbitrationID { return arbitration(m.Node, cmdHeartbeat) }

func (m Heartbeat) MarshalPayload() []byte { return nil }

func (m *Heartbeat) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 7 {
		return
	}
	m.AxisError = DriveError(binary.LittleEndian.Uint32(data[0:4]))
	m.AxisState = AxisState(data[4])
	m.ProcedureResult = ProcedureResult(data[5])
	m.TrajectoryDone = data[6] != 0
}

// EStop disarms the axis immediately
type EStop struct {
	Node uint32
}

func (m EStop) Matches(frame can.Frame) bool { return matches(frame, cmdEStop) }

func (m EStop) NodeID() uint32 { return m.Node }

func (m EStop) ArbitrationID() motorcan.ArbitrationID { return arbitration(m.Node, cmdEStop) }

func (m EStop) MarshalPayload() []byte { return nil }

func (m *EStop) UnmarshalFrame(frame can.Frame) { m.Node = nodeOf(frame) }

// ErrorReport carries the active error and disarm reason bitmasks
type ErrorReport struct {
	Node         uint32
	ActiveErrors DriveError
	DisarmReason DriveError
}

func (m ErrorReport) Matches(frame can.Frame) bool { return matches(frame, cmdError) }

func (m ErrorReport) NodeID() uint32 { return m.Node }

func (m ErrorReport) ArbitrationID() motorcan.ArbitrationID { return arbitration(m.Node, cmdError) }

func (m ErrorReport) MarshalPayload() []byte { return nil }

func (m *ErrorReport) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.ActiveErrors = DriveError(binary.LittleEndian.Uint32(data[0:4]))
	m.DisarmReason = DriveError(binary.LittleEndian.Uint32(data[4:8]))
}

// ReadParameter requests an arbitrary endpoint value. It shares command
// id x04 with WriteParameter, the opcode byte tells them apart.
type ReadParameter struct {
	Node       uint32
	EndpointID uint16
}

func (m ReadParameter) Matches(frame can.Frame) bool {
	return matches(frame, cmdRWParameter) && frame.DLC >= 1 && frame.Data[0] == 0
}

func (m ReadParameter) NodeID() uint32 { return m.Node }

func (m ReadParameter) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdRWParameter)
}

func (m ReadParameter) MarshalPayload() []byte {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint16(data[1:3], m.EndpointID)
	return data
}

func (m *ReadParameter) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 4 {
		return
	}
	m.EndpointID = binary.LittleEndian.Uint16(data[1:3])
}

// WriteParameter writes a pre packed value to an arbitrary endpoint
type WriteParameter struct {
	Node       uint32
	EndpointID uint16
	Value      []byte
}

// WriteParameterFloat32 builds a WriteParameter for a float endpoint
func WriteParameterFloat32(node uint32, endpointId uint16, value float32) WriteParameter {
	data := make([]byte, 4)
	putF32(data, value)
	return WriteParameter{Node: node, EndpointID: endpointId, Value: data}
}

// WriteParameterUint32 builds a WriteParameter for an integer endpoint
func WriteParameterUint32(node uint32, endpointId uint16, value uint32) WriteParameter {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, value)
	return WriteParameter{Node: node, EndpointID: endpointId, Value: data}
}

func (m WriteParameter) Matches(frame can.Frame) bool {
	return matches(frame, cmdRWParameter) && frame.DLC >= 1 && frame.Data[0] == 1
}

func (m WriteParameter) NodeID() uint32 { return m.Node }

func (m WriteParameter) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdRWParameter)
}

func (m WriteParameter) MarshalPayload() []byte {
	data := make([]byte, 4, 4+len(m.Value))
	data[0] = 1
	binary.LittleEndian.PutUint16(data[1:3], m.EndpointID)
	return append(data, m.Value...)
}

func (m *WriteParameter) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 4 {
		return
	}
	m.EndpointID = binary.LittleEndian.Uint16(data[1:3])
	m.Value = append([]byte{}, data[4:]...)
}

// ParameterResponse answers a ReadParameter request. The value encoding
// depends on the endpoint, use the typed accessors.
type ParameterResponse struct {
	Node       uint32
	EndpointID uint16
	Value      []byte
}

func (m ParameterResponse) Matches(frame can.Frame) bool {
	return matches(frame, cmdParameterResponse)
}

func (m ParameterResponse) NodeID() uint32 { return m.Node }

func (m ParameterResponse) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdParameterResponse)
}

func (m ParameterResponse) MarshalPayload() []byte { return nil }

func (m *ParameterResponse) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 4 {
		return
	}
	m.EndpointID = binary.LittleEndian.Uint16(data[1:3])
	m.Value = append([]byte{}, data[4:]...)
}

func (m ParameterResponse) Float32() float32 {
	if len(m.Value) < 4 {
		return 0
	}
	return getF32(m.Value[0:4])
}

func (m ParameterResponse) Uint32() uint32 {
	if len(m.Value) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(m.Value[0:4])
}

// SetAxisState requests a state machine transition
type SetAxisState struct {
	Node  uint32
	State AxisState
}

func (m SetAxisState) Matches(frame can.Frame) bool { return matches(frame, cmdSetAxisState) }

func (m SetAxisState) NodeID() uint32 { return m.Node }

func (m SetAxisState) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdSetAxisState)
}

func (m SetAxisState) MarshalPayload() []byte {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, uint32(m.State))
	return data
}

func (m *SetAxisState) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 4 {
		return
	}
	m.State = AxisState(binary.LittleEndian.Uint32(data[0:4]))
}

// EncoderEstimates is the cyclic position and velocity feedback
type EncoderEstimates struct {
	Node        uint32
	PosEstimate float32
	VelEstimate float32
}

func (m EncoderEstimates) Matches(frame can.Frame) bool { return matches(frame, cmdEncoderEstimates) }

func (m EncoderEstimates) NodeID() uint32 { return m.Node }

func (m EncoderEstimates) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdEncoderEstimates)
}

func (m EncoderEstimates) MarshalPayload() []byte { return nil }

func (m *EncoderEstimates) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.PosEstimate = getF32(data[0:4])
	m.VelEstimate = getF32(data[4:8])
}

// SetControllerMode selects controller and input modes
type SetControllerMode struct {
	Node        uint32
	ControlMode ControlMode
	InputMode   InputMode
}

func (m SetControllerMode) Matches(frame can.Frame) bool {
	return matches(frame, cmdSetControllerMode)
}

func (m SetControllerMode) NodeID() uint32 { return m.Node }

func (m SetControllerMode) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdSetControllerMode)
}

func (m SetControllerMode) MarshalPayload() []byte {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[0:4], uint32(m.ControlMode))
	binary.LittleEndian.PutUint32(data[4:8], uint32(m.InputMode))
	return data
}

func (m *SetControllerMode) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.ControlMode = ControlMode(binary.LittleEndian.Uint32(data[0:4]))
	m.InputMode = InputMode(binary.LittleEndian.Uint32(data[4:8]))
}

// SetPosition commands a position with optional feed forward terms.
// Feed forwards are scaled by x1000 on the device side.
type SetPosition struct {
	Node          uint32
	InputPosition float32
	VelocityFF    int16
	TorqueFF      int16
}

func (m SetPosition) Matches(frame can.Frame) bool { return matches(frame, cmdSetPosition) }

func (m SetPosition) NodeID() uint32 { return m.Node }

func (m SetPosition) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdSetPosition)
}

func (m SetPosition) MarshalPayload() []byte {
	data := make([]byte, 8)
	putF32(data[0:4], m.InputPosition)
	binary.LittleEndian.PutUint16(data[4:6], uint16(m.VelocityFF))
	binary.LittleEndian.PutUint16(data[6:8], uint16(m.TorqueFF))
	return data
}

func (m *SetPosition) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.InputPosition = getF32(data[0:4])
	m.VelocityFF = int16(binary.LittleEndian.Uint16(data[4:6]))
	m.TorqueFF = int16(binary.LittleEndian.Uint16(data[6:8]))
}

// SetVelocity commands a velocity with a torque feed forward
type SetVelocity struct {
	Node     uint32
	Velocity float32
	TorqueFF float32
}

func (m SetVelocity) Matches(frame can.Frame) bool { return matches(frame, cmdSetVelocity) }

func (m SetVelocity) NodeID() uint32 { return m.Node }

func (m SetVelocity) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdSetVelocity)
}

func (m SetVelocity) MarshalPayload() []byte {
	data := make([]byte, 8)
	putF32(data[0:4], m.Velocity)
	putF32(data[4:8], m.TorqueFF)
	return data
}

func (m *SetVelocity) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.Velocity = getF32(data[0:4])
	m.TorqueFF = getF32(data[4:8])
}

// SetTorque commands a torque setpoint
type SetTorque struct {
	Node        uint32
	InputTorque float32
}

func (m SetTorque) Matches(frame can.Frame) bool { return matches(frame, cmdSetTorque) }

func (m SetTorque) NodeID() uint32 { return m.Node }

func (m SetTorque) ArbitrationID() motorcan.ArbitrationID { return arbitration(m.Node, cmdSetTorque) }

func (m SetTorque) MarshalPayload() []byte {
	data := make([]byte, 4)
	putF32(data, m.InputTorque)
	return data
}

func (m *SetTorque) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 4 {
		return
	}
	m.InputTorque = getF32(data[0:4])
}

// SetLimits sets velocity and current limits
type SetLimits struct {
	Node          uint32
	VelocityLimit float32
	CurrentLimit  float32
}

func (m SetLimits) Matches(frame can.Frame) bool { return matches(frame, cmdSetLimits) }

func (m SetLimits) NodeID() uint32 { return m.Node }

func (m SetLimits) ArbitrationID() motorcan.ArbitrationID { return arbitration(m.Node, cmdSetLimits) }

func (m SetLimits) MarshalPayload() []byte {
	data := make([]byte, 8)
	putF32(data[0:4], m.VelocityLimit)
	putF32(data[4:8], m.CurrentLimit)
	return data
}

func (m *SetLimits) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.VelocityLimit = getF32(data[0:4])
	m.CurrentLimit = getF32(data[4:8])
}

// SetTrajVelLimit sets the trajectory velocity limit
type SetTrajVelLimit struct {
	Node     uint32
	VelLimit float32
}

func (m SetTrajVelLimit) Matches(frame can.Frame) bool { return matches(frame, cmdSetTrajVelLimit) }

func (m SetTrajVelLimit) NodeID() uint32 { return m.Node }

func (m SetTrajVelLimit) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdSetTrajVelLimit)
}

func (m SetTrajVelLimit) MarshalPayload() []byte {
	data := make([]byte, 4)
	putF32(data, m.VelLimit)
	return data
}

func (m *SetTrajVelLimit) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 4 {
		return
	}
	m.VelLimit = getF32(data[0:4])
}

// SetTrajAccelLimits sets trajectory acceleration and deceleration limits
type SetTrajAccelLimits struct {
	Node       uint32
	AccelLimit float32
	DecelLimit float32
}

func (m SetTrajAccelLimits) Matches(frame can.Frame) bool {
	return matches(frame, cmdSetTrajAccelLimits)
}

func (m SetTrajAccelLimits) NodeID() uint32 { return m.Node }

func (m SetTrajAccelLimits) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdSetTrajAccelLimits)
}

func (m SetTrajAccelLimits) MarshalPayload() []byte {
	data := make([]byte, 8)
	putF32(data[0:4], m.AccelLimit)
	putF32(data[4:8], m.DecelLimit)
	return data
}

func (m *SetTrajAccelLimits) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.AccelLimit = getF32(data[0:4])
	m.DecelLimit = getF32(data[4:8])
}

// SetTrajInertia sets the trajectory inertia feed forward
type SetTrajInertia struct {
	Node    uint32
	Inertia float32
}

func (m SetTrajInertia) Matches(frame can.Frame) bool { return matches(frame, cmdSetTrajInertia) }

func (m SetTrajInertia) NodeID() uint32 { return m.Node }

func (m SetTrajInertia) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdSetTrajInertia)
}

func (m SetTrajInertia) MarshalPayload() []byte {
	data := make([]byte, 4)
	putF32(data, m.Inertia)
	return data
}

func (m *SetTrajInertia) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 4 {
		return
	}
	m.Inertia = getF32(data[0:4])
}

// Iq is the cyclic current setpoint and measurement feedback
type Iq struct {
	Node     uint32
	Setpoint float32
	Measured float32
}

func (m Iq) Matches(frame can.Frame) bool { return matches(frame, cmdIq) }

func (m Iq) NodeID() uint32 { return m.Node }

func (m Iq) ArbitrationID() motorcan.ArbitrationID { return arbitration(m.Node, cmdIq) }

func (m Iq) MarshalPayload() []byte { return nil }

func (m *Iq) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.Setpoint = getF32(data[0:4])
	m.Measured = getF32(data[4:8])
}

// Temperature is the cyclic inverter and motor temperature feedback
type Temperature struct {
	Node             uint32
	FetTemperature   float32
	MotorTemperature float32
}

func (m Temperature) Matches(frame can.Frame) bool { return matches(frame, cmdTemperature) }

func (m Temperature) NodeID() uint32 { return m.Node }

func (m Temperature) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdTemperature)
}

func (m Temperature) MarshalPayload() []byte { return nil }

func (m *Temperature) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.FetTemperature = getF32(data[0:4])
	m.MotorTemperature = getF32(data[4:8])
}

// Reboot restarts the controller, the action selects save or erase of
// the configuration
type Reboot struct {
	Node   uint32
	Action uint32
}

func (m Reboot) Matches(frame can.Frame) bool { return matches(frame, cmdReboot) }

func (m Reboot) NodeID() uint32 { return m.Node }

func (m Reboot) ArbitrationID() motorcan.ArbitrationID { return arbitration(m.Node, cmdReboot) }

func (m Reboot) MarshalPayload() []byte {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, m.Action)
	return data
}

func (m *Reboot) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 4 {
		return
	}
	m.Action = binary.LittleEndian.Uint32(data[0:4])
}

// BusVoltageCurrent is the cyclic DC bus feedback
type BusVoltageCurrent struct {
	Node    uint32
	Voltage float32
	Current float32
}

func (m BusVoltageCurrent) Matches(frame can.Frame) bool {
	return matches(frame, cmdBusVoltageCurrent)
}

func (m BusVoltageCurrent) NodeID() uint32 { return m.Node }

func (m BusVoltageCurrent) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdBusVoltageCurrent)
}

func (m BusVoltageCurrent) MarshalPayload() []byte { return nil }

func (m *BusVoltageCurrent) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.Voltage = getF32(data[0:4])
	m.Current = getF32(data[4:8])
}

// ClearErrors resets the error state, optionally flashing the status led
type ClearErrors struct {
	Node     uint32
	Identify uint8
}

func (m ClearErrors) Matches(frame can.Frame) bool { return matches(frame, cmdClearErrors) }

func (m ClearErrors) NodeID() uint32 { return m.Node }

func (m ClearErrors) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdClearErrors)
}

func (m ClearErrors) MarshalPayload() []byte { return []byte{m.Identify} }

func (m *ClearErrors) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 1 {
		return
	}
	m.Identify = data[0]
}

// SetAbsolutePosition overwrites the current position estimate
type SetAbsolutePosition struct {
	Node     uint32
	Position float32
}

func (m SetAbsolutePosition) Matches(frame can.Frame) bool {
	return matches(frame, cmdSetAbsolutePosition)
}

func (m SetAbsolutePosition) NodeID() uint32 { return m.Node }

func (m SetAbsolutePosition) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdSetAbsolutePosition)
}

func (m SetAbsolutePosition) MarshalPayload() []byte {
	data := make([]byte, 4)
	putF32(data, m.Position)
	return data
}

func (m *SetAbsolutePosition) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 4 {
		return
	}
	m.Position = getF32(data[0:4])
}

// SetPosGain sets the position controller gain
type SetPosGain struct {
	Node    uint32
	PosGain float32
}

func (m SetPosGain) Matches(frame can.Frame) bool { return matches(frame, cmdSetPosGain) }

func (m SetPosGain) NodeID() uint32 { return m.Node }

func (m SetPosGain) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdSetPosGain)
}

func (m SetPosGain) MarshalPayload() []byte {
	data := make([]byte, 4)
	putF32(data, m.PosGain)
	return data
}

func (m *SetPosGain) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 4 {
		return
	}
	m.PosGain = getF32(data[0:4])
}

// SetVelGains sets the velocity controller gains
type SetVelGains struct {
	Node              uint32
	VelGain           float32
	VelIntegratorGain float32
}

func (m SetVelGains) Matches(frame can.Frame) bool { return matches(frame, cmdSetVelGains) }

func (m SetVelGains) NodeID() uint32 { return m.Node }

func (m SetVelGains) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdSetVelGains)
}

func (m SetVelGains) MarshalPayload() []byte {
	data := make([]byte, 8)
	putF32(data[0:4], m.VelGain)
	putF32(data[4:8], m.VelIntegratorGain)
	return data
}

func (m *SetVelGains) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.VelGain = getF32(data[0:4])
	m.VelIntegratorGain = getF32(data[4:8])
}

// Torques is the cyclic torque target and estimate feedback
type Torques struct {
	Node     uint32
	Target   float32
	Estimate float32
}

func (m Torques) Matches(frame can.Frame) bool { return matches(frame, cmdTorques) }

func (m Torques) NodeID() uint32 { return m.Node }

func (m Torques) ArbitrationID() motorcan.ArbitrationID { return arbitration(m.Node, cmdTorques) }

func (m Torques) MarshalPayload() []byte { return nil }

func (m *Torques) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.Target = getF32(data[0:4])
	m.Estimate = getF32(data[4:8])
}

// Powers is the cyclic electrical and mechanical power feedback
type Powers struct {
	Node            uint32
	ElectricalPower float32
	MechanicalPower float32
}

func (m Powers) Matches(frame can.Frame) bool { return matches(frame, cmdPowers) }

func (m Powers) NodeID() uint32 { return m.Node }

func (m Powers) ArbitrationID() motorcan.ArbitrationID { return arbitration(m.Node, cmdPowers) }

func (m Powers) MarshalPayload() []byte { return nil }

func (m *Powers) UnmarshalFrame(frame can.Frame) {
	m.Node = nodeOf(frame)
	data := frame.Payload()
	if len(data) < 8 {
		return
	}
	m.ElectricalPower = getF32(data[0:4])
	m.MechanicalPower = getF32(data[4:8])
}

// EnterDfuMode puts the controller into firmware update mode
type EnterDfuMode struct {
	Node uint32
}

func (m EnterDfuMode) Matches(frame can.Frame) bool { return matches(frame, cmdEnterDfuMode) }

func (m EnterDfuMode) NodeID() uint32 { return m.Node }

func (m EnterDfuMode) ArbitrationID() motorcan.ArbitrationID {
	return arbitration(m.Node, cmdEnterDfuMode)
}

func (m EnterDfuMode) MarshalPayload() []byte { return nil }

func (m *EnterDfuMode) UnmarshalFrame(frame can.Frame) { m.Node = nodeOf(frame) }
