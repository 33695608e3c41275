package myactuator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	motorcan "github.com/openbotics/gomotorcan"
	"github.com/openbotics/gomotorcan/pkg/can"
)

func TestSpeedControlMarshal(t *testing.T) {
	msg := SpeedControl{Node: 5, Speed: 12.34}
	frame, err := motorcan.Marshal(msg)
	assert.Nil(t, err)
	assert.Equal(t, uint32(0x145), frame.ID)
	assert.Equal(t, uint8(8), frame.DLC)
	assert.Equal(t, [8]byte{0xA2, 0, 0, 0, 0xD2, 0x04, 0, 0}, frame.Data)
}

func TestSpeedControlDecodeFromReply(t *testing.T) {
	frame := can.NewFrame(0x245, 8)
	frame.Data = [8]byte{0xA2, 0, 0, 0, 0x2E, 0xFB, 0xFF, 0xFF}

	msg := SpeedControl{}
	assert.True(t, msg.Matches(frame))
	msg.UnmarshalFrame(frame)
	assert.Equal(t, uint32(5), msg.Node)
	assert.InDelta(t, -12.34, msg.Speed, 1e-6)
}

func TestMotorStatus1Decode(t *testing.T) {
	frame := can.NewFrame(0x241, 8)
	// 40 degrees, brake released, 48.2V, encoder calibration error
	frame.Data = [8]byte{0x9A, 40, 0, 1, 0xE2, 0x01, 0x00, 0x01}

	status := MotorStatus1{}
	assert.True(t, status.Matches(frame))
	status.UnmarshalFrame(frame)
	assert.Equal(t, uint32(1), status.NodeID())
	assert.Equal(t, int8(40), status.Temperature)
	assert.True(t, status.BrakeReleased)
	assert.InDelta(t, 48.2, status.Voltage, 1e-3)
	assert.Equal(t, uint16(0x100), status.ErrorState)
}

func TestMotorStatus2Decode(t *testing.T) {
	frame := can.NewFrame(0x243, 8)
	frame.Data = [8]byte{0x9C, 30, 0x9C, 0xFF, 0x68, 0x01, 0x2D, 0x00}

	status := MotorStatus2{}
	status.UnmarshalFrame(frame)
	assert.Equal(t, uint32(3), status.Node)
	assert.Equal(t, int8(30), status.Temperature)
	assert.InDelta(t, -1.0, status.TorqueCurrent, 1e-6)
	assert.Equal(t, int16(360), status.Speed)
	assert.Equal(t, int16(45), status.Angle)
}

func TestTorqueControlMarshal(t *testing.T) {
	msg := TorqueControl{Node: 2, TorqueCurrent: -1.5}
	payload := msg.MarshalPayload()
	assert.Equal(t, []byte{0xA1, 0, 0, 0, 0x6A, 0xFF, 0, 0}, payload)
}

func TestPositionControlRoundTrip(t *testing.T) {
	msg := PositionControl{Node: 4, Position: -90.5, MaxSpeed: 500}
	frame, err := motorcan.Marshal(msg)
	assert.Nil(t, err)
	assert.Equal(t, uint32(0x144), frame.ID)

	decoded := PositionControl{}
	decoded.UnmarshalFrame(frame)
	assert.Equal(t, msg, decoded)
}

func TestMultiTurnAngleDecode(t *testing.T) {
	frame := can.NewFrame(0x242, 8)
	frame.Data = [8]byte{0x92, 0, 0, 0, 0x4E, 0x61, 0xBC, 0x00}

	msg := MultiTurnAngle{}
	msg.UnmarshalFrame(frame)
	assert.InDelta(t, 123456.78, msg.Angle, 1e-2)
}

func TestOperatingModeDecode(t *testing.T) {
	frame := can.NewFrame(0x246, 8)
	frame.Data = [8]byte{0x70, 0, 0, 0, 0, 0, 0, 0x02}

	msg := OperatingModeQuery{}
	msg.UnmarshalFrame(frame)
	assert.Equal(t, OperatingModeSpeedLoop, msg.Mode)
	assert.Equal(t, "SPEED LOOP", msg.Mode.String())
}

func TestVersionDecode(t *testing.T) {
	frame := can.NewFrame(0x241, 8)
	// 2023-02-28 as a decimal date
	frame.Data = [8]byte{0xB2, 0, 0, 0, 0x54, 0xB0, 0x34, 0x01}

	msg := Version{}
	msg.UnmarshalFrame(frame)
	assert.Equal(t, uint32(20230228), msg.VersionDate)
}

func TestFunctionControlMarshal(t *testing.T) {
	msg := FunctionControl{Node: 1, Function: FunctionCanIdFilterEnable, Value: 0}
	payload := msg.MarshalPayload()
	assert.Equal(t, []byte{0x20, 0x02, 0, 0, 0, 0, 0, 0}, payload)
}

func TestCANIDCommandMarshal(t *testing.T) {
	read := CANIDCommand{Read: true}
	frame, err := motorcan.Marshal(read)
	assert.Nil(t, err)
	assert.Equal(t, uint32(0x300), frame.ID)
	assert.Equal(t, uint8(0x01), frame.Data[2])

	write := CANIDCommand{CANID: 64}
	assert.Equal(t, uint8(32), write.MarshalPayload()[7])
}

func TestCommandsDoNotCrossMatch(t *testing.T) {
	frame := can.NewFrame(0x245, 8)
	frame.Data[0] = 0xA2
	assert.False(t, MotorStatus1{}.Matches(frame))
	assert.False(t, TorqueControl{}.Matches(frame))

	// Outside the command and reply windows
	other := can.NewFrame(0x045, 8)
	other.Data[0] = 0xA2
	assert.False(t, SpeedControl{}.Matches(other))
}
