package odrive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	motorcan "github.com/openbotics/gomotorcan"
	"github.com/openbotics/gomotorcan/pkg/can"
)

func TestHeartbeatDecode(t *testing.T) {
	frame := can.NewFrame(3<<5|0x01, 7)
	// axis_error = 0, axis_state = closed loop, procedure ok, trajectory done
	frame.Data = [8]byte{0, 0, 0, 0, 8, 0, 1, 0}

	hb := Heartbeat{}
	assert.True(t, hb.Matches(frame))
	hb.UnmarshalFrame(frame)
	assert.Equal(t, uint32(3), hb.NodeID())
	assert.Equal(t, AxisStateClosedLoopControl, hb.AxisState)
	assert.Equal(t, DriveError(0), hb.AxisError)
	assert.True(t, hb.TrajectoryDone)
}

func TestHeartbeatShortPayload(t *testing.T) {
	frame := can.NewFrame(3<<5|0x01, 4)
	frame.Data = [8]byte{0xFF, 0xFF, 0xFF, 0xFF}
	hb := Heartbeat{}
	hb.UnmarshalFrame(frame)
	// Fields stay zero valued, node is still recovered
	assert.Equal(t, uint32(3), hb.Node)
	assert.Equal(t, AxisStateUndefined, hb.AxisState)
	assert.False(t, hb.TrajectoryDone)
}

func TestHeartbeatDoesNotMatchOtherCommands(t *testing.T) {
	hb := Heartbeat{}
	assert.False(t, hb.Matches(can.NewFrame(3<<5|0x09, 8)))
	assert.False(t, hb.Matches(can.Frame{ID: 3<<5 | 0x01, DLC: 7, Extended: true}))
}

func TestSetVelocityMarshal(t *testing.T) {
	msg := SetVelocity{Node: 2, Velocity: 1.5, TorqueFF: 0}
	frame, err := motorcan.Marshal(msg)
	assert.Nil(t, err)
	assert.Equal(t, uint32(2<<5|0x0D), frame.ID)
	assert.Equal(t, uint8(8), frame.DLC)

	decoded := SetVelocity{}
	decoded.UnmarshalFrame(frame)
	assert.Equal(t, msg, decoded)
}

func TestSetPositionRoundTrip(t *testing.T) {
	msg := SetPosition{Node: 6, InputPosition: -3.25, VelocityFF: -100, TorqueFF: 42}
	frame, err := motorcan.Marshal(msg)
	assert.Nil(t, err)
	decoded := SetPosition{}
	decoded.UnmarshalFrame(frame)
	assert.Equal(t, msg, decoded)
}

func TestParameterSiblingsAreExclusive(t *testing.T) {
	read := motorcan.ODriveID{Node: 1, Cmd: cmdRWParameter}
	readFrame := can.NewFrame(read.Value(), 4)
	readFrame.Data[0] = 0
	writeFrame := can.NewFrame(read.Value(), 8)
	writeFrame.Data[0] = 1

	assert.True(t, ReadParameter{}.Matches(readFrame))
	assert.False(t, WriteParameter{}.Matches(readFrame))
	assert.True(t, WriteParameter{}.Matches(writeFrame))
	assert.False(t, ReadParameter{}.Matches(writeFrame))
}

func TestReadParameterPayload(t *testing.T) {
	msg := ReadParameter{Node: 4, EndpointID: 0x0203}
	assert.Equal(t, []byte{0x00, 0x03, 0x02, 0x00}, msg.MarshalPayload())
}

func TestWriteParameterFloat32(t *testing.T) {
	msg := WriteParameterFloat32(4, 0x0010, 1.0)
	payload := msg.MarshalPayload()
	assert.Equal(t, uint8(1), payload[0])
	assert.Equal(t, 8, len(payload))
	assert.Equal(t, []byte{0x10, 0x00}, payload[1:3])
}

func TestErrorReportDecode(t *testing.T) {
	id := motorcan.ODriveID{Node: 5, Cmd: cmdError}
	frame := can.NewFrame(id.Value(), 8)
	frame.Data = [8]byte{0x20, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00}
	report := ErrorReport{}
	report.UnmarshalFrame(frame)
	assert.Equal(t, []DriveError{ErrorDrvFault, ErrorPositionLimitViolation}, report.ActiveErrors.List())
	assert.Empty(t, report.DisarmReason.List())
}

func TestInvalidNodeRejected(t *testing.T) {
	_, err := motorcan.Marshal(EStop{Node: 0x40})
	assert.ErrorIs(t, err, motorcan.ErrNodeIdRange)
}

func TestGetVersionDecode(t *testing.T) {
	frame := can.NewFrame(7<<5|0x00, 8)
	frame.Data = [8]byte{2, 3, 6, 1, 0, 6, 9, 0}
	v := GetVersion{}
	v.UnmarshalFrame(frame)
	assert.Equal(t, "3.6.1", v.HwVersion())
	assert.Equal(t, "0.6.9", v.FwVersion())
}
