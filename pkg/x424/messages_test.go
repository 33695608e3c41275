package x424

import (
	"testing"

	"github.com/stretchr/testify/assert"

	motorcan "github.com/openbotics/gomotorcan"
	"github.com/openbotics/gomotorcan/pkg/can"
)

func TestSetCommunicationModeMarshal(t *testing.T) {
	msg := SetCommunicationMode{Node: 1, Mode: CommunicationModeQuestionAnswer}
	frame, err := motorcan.Marshal(msg)
	assert.Nil(t, err)
	assert.Equal(t, uint32(0x7FF), frame.ID)
	assert.Equal(t, uint8(4), frame.DLC)
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x02}, frame.Payload())
	assert.True(t, msg.Matches(frame))
}

func TestSetMotorIDMarshal(t *testing.T) {
	msg := SetMotorID{CurrentNode: 1, NewNode: 3}
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x04, 0x00, 0x03}, msg.MarshalPayload())
}

func TestResetMotorIDMarshal(t *testing.T) {
	assert.Equal(t, []byte{0x7F, 0x7F, 0x00, 0x05, 0x7F, 0x7F}, ResetMotorID{}.MarshalPayload())
}

func TestQueryRepliesAreDisambiguated(t *testing.T) {
	modeReply := can.NewFrame(0x7FF, 4)
	modeReply.Data = [8]byte{0x00, 0x05, 0x01, 0x01}
	idReply := can.NewFrame(0x7FF, 5)
	idReply.Data = [8]byte{0xFF, 0x00, 0x01, 0x00, 0x05}

	assert.True(t, QueryCommunicationMode{}.Matches(modeReply))
	assert.False(t, QueryCANID{}.Matches(modeReply))
	assert.True(t, QueryCANID{}.Matches(idReply))
	assert.False(t, QueryCommunicationMode{}.Matches(idReply))

	mode := QueryCommunicationMode{}
	mode.UnmarshalFrame(modeReply)
	assert.Equal(t, uint32(5), mode.Node)
	assert.Equal(t, CommunicationModeAutoReport, mode.Mode)

	canId := QueryCANID{}
	canId.UnmarshalFrame(idReply)
	assert.Equal(t, uint32(5), canId.Node)
}

func TestServoPositionControlMarshal(t *testing.T) {
	msg := ServoPositionControl{Node: 1, Position: 1.0, Speed: 100, CurrentLimit: 10, ReplyType: 2}
	frame, err := motorcan.Marshal(msg)
	assert.Nil(t, err)
	assert.Equal(t, uint32(1), frame.ID)
	assert.Equal(t, []byte{0x27, 0xF0, 0x00, 0x00, 0x00, 0x19, 0x01, 0x92}, frame.Payload())
}

func TestServoSpeedControlMarshal(t *testing.T) {
	msg := ServoSpeedControl{Node: 2, Speed: 1.0, CurrentLimit: 2.5, ReplyType: 1}
	assert.Equal(t, []byte{0x00, 0x41, 0x3F, 0x80, 0x00, 0x00, 0x00, 0x19}, msg.MarshalPayload())
}

func TestCurrentControlMarshal(t *testing.T) {
	msg := CurrentControl{Node: 3, Current: -1.0, ControlType: 1}
	payload := msg.MarshalPayload()
	assert.Equal(t, []byte{0x64, 0xFF, 0x9C}, payload)
}

func TestReply1Decode(t *testing.T) {
	frame := can.NewFrame(5, 8)
	frame.Data = [8]byte{0x22, 0x80, 0x00, 0xFF, 0xF0, 0x00, 0x82, 0x32}

	reply := Reply1{}
	assert.True(t, reply.Matches(frame))
	reply.UnmarshalFrame(frame)
	assert.Equal(t, uint32(5), reply.Node)
	assert.Equal(t, ErrorMotorOvercurrent, reply.MotorError)
	assert.InDelta(t, 0.0, reply.Position, 1e-4)
	assert.InDelta(t, 18.0, reply.Speed, 1e-4)
	assert.InDelta(t, -30.0, reply.Current, 1e-4)
	assert.InDelta(t, 40.0, reply.MotorTemp, 1e-4)
	assert.InDelta(t, 0.0, reply.MosTemp, 1e-4)
}

func TestReply2Decode(t *testing.T) {
	frame := can.NewFrame(2, 8)
	frame.Data = [8]byte{0x40, 0x00, 0x00, 0x60, 0x40, 0xFF, 0x06, 90}

	reply := Reply2{}
	assert.True(t, reply.Matches(frame))
	reply.UnmarshalFrame(frame)
	assert.InDelta(t, 3.5, reply.Position, 1e-6)
	// Current magnitude only
	assert.InDelta(t, 2.5, reply.Current, 1e-6)
	assert.InDelta(t, 20.0, reply.MotorTemp, 1e-6)
	assert.Equal(t, ErrorNone, reply.MotorError)
}

func TestReply4Decode(t *testing.T) {
	frame := can.NewFrame(1, 3)
	frame.Data = [8]byte{0x80, 0x03, 0x01}

	reply := Reply4{}
	assert.True(t, reply.Matches(frame))
	reply.UnmarshalFrame(frame)
	assert.Equal(t, uint8(3), reply.ConfigCode)
	assert.True(t, reply.ConfigStatus)
}

func TestReply5Decode(t *testing.T) {
	speed := can.NewFrame(1, 6)
	speed.Data = [8]byte{0xA0, 0x02, 0x00, 0x00, 0x60, 0x40}
	reply := Reply5{}
	assert.True(t, reply.Matches(speed))
	reply.UnmarshalFrame(speed)
	assert.Equal(t, uint8(2), reply.QueryCode)
	assert.InDelta(t, 3.5, reply.Speed, 1e-6)

	raw := can.NewFrame(1, 4)
	raw.Data = [8]byte{0xA0, 0x06, 0x01, 0x02}
	reply = Reply5{}
	reply.UnmarshalFrame(raw)
	assert.Equal(t, uint16(0x0102), reply.Uint16Value)
}

func TestRepliesDoNotCrossMatch(t *testing.T) {
	frame := can.NewFrame(5, 8)
	frame.Data[0] = 0x22
	assert.False(t, Reply2{}.Matches(frame))
	assert.False(t, Reply4{}.Matches(frame))

	// Config identifier never carries reply frames
	config := can.NewFrame(0x7FF, 8)
	config.Data[0] = 0x22
	assert.False(t, Reply1{}.Matches(config))
}
