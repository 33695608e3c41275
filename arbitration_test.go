package motorcan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openbotics/gomotorcan/pkg/can"
)

func TestODriveIDPacking(t *testing.T) {
	id := ODriveID{Node: 3, Cmd: 0x0D}
	assert.Equal(t, uint32(3<<5|0x0D), id.Value())
	assert.False(t, id.Extended())
	assert.Nil(t, id.Validate())

	parsed := ParseODriveID(id.Value())
	assert.Equal(t, id, parsed)
}

func TestODriveIDRanges(t *testing.T) {
	assert.ErrorIs(t, ODriveID{Node: 0x40}.Validate(), ErrNodeIdRange)
	assert.ErrorIs(t, ODriveID{Node: 1, Cmd: 0x20}.Validate(), ErrCommandRange)
	assert.Nil(t, ODriveID{Node: 0x3F, Cmd: 0x1F}.Validate())
}

func TestMyActuatorIDWindows(t *testing.T) {
	id := MyActuatorID{Node: 5, Cmd: 0xA2}
	assert.Equal(t, uint32(0x145), id.Value())
	assert.Nil(t, id.Validate())
	assert.ErrorIs(t, MyActuatorID{Node: 0x20}.Validate(), ErrNodeIdRange)

	assert.True(t, InMyActuatorWindow(0x140))
	assert.True(t, InMyActuatorWindow(0x25F))
	assert.False(t, InMyActuatorWindow(0x13F))
	assert.False(t, InMyActuatorWindow(0x160))
	assert.False(t, InMyActuatorWindow(0x260))
}

func TestMyActuatorIDCustomOverride(t *testing.T) {
	id := MyActuatorID{Node: 5, Cmd: 0x79, Custom: 0x300}
	assert.Equal(t, uint32(0x300), id.Value())
	assert.Nil(t, id.Validate())
	assert.ErrorIs(t, MyActuatorID{Custom: 0x800}.Validate(), ErrNodeIdRange)
}

func TestParseMyActuatorID(t *testing.T) {
	frame := can.NewFrame(0x245, 8)
	frame.Data[0] = 0x9A
	parsed := ParseMyActuatorID(frame)
	assert.Equal(t, uint32(5), parsed.Node)
	assert.Equal(t, uint8(0x9A), parsed.Cmd)

	command := can.NewFrame(0x141, 8)
	command.Data[0] = 0xA2
	assert.Equal(t, uint32(1), ParseMyActuatorID(command).Node)
}

func TestX424ID(t *testing.T) {
	id := X424ID{Node: 1, Cmd: 0x02}
	assert.Equal(t, uint32(1), id.Value())
	assert.Nil(t, id.Validate())
	assert.ErrorIs(t, X424ID{Node: 0x800}.Validate(), ErrNodeIdRange)

	frame := can.NewFrame(0x7FF, 4)
	frame.Data[0] = 0x00
	parsed := ParseX424ID(frame)
	assert.Equal(t, uint32(X424ConfigID), parsed.Node)
}
