package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmarine/picolink/pkg/pico"
)

func TestProjectSystemInfo(t *testing.T) {
	msg := &pico.Message{
		Type:   pico.TypeSystemInfo,
		Serial: 0x84B3EE93,
		Fields: []pico.Field{
			{ID: 1, Type: pico.FieldInt, Value: pico.IntValue{Raw: pico.RawIntFrom32(0x84B3EE93)}},
			{ID: 2, Type: pico.FieldInt, Value: pico.IntValue{Raw: pico.RawInt{0x00, 0x01, 0x00, 0x15}}},
		},
	}
	info, err := ProjectSystemInfo(msg)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x84B3EE93), info.Serial)
	assert.Equal(t, int16(1), info.FirmwareMajor)
	assert.Equal(t, int16(21), info.FirmwareMinor)
}

func TestProjectRejectsWrongType(t *testing.T) {
	msg := &pico.Message{Type: pico.TypeSensorState}
	_, err := ProjectSystemInfo(msg)
	assert.ErrorIs(t, err, ErrWrongMessage)
}

func TestProjectCount(t *testing.T) {
	msg := &pico.Message{
		Type: pico.TypeDeviceSensorCount,
		Fields: []pico.Field{
			{ID: 1, Type: pico.FieldInt, Value: pico.IntValue{Raw: pico.RawIntFrom32(4)}},
			{ID: 2, Type: pico.FieldInt, Value: pico.IntValue{Raw: pico.RawIntFrom32(12)}},
		},
	}
	count, err := ProjectCount(msg)
	require.NoError(t, err)
	assert.Equal(t, int32(4), count.LastDeviceID)
	assert.Equal(t, int32(12), count.LastSensorID)
}

// A timestamped field id 1 supplies the creation time and, with no plain
// id-1 field present, the device type; text field 3 is the name and the
// unrecognized remainder is preserved in order.
func TestProjectInfo(t *testing.T) {
	msg := &pico.Message{
		Type: pico.TypeDeviceInfo,
		Fields: []pico.Field{
			{ID: 0, Type: pico.FieldInt, Value: pico.IntValue{Raw: pico.RawIntFrom32(1)}},
			{ID: 1, Type: pico.FieldTimedInt, Value: pico.TimedInt{Stamp: 1700000000, Raw: pico.RawIntFrom32(9)}},
			{ID: 3, Type: pico.FieldTimedText, Value: pico.TimedText{Stamp: 1700000000, Text: "Battery 1"}},
			{ID: 9, Type: pico.FieldInt, Value: pico.IntValue{Raw: pico.RawIntFrom32(77)}},
		},
	}
	info, err := ProjectInfo(msg)
	require.NoError(t, err)
	assert.Equal(t, int32(1), info.DeviceID)
	assert.Equal(t, uint32(1700000000), info.CreatedAt)
	assert.Equal(t, DeviceBattery, info.Type)
	assert.Equal(t, "Battery 1", info.Name)
	require.Len(t, info.Extra, 1)
	assert.Equal(t, uint8(9), info.Extra[0].ID)
}

func TestProjectInfoPlainTypeOverridesTimed(t *testing.T) {
	msg := &pico.Message{
		Type: pico.TypeDeviceInfo,
		Fields: []pico.Field{
			{ID: 1, Type: pico.FieldTimedInt, Value: pico.TimedInt{Stamp: 1700000000, Raw: pico.RawIntFrom32(0)}},
			{ID: 1, Type: pico.FieldInt, Value: pico.IntValue{Raw: pico.RawIntFrom32(8)}},
		},
	}
	info, err := ProjectInfo(msg)
	require.NoError(t, err)
	assert.Equal(t, uint32(1700000000), info.CreatedAt)
	assert.Equal(t, DeviceTank, info.Type)
}

// An untagged int32 in field 3 is not guessed at; it stays raw in Extra.
func TestProjectInfoIntNameStaysRaw(t *testing.T) {
	raw := pico.RawInt{0x00, 0x00, 0x00, 0x2A}
	msg := &pico.Message{
		Type: pico.TypeDeviceInfo,
		Fields: []pico.Field{
			{ID: 3, Type: pico.FieldInt, Value: pico.IntValue{Raw: raw}},
		},
	}
	info, err := ProjectInfo(msg)
	require.NoError(t, err)
	assert.Empty(t, info.Name)
	require.Len(t, info.Extra, 1)
	assert.Equal(t, pico.IntValue{Raw: raw}, info.Extra[0].Value)
}

func TestProjectSensorInfo(t *testing.T) {
	msg := &pico.Message{
		Type: pico.TypeSensorInfo,
		Fields: []pico.Field{
			{ID: 0, Type: pico.FieldInt, Value: pico.IntValue{Raw: pico.RawIntFrom32(3)}},
			{ID: 1, Type: pico.FieldInt, Value: pico.IntValue{Raw: pico.RawIntFrom32(1)}},
			{ID: 2, Type: pico.FieldInt, Value: pico.IntValue{Raw: pico.RawIntFrom32(2)}},
			{ID: 3, Type: pico.FieldInt, Value: pico.IntValue{Raw: pico.RawIntFrom32(0)}},
		},
	}
	info, err := ProjectSensorInfo(msg)
	require.NoError(t, err)
	assert.Equal(t, int32(3), info.SensorID)
	assert.Equal(t, SensorVoltage, info.Type)
	assert.Equal(t, int32(2), info.DeviceID)
	assert.Equal(t, int32(0), info.DeviceSensorID)
	assert.Empty(t, info.Extra)
}

func TestProjectState(t *testing.T) {
	msg := &pico.Message{
		Type: pico.TypeSensorState,
		Fields: []pico.Field{
			{ID: 1, Type: pico.FieldInt, Value: pico.IntValue{Raw: pico.RawIntFrom32(3)}},
			{ID: 2, Type: pico.FieldInt, Value: pico.IntValue{Raw: pico.RawInt{0x00, 0x00, 0x31, 0x2D}}},
		},
	}
	state, err := ProjectState(msg)
	require.NoError(t, err)
	assert.Equal(t, int32(3), state.SensorID)

	value, unit := state.Value(SensorVoltage)
	assert.InDelta(t, 12.589, value, 1e-9)
	assert.Equal(t, "V", unit)
}

func TestProjectDispatch(t *testing.T) {
	state, err := Project(&pico.Message{Type: pico.TypeSensorState})
	require.NoError(t, err)
	assert.IsType(t, &State{}, state)

	// Unknown types pass through untouched.
	unknown := &pico.Message{Type: pico.MessageType(0x7E)}
	got, err := Project(unknown)
	require.NoError(t, err)
	assert.Same(t, unknown, got)
}
