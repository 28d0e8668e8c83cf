package bridge

import (
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmarine/picolink/pkg/client"
	"github.com/openmarine/picolink/pkg/device"
	"github.com/openmarine/picolink/pkg/pico"
)

func testService() *Service {
	svc := New(nil, nil)
	svc.inv = &client.Inventory{
		System: &device.SystemInfo{Serial: 0x84B3EE93, FirmwareMajor: 1, FirmwareMinor: 21},
		Sensors: []*device.SensorInfo{
			{SensorID: 0, Type: device.SensorVoltage, DeviceID: 1},
			{SensorID: 1, Type: device.SensorStateOfCharge, DeviceID: 1},
		},
	}
	return svc
}

func TestBuildSnapshot(t *testing.T) {
	svc := testService()
	svc.states[0] = &device.State{SensorID: 0, Raw: pico.RawIntFrom32(12589)}

	snap := svc.buildSnapshot(time.Unix(1700000000, 0))
	assert.Equal(t, uint32(0x84B3EE93), snap.Serial)
	assert.Equal(t, "1.21", snap.Firmware)
	assert.Equal(t, int64(1700000000), snap.Taken)

	// Sensor 1 has no state yet and is omitted.
	require.Len(t, snap.Sensors, 1)
	rec := snap.Sensors[0]
	assert.Equal(t, int32(0), rec.SensorID)
	assert.Equal(t, "voltage", rec.Type)
	assert.InDelta(t, 12.589, rec.Value, 1e-9)
	assert.Equal(t, "V", rec.Unit)
	assert.Equal(t, uint32(12589), rec.Raw)
}

func TestSnapshotCBORRoundTrip(t *testing.T) {
	svc := testService()
	svc.states[0] = &device.State{SensorID: 0, Raw: pico.RawIntFrom32(12589)}
	svc.states[1] = &device.State{SensorID: 1, Raw: pico.RawInt{0x3E, 0x80, 0x00, 0x00}}

	snap := svc.buildSnapshot(time.Unix(1700000000, 0))
	data, err := cbor.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, cbor.Unmarshal(data, &decoded))
	assert.Equal(t, *snap, decoded)
}

func TestBuildSnapshotBeforeEnumeration(t *testing.T) {
	svc := New(nil, nil)
	snap := svc.buildSnapshot(time.Unix(1700000000, 0))
	assert.Zero(t, snap.Serial)
	assert.Empty(t, snap.Sensors)
}
