package bridge

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/openmarine/picolink/pkg/device"
)

// Snapshot is the full mirrored state at one point in time, pushed to the
// KeySnapshots list as CBOR.
type Snapshot struct {
	Serial   uint32         `cbor:"serial"`
	Firmware string         `cbor:"firmware"`
	Taken    int64          `cbor:"taken"`
	Sensors  []SensorRecord `cbor:"sensors"`
}

// SensorRecord is one sensor's latest state inside a Snapshot.
type SensorRecord struct {
	SensorID int32   `cbor:"id"`
	Type     string  `cbor:"type"`
	Value    float64 `cbor:"value"`
	Unit     string  `cbor:"unit,omitempty"`
	Raw      uint32  `cbor:"raw"`
}

// buildSnapshot assembles a Snapshot from the enumerated inventory and the
// states seen so far. Sensors without a state yet are omitted.
func (s *Service) buildSnapshot(now time.Time) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{Taken: now.Unix()}
	if s.inv == nil {
		return snap
	}
	snap.Serial = s.inv.System.Serial
	snap.Firmware = fmt.Sprintf("%d.%d", s.inv.System.FirmwareMajor, s.inv.System.FirmwareMinor)
	for _, sensor := range s.inv.Sensors {
		state, ok := s.states[sensor.SensorID]
		if !ok {
			continue
		}
		value, unit := state.Value(sensor.Type)
		snap.Sensors = append(snap.Sensors, SensorRecord{
			SensorID: sensor.SensorID,
			Type:     sensor.Type.String(),
			Value:    value,
			Unit:     unit,
			Raw:      state.Raw.Uint32(),
		})
	}
	return snap
}

// Snapshot encodes the current state as CBOR and pushes it to Redis.
func (s *Service) Snapshot(now time.Time) error {
	data, err := cbor.Marshal(s.buildSnapshot(now))
	if err != nil {
		return fmt.Errorf("bridge: encode snapshot: %w", err)
	}
	return s.redis.LPush(KeySnapshots, data)
}

// RecordState injects a solicited state reading, for callers that poll
// over TCP instead of (or in addition to) listening for broadcasts.
func (s *Service) RecordState(state *device.State) error {
	return s.publishState(state)
}
