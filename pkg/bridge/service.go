// Package bridge binds a Pico session to Redis: it enumerates the device
// once, then mirrors sensor-state broadcasts into hashes with pub/sub
// notifications and periodically pushes CBOR snapshots for consumers that
// want the whole picture at once.
package bridge

import (
	"fmt"
	"log"
	"sync"

	"github.com/openmarine/picolink/pkg/client"
	"github.com/openmarine/picolink/pkg/device"
	"github.com/openmarine/picolink/pkg/pico"
	redisclient "github.com/openmarine/picolink/pkg/redis"
	"github.com/openmarine/picolink/pkg/transport"
)

// Redis keys
const (
	KeySystem          = "pico:system"
	KeyDevicePrefix    = "pico:device:"
	KeySensorPrefix    = "pico:sensor:"
	KeySnapshots       = "pico:snapshots"
)

// Service mirrors one Pico into Redis.
type Service struct {
	sess  *client.Session
	redis *redisclient.Client

	mu     sync.Mutex
	inv    *client.Inventory
	states map[int32]*device.State

	stopCh chan struct{}
}

// New creates a new Service instance.
func New(sess *client.Session, redis *redisclient.Client) *Service {
	return &Service{
		sess:   sess,
		redis:  redis,
		states: make(map[int32]*device.State),
		stopCh: make(chan struct{}),
	}
}

// Stop marks the service as stopping. It does not unblock a pending
// MirrorBroadcasts; closing the listener does, and after Stop that loop
// then returns nil instead of the listener error.
func (s *Service) Stop() {
	close(s.stopCh)
}

// Enumerate runs the startup sequence against the device and writes the
// system and descriptor tables to Redis.
func (s *Service) Enumerate() error {
	inv, err := s.sess.Enumerate()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.inv = inv
	s.mu.Unlock()

	if err := s.redis.WriteAndPublishString(KeySystem, "serial", fmt.Sprintf("0x%08x", inv.System.Serial)); err != nil {
		return fmt.Errorf("bridge: publish system info: %w", err)
	}
	firmware := fmt.Sprintf("%d.%d", inv.System.FirmwareMajor, inv.System.FirmwareMinor)
	if err := s.redis.WriteAndPublishString(KeySystem, "firmware", firmware); err != nil {
		return fmt.Errorf("bridge: publish system info: %w", err)
	}

	for _, dev := range inv.Devices {
		key := fmt.Sprintf("%s%d", KeyDevicePrefix, dev.DeviceID)
		if err := s.redis.WriteString(key, "type", dev.Type.String()); err != nil {
			return fmt.Errorf("bridge: publish device %d: %w", dev.DeviceID, err)
		}
		if err := s.redis.WriteString(key, "name", dev.Name); err != nil {
			return fmt.Errorf("bridge: publish device %d: %w", dev.DeviceID, err)
		}
		log.Printf("Device %v", dev)
	}
	for _, sensor := range inv.Sensors {
		key := fmt.Sprintf("%s%d", KeySensorPrefix, sensor.SensorID)
		if err := s.redis.WriteString(key, "type", sensor.Type.String()); err != nil {
			return fmt.Errorf("bridge: publish sensor %d: %w", sensor.SensorID, err)
		}
		if err := s.redis.WriteAndPublishInt(key, "device", int64(sensor.DeviceID)); err != nil {
			return fmt.Errorf("bridge: publish sensor %d: %w", sensor.SensorID, err)
		}
		log.Printf("Sensor %v", sensor)
	}
	return nil
}

// MirrorBroadcasts consumes SENSOR_STATE broadcasts from the listener and
// publishes projected values until the listener fails (for example because
// it was closed); the failure is returned as nil if Stop was called first.
// Non-state broadcasts are ignored; the device also announces itself this
// way and those frames carry nothing to mirror.
func (s *Service) MirrorBroadcasts(listener *transport.UDP) error {
	for {
		addr, msg, err := listener.Next()
		if err != nil {
			select {
			case <-s.stopCh:
				return nil
			default:
				return fmt.Errorf("bridge: broadcast listener: %w", err)
			}
		}
		if msg.Type != pico.TypeSensorState {
			log.Printf("Ignoring %v broadcast from %s", msg.Type, addr)
			continue
		}
		state, err := device.ProjectState(msg)
		if err != nil {
			continue
		}
		if err := s.publishState(state); err != nil {
			log.Printf("Error publishing sensor %d state: %v", state.SensorID, err)
		}
	}
}

// publishState records the state and mirrors its projected value.
func (s *Service) publishState(state *device.State) error {
	s.mu.Lock()
	s.states[state.SensorID] = state
	inv := s.inv
	s.mu.Unlock()

	key := fmt.Sprintf("%s%d", KeySensorPrefix, state.SensorID)
	sensType := device.SensorNone
	if inv != nil {
		if sensor, ok := inv.SensorByID(state.SensorID); ok {
			sensType = sensor.Type
		}
	}
	value, unit := state.Value(sensType)
	if err := s.redis.WriteAndPublishFloat(key, "value", value); err != nil {
		return err
	}
	if err := s.redis.WriteString(key, "unit", unit); err != nil {
		return err
	}
	return s.redis.WriteAndPublishInt(key, "raw", int64(state.Raw.Int32()))
}
