package client

import (
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/openmarine/picolink/pkg/device"
	"github.com/openmarine/picolink/pkg/pico"
	"github.com/openmarine/picolink/pkg/transport"
)

// Session is a scoped TCP control session with one Pico. Requests set
// serial 0, carry the target id where the operation needs one, and are
// issued one at a time. Close releases the socket; callers defer it.
type Session struct {
	tcp *transport.TCP
}

// Connect opens a control session to a discovered (or known) host.
func Connect(host string, tcpPort int, timeout time.Duration) (*Session, error) {
	tcp, err := transport.DialTCP(net.JoinHostPort(host, strconv.Itoa(tcpPort)), timeout)
	if err != nil {
		return nil, err
	}
	return &Session{tcp: tcp}, nil
}

// Dial discovers a Pico on the network and connects to it.
func Dial(udpPort, tcpPort int, timeout time.Duration) (*Session, error) {
	host, err := Discover(udpPort, timeout)
	if err != nil {
		return nil, err
	}
	return Connect(host, tcpPort, timeout)
}

// Close ends the session.
func (s *Session) Close() error {
	return s.tcp.Close()
}

// SystemInfo requests the device serial and firmware version.
func (s *Session) SystemInfo() (*device.SystemInfo, error) {
	resp, err := s.tcp.Request(&pico.Message{Type: pico.TypeSystemInfo}, pico.TypeSystemInfo)
	if err != nil {
		return nil, err
	}
	return device.ProjectSystemInfo(resp)
}

// Count requests the highest assigned device and sensor ids.
func (s *Session) Count() (*device.DeviceSensorCount, error) {
	resp, err := s.tcp.Request(&pico.Message{Type: pico.TypeDeviceSensorCount}, pico.TypeDeviceSensorCount)
	if err != nil {
		return nil, err
	}
	return device.ProjectCount(resp)
}

// idRequest builds the request shape shared by the per-id operations:
// field 0 names the entry being asked about.
func idRequest(t pico.MessageType, id int32) *pico.Message {
	return &pico.Message{
		Type: t,
		Fields: []pico.Field{
			{ID: 0, Type: pico.FieldInt, Value: pico.IntValue{Raw: pico.RawIntFrom32(uint32(id))}},
		},
	}
}

// DeviceInfo requests the descriptor of one device.
func (s *Session) DeviceInfo(id int32) (*device.Info, error) {
	resp, err := s.tcp.Request(idRequest(pico.TypeDeviceInfo, id), pico.TypeDeviceInfo)
	if err != nil {
		return nil, err
	}
	return device.ProjectInfo(resp)
}

// SensorInfo requests the descriptor of one sensor.
func (s *Session) SensorInfo(id int32) (*device.SensorInfo, error) {
	resp, err := s.tcp.Request(idRequest(pico.TypeSensorInfo, id), pico.TypeSensorInfo)
	if err != nil {
		return nil, err
	}
	return device.ProjectSensorInfo(resp)
}

// SensorState requests the current raw state of one sensor.
func (s *Session) SensorState(id int32) (*device.State, error) {
	resp, err := s.tcp.Request(idRequest(pico.TypeSensorState, id), pico.TypeSensorState)
	if err != nil {
		return nil, err
	}
	return device.ProjectState(resp)
}

// Inventory is the result of a full enumeration.
type Inventory struct {
	System  *device.SystemInfo
	Devices []*device.Info
	Sensors []*device.SensorInfo
}

// SensorByID finds a sensor descriptor in the inventory.
func (inv *Inventory) SensorByID(id int32) (*device.SensorInfo, bool) {
	for _, s := range inv.Sensors {
		if s.SensorID == id {
			return s, true
		}
	}
	return nil, false
}

// Enumerate runs the full startup sequence: system info, counts, then one
// descriptor request per device and per sensor. Ids are assigned densely
// from zero up to the reported last id.
func (s *Session) Enumerate() (*Inventory, error) {
	system, err := s.SystemInfo()
	if err != nil {
		return nil, fmt.Errorf("client: system info: %w", err)
	}
	count, err := s.Count()
	if err != nil {
		return nil, fmt.Errorf("client: device/sensor count: %w", err)
	}
	log.Printf("Enumerating %s: %d devices, %d sensors", system, count.LastDeviceID+1, count.LastSensorID+1)

	inv := &Inventory{System: system}
	for id := int32(0); id <= count.LastDeviceID; id++ {
		info, err := s.DeviceInfo(id)
		if err != nil {
			return nil, fmt.Errorf("client: device %d: %w", id, err)
		}
		inv.Devices = append(inv.Devices, info)
	}
	for id := int32(0); id <= count.LastSensorID; id++ {
		info, err := s.SensorInfo(id)
		if err != nil {
			return nil, fmt.Errorf("client: sensor %d: %w", id, err)
		}
		inv.Sensors = append(inv.Sensors, info)
	}
	return inv, nil
}
