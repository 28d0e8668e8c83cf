package device

import (
	"errors"
	"fmt"

	"github.com/openmarine/picolink/pkg/pico"
)

// ErrWrongMessage is returned when a message is projected through a view
// that does not match its type code.
var ErrWrongMessage = errors.New("device: message type mismatch")

// SystemInfo is the projection of a SYSTEM_INFO response.
type SystemInfo struct {
	Serial         uint32
	FirmwareMajor  int16
	FirmwareMinor  int16
}

func (s *SystemInfo) String() string {
	return fmt.Sprintf("system{serial=0x%08x, firmware=%d.%d}", s.Serial, s.FirmwareMajor, s.FirmwareMinor)
}

// DeviceSensorCount is the projection of a DEVICE_SENSOR_COUNT response.
// The firmware reports the highest assigned ids, not totals.
type DeviceSensorCount struct {
	LastDeviceID int32
	LastSensorID int32
}

// Info is the projection of a DEVICE_INFO response.
type Info struct {
	DeviceID  int32
	CreatedAt uint32
	Type      DeviceType
	// Name is the user-assigned name or role string. The wire can also
	// carry field id 3 as an untagged int32; in that case Name stays empty
	// and the raw field is preserved under Extra.
	Name  string
	Extra []pico.Field
}

func (i *Info) String() string {
	return fmt.Sprintf("device{id=%d, %v, %q}", i.DeviceID, i.Type, i.Name)
}

// SensorInfo is the projection of a SENSOR_INFO response.
type SensorInfo struct {
	SensorID int32
	Type     SensorType
	// DeviceID and DeviceSensorID locate the sensor within its device.
	DeviceID       int32
	DeviceSensorID int32
	Extra          []pico.Field
}

func (s *SensorInfo) String() string {
	return fmt.Sprintf("sensor{id=%d, %v, device=%d/%d}", s.SensorID, s.Type, s.DeviceID, s.DeviceSensorID)
}

// State is the projection of a SENSOR_STATE message, solicited or broadcast.
type State struct {
	SensorID int32
	Raw      pico.RawInt
}

// Value converts the raw state through the sensor's type.
func (s *State) Value(t SensorType) (float64, string) {
	return t.Convert(s.Raw)
}

// rawInt extracts the integer bytes from a field regardless of whether it
// was sent plain or timestamped.
func rawInt(f pico.Field) (pico.RawInt, bool) {
	switch v := f.Value.(type) {
	case pico.IntValue:
		return v.Raw, true
	case pico.TimedInt:
		return v.Raw, true
	}
	return pico.RawInt{}, false
}

func firstRawInt(m *pico.Message, id uint8) (pico.RawInt, bool) {
	for _, f := range m.Fields {
		if f.ID != id {
			continue
		}
		if raw, ok := rawInt(f); ok {
			return raw, true
		}
	}
	return pico.RawInt{}, false
}

// ProjectSystemInfo reads the device serial (field 1) and the firmware
// version (field 2, major.minor as 16-bit halves).
func ProjectSystemInfo(m *pico.Message) (*SystemInfo, error) {
	if m.Type != pico.TypeSystemInfo {
		return nil, fmt.Errorf("%v is not SYSTEM_INFO: %w", m.Type, ErrWrongMessage)
	}
	var info SystemInfo
	if raw, ok := firstRawInt(m, 1); ok {
		info.Serial = raw.Uint32()
	}
	if raw, ok := firstRawInt(m, 2); ok {
		info.FirmwareMajor, info.FirmwareMinor = raw.Halves()
	}
	return &info, nil
}

// ProjectCount reads the last device id (field 1) and last sensor id (field 2).
func ProjectCount(m *pico.Message) (*DeviceSensorCount, error) {
	if m.Type != pico.TypeDeviceSensorCount {
		return nil, fmt.Errorf("%v is not DEVICE_SENSOR_COUNT: %w", m.Type, ErrWrongMessage)
	}
	var count DeviceSensorCount
	if raw, ok := firstRawInt(m, 1); ok {
		count.LastDeviceID = raw.Int32()
	}
	if raw, ok := firstRawInt(m, 2); ok {
		count.LastSensorID = raw.Int32()
	}
	return &count, nil
}

// ProjectInfo reads a device descriptor. Field 0 is the device id. Field 1
// appears twice: timestamped (creation time) and plain (device type); both
// occurrences are honored in wire order. Field 3 carries the name when it
// is text; an int32 variant is kept raw under Extra.
func ProjectInfo(m *pico.Message) (*Info, error) {
	if m.Type != pico.TypeDeviceInfo {
		return nil, fmt.Errorf("%v is not DEVICE_INFO: %w", m.Type, ErrWrongMessage)
	}
	info := Info{DeviceID: -1}
	haveType := false
	for _, f := range m.Fields {
		switch f.ID {
		case 0:
			if raw, ok := rawInt(f); ok {
				info.DeviceID = raw.Int32()
				continue
			}
		case 1:
			if v, ok := f.Value.(pico.TimedInt); ok {
				if info.CreatedAt == 0 {
					info.CreatedAt = v.Stamp
				}
				if !haveType {
					info.Type = DeviceType(v.Raw.Int32())
					haveType = true
				}
				continue
			}
			if v, ok := f.Value.(pico.IntValue); ok {
				info.Type = DeviceType(v.Raw.Int32())
				haveType = true
				continue
			}
		case 3:
			if v, ok := f.Value.(pico.TimedText); ok {
				if info.CreatedAt == 0 {
					info.CreatedAt = v.Stamp
				}
				info.Name = v.Text
				continue
			}
		}
		info.Extra = append(info.Extra, f)
	}
	return &info, nil
}

// ProjectSensorInfo reads a sensor descriptor: sensor id (field 0), sensor
// type (field 1), owning device id (field 2) and the index of the sensor
// within that device (field 3).
func ProjectSensorInfo(m *pico.Message) (*SensorInfo, error) {
	if m.Type != pico.TypeSensorInfo {
		return nil, fmt.Errorf("%v is not SENSOR_INFO: %w", m.Type, ErrWrongMessage)
	}
	info := SensorInfo{SensorID: -1}
	for _, f := range m.Fields {
		raw, ok := rawInt(f)
		if ok {
			switch f.ID {
			case 0:
				info.SensorID = raw.Int32()
				continue
			case 1:
				info.Type = SensorType(raw.Int32())
				continue
			case 2:
				info.DeviceID = raw.Int32()
				continue
			case 3:
				info.DeviceSensorID = raw.Int32()
				continue
			}
		}
		info.Extra = append(info.Extra, f)
	}
	return &info, nil
}

// ProjectState reads a sensor state update: sensor id (field 1) and the
// raw 32-bit state (field 2). The raw bytes are kept; conversion to a
// physical value is the caller's choice via the sensor's type.
func ProjectState(m *pico.Message) (*State, error) {
	if m.Type != pico.TypeSensorState {
		return nil, fmt.Errorf("%v is not SENSOR_STATE: %w", m.Type, ErrWrongMessage)
	}
	var state State
	if raw, ok := firstRawInt(m, 1); ok {
		state.SensorID = raw.Int32()
	}
	if raw, ok := firstRawInt(m, 2); ok {
		state.Raw = raw
	}
	return &state, nil
}

// Project dispatches a message through the registry of known type codes.
// Unknown types are returned as-is: the protocol treats them as opaque.
func Project(m *pico.Message) (interface{}, error) {
	switch m.Type {
	case pico.TypeSystemInfo:
		return ProjectSystemInfo(m)
	case pico.TypeDeviceSensorCount:
		return ProjectCount(m)
	case pico.TypeDeviceInfo:
		return ProjectInfo(m)
	case pico.TypeSensorInfo:
		return ProjectSensorInfo(m)
	case pico.TypeSensorState:
		return ProjectState(m)
	}
	return m, nil
}
