// Package device maps decoded Pico messages onto the device and sensor
// model the firmware exposes: descriptor tables, type enums and the
// raw-state to physical-unit conversions.
package device

import "fmt"

// DeviceType classifies a device entry in the Pico's device table.
type DeviceType int32

const (
	DeviceNull         DeviceType = 0
	DeviceVoltmeter    DeviceType = 1
	DeviceAmperemeter  DeviceType = 2
	DeviceThermometer  DeviceType = 3
	DeviceBarometer    DeviceType = 5
	DeviceOhmmeter     DeviceType = 6
	DeviceTime         DeviceType = 7
	DeviceTank         DeviceType = 8
	DeviceBattery      DeviceType = 9
	DeviceSystem       DeviceType = 10
	DeviceInclinometer DeviceType = 13
)

func (t DeviceType) String() string {
	switch t {
	case DeviceNull:
		return "null"
	case DeviceVoltmeter:
		return "voltmeter"
	case DeviceAmperemeter:
		return "amperemeter"
	case DeviceThermometer:
		return "thermometer"
	case DeviceBarometer:
		return "barometer"
	case DeviceOhmmeter:
		return "ohmmeter"
	case DeviceTime:
		return "time"
	case DeviceTank:
		return "tank"
	case DeviceBattery:
		return "battery"
	case DeviceSystem:
		return "system"
	case DeviceInclinometer:
		return "inclinometer"
	}
	return fmt.Sprintf("device-type(%d)", int32(t))
}

// SensorType classifies a sensor entry and selects its unit conversion.
type SensorType int32

const (
	SensorNone            SensorType = 0
	SensorVoltage         SensorType = 1
	SensorCurrent         SensorType = 2
	SensorCoulombCounter  SensorType = 3
	SensorTemperature     SensorType = 4
	SensorAtmosphere      SensorType = 5
	SensorAtmosphereTrend SensorType = 6
	SensorResistance      SensorType = 7
	SensorTimestamp       SensorType = 10
	SensorStateOfCharge   SensorType = 11
	SensorRemainingTime   SensorType = 13
	SensorAngle           SensorType = 16
	SensorUser            SensorType = 22
)

func (t SensorType) String() string {
	switch t {
	case SensorNone:
		return "none"
	case SensorVoltage:
		return "voltage"
	case SensorCurrent:
		return "current"
	case SensorCoulombCounter:
		return "coulomb-counter"
	case SensorTemperature:
		return "temperature"
	case SensorAtmosphere:
		return "atmosphere"
	case SensorAtmosphereTrend:
		return "atmosphere-trend"
	case SensorResistance:
		return "resistance"
	case SensorTimestamp:
		return "timestamp"
	case SensorStateOfCharge:
		return "state-of-charge"
	case SensorRemainingTime:
		return "remaining-time"
	case SensorAngle:
		return "angle"
	case SensorUser:
		return "user"
	}
	return fmt.Sprintf("sensor-type(%d)", int32(t))
}
