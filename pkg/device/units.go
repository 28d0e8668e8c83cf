package device

import "github.com/openmarine/picolink/pkg/pico"

// Convert projects a raw sensor state into a physical value and its unit.
// The view of the four raw bytes (signed, unsigned, halves) is fixed per
// sensor type; types without a known conversion report the signed 32-bit
// value with an empty unit.
func (t SensorType) Convert(raw pico.RawInt) (float64, string) {
	switch t {
	case SensorVoltage:
		return float64(raw.Int32()) / 1000, "V"
	case SensorCurrent:
		return float64(raw.Int32()) / 100, "A"
	case SensorCoulombCounter:
		return float64(raw.Int32()) / 1000, "Ah"
	case SensorTemperature:
		return float64(raw.Int32()) / 10, "°C"
	case SensorAtmosphere:
		return float64(raw.Int32()) / 100, "mbar"
	case SensorAtmosphereTrend:
		return float64(raw.Int32()) / 10, "mbar/h"
	case SensorResistance:
		return float64(raw.Int32()), "Ω"
	case SensorTimestamp:
		return float64(raw.Uint32()), "s"
	case SensorStateOfCharge:
		// Only the high half carries the charge; the low half is reserved
		// and stays accessible through the raw state.
		hi, _ := raw.Halves()
		return float64(hi) / 160, "%"
	case SensorRemainingTime:
		return float64(raw.Int32()), "s"
	case SensorAngle:
		return float64(raw.Int32()) / 10, "°"
	}
	return float64(raw.Int32()), ""
}
