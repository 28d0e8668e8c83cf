package pico

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// FieldType selects the wire encoding of a field's data. There is no length
// prefix; the length is implied by the type, which is why unknown types end
// field iteration (see DecodeFields).
type FieldType uint8

const (
	FieldInt        FieldType = 0x01
	FieldTimedInt   FieldType = 0x03
	FieldTimedText  FieldType = 0x04
	FieldTimeseries FieldType = 0x0B
)

func (t FieldType) String() string {
	switch t {
	case FieldInt:
		return "int"
	case FieldTimedInt:
		return "timed-int"
	case FieldTimedText:
		return "timed-text"
	case FieldTimeseries:
		return "timeseries"
	}
	return fmt.Sprintf("field-type(0x%02x)", uint8(t))
}

// RawInt holds the four data bytes of an integer-shaped field, big-endian.
// The wire does not tag signedness or whether the value is one 32-bit
// quantity or two 16-bit halves; callers pick the view they need.
type RawInt [4]byte

func RawIntFrom32(v uint32) RawInt {
	var r RawInt
	binary.BigEndian.PutUint32(r[:], v)
	return r
}

func (r RawInt) Int32() int32   { return int32(binary.BigEndian.Uint32(r[:])) }
func (r RawInt) Uint32() uint32 { return binary.BigEndian.Uint32(r[:]) }

// Halves returns the signed 16-bit high and low halves.
func (r RawInt) Halves() (hi, lo int16) {
	return int16(binary.BigEndian.Uint16(r[0:2])), int16(binary.BigEndian.Uint16(r[2:4]))
}

// UHalves returns the unsigned 16-bit high and low halves.
func (r RawInt) UHalves() (hi, lo uint16) {
	return binary.BigEndian.Uint16(r[0:2]), binary.BigEndian.Uint16(r[2:4])
}

// FieldValue is the closed set of decoded field payloads.
type FieldValue interface {
	fieldValue()
	fmt.Stringer
}

// IntValue is a plain 4-byte integer (wire type 0x01).
type IntValue struct {
	Raw RawInt
}

// TimedInt is a Unix timestamp plus a 4-byte integer (wire type 0x03).
type TimedInt struct {
	Stamp uint32
	Raw   RawInt
}

// TimedText is a Unix timestamp plus a NUL-terminated UTF-8 string
// (wire type 0x04). Text excludes the terminator.
type TimedText struct {
	Stamp uint32
	Text  string
}

// Sample is one timeseries entry: two 16-bit values.
type Sample struct {
	Hi, Lo uint16
}

// Timeseries is a start/end timestamp pair plus samples (wire type 0x0B).
type Timeseries struct {
	Start   uint32
	End     uint32
	Samples []Sample
}

// RawValue preserves the data of a field whose type we cannot parse.
// Because unknown types have no implied length, Data holds everything up to
// the end of the payload.
type RawValue struct {
	Data []byte
}

func (IntValue) fieldValue()   {}
func (TimedInt) fieldValue()   {}
func (TimedText) fieldValue()  {}
func (Timeseries) fieldValue() {}
func (RawValue) fieldValue()   {}

func (v IntValue) String() string { return fmt.Sprintf("%d", v.Raw.Int32()) }
func (v TimedInt) String() string { return fmt.Sprintf("%d@%d", v.Raw.Int32(), v.Stamp) }
func (v TimedText) String() string {
	return fmt.Sprintf("%q@%d", v.Text, v.Stamp)
}
func (v Timeseries) String() string {
	return fmt.Sprintf("series[%d..%d, %d samples]", v.Start, v.End, len(v.Samples))
}
func (v RawValue) String() string { return hex.EncodeToString(v.Data) }

// Field is one {marker, id, type, data} unit inside a payload.
type Field struct {
	ID    uint8
	Type  FieldType
	Value FieldValue
}

func (f Field) String() string {
	return fmt.Sprintf("field(id=%d, %v, %v)", f.ID, f.Type, f.Value)
}
