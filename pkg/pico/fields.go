package pico

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// marker separates protocol regions: the header, the checksum and every
// field and sub-structure start with it.
const marker = 0xFF

// DecodeFields walks a payload and decodes the field sequence. Offsets in
// errors are relative to the start of the payload.
//
// Field types carry no length prefix, so a type we do not know makes the
// rest of the payload unparseable. In lenient mode (strict=false) the
// remaining bytes are preserved as a single field with a RawValue and
// iteration stops cleanly; in strict mode the decode fails with
// ErrUnknownFieldType.
func DecodeFields(payload []byte, strict bool) ([]Field, error) {
	var fields []Field
	off := 0
	for off < len(payload) {
		if payload[off] != marker {
			return nil, fmt.Errorf("field at offset %d starts with 0x%02x: %w", off, payload[off], ErrFieldMarker)
		}
		if len(payload)-off < 3 {
			return nil, fmt.Errorf("field header at offset %d runs past payload end: %w", off, ErrFieldTruncated)
		}
		id := payload[off+1]
		ftype := FieldType(payload[off+2])
		data := payload[off+3:]

		switch ftype {
		case FieldInt:
			if len(data) < 4 {
				return nil, fmt.Errorf("int field at offset %d needs 4 data bytes, have %d: %w", off, len(data), ErrFieldTruncated)
			}
			var raw RawInt
			copy(raw[:], data[:4])
			fields = append(fields, Field{ID: id, Type: ftype, Value: IntValue{Raw: raw}})
			off += 3 + 4

		case FieldTimedInt:
			if len(data) < 9 {
				return nil, fmt.Errorf("timed-int field at offset %d needs 9 data bytes, have %d: %w", off, len(data), ErrFieldTruncated)
			}
			if data[4] != marker {
				return nil, fmt.Errorf("timed-int field at offset %d: separator is 0x%02x: %w", off, data[4], ErrFieldMarker)
			}
			var raw RawInt
			copy(raw[:], data[5:9])
			fields = append(fields, Field{ID: id, Type: ftype, Value: TimedInt{
				Stamp: binary.BigEndian.Uint32(data[0:4]),
				Raw:   raw,
			}})
			off += 3 + 9

		case FieldTimedText:
			if len(data) < 6 {
				return nil, fmt.Errorf("timed-text field at offset %d needs at least 6 data bytes, have %d: %w", off, len(data), ErrFieldTruncated)
			}
			if data[4] != marker {
				return nil, fmt.Errorf("timed-text field at offset %d: separator is 0x%02x: %w", off, data[4], ErrFieldMarker)
			}
			end := bytes.IndexByte(data[5:], 0x00)
			if end < 0 {
				return nil, fmt.Errorf("timed-text field at offset %d has no terminator: %w", off, ErrFieldTruncated)
			}
			text := data[5 : 5+end]
			if !utf8.Valid(text) {
				return nil, fmt.Errorf("timed-text field at offset %d is not valid UTF-8: %w", off, ErrFieldText)
			}
			fields = append(fields, Field{ID: id, Type: ftype, Value: TimedText{
				Stamp: binary.BigEndian.Uint32(data[0:4]),
				Text:  string(text),
			}})
			off += 3 + 5 + end + 1

		case FieldTimeseries:
			if len(data) < 11 {
				return nil, fmt.Errorf("timeseries field at offset %d needs 11 header bytes, have %d: %w", off, len(data), ErrFieldTruncated)
			}
			if data[4] != marker || data[9] != marker {
				return nil, fmt.Errorf("timeseries field at offset %d has a bad separator: %w", off, ErrFieldMarker)
			}
			n := int(data[10])
			need := 11 + 5*n + 1
			if len(data) < need {
				return nil, fmt.Errorf("timeseries field at offset %d needs %d data bytes for %d samples, have %d: %w", off, need, n, len(data), ErrFieldTruncated)
			}
			samples := make([]Sample, 0, n)
			for i := 0; i < n; i++ {
				block := data[11+5*i:]
				if block[0] != marker {
					return nil, fmt.Errorf("timeseries sample %d at offset %d starts with 0x%02x: %w", i, off, block[0], ErrFieldMarker)
				}
				samples = append(samples, Sample{
					Hi: binary.BigEndian.Uint16(block[1:3]),
					Lo: binary.BigEndian.Uint16(block[3:5]),
				})
			}
			if data[11+5*n] != marker {
				return nil, fmt.Errorf("timeseries field at offset %d has no trailing marker: %w", off, ErrFieldMarker)
			}
			fields = append(fields, Field{ID: id, Type: ftype, Value: Timeseries{
				Start:   binary.BigEndian.Uint32(data[0:4]),
				End:     binary.BigEndian.Uint32(data[5:9]),
				Samples: samples,
			}})
			off += 3 + need

		default:
			if strict {
				return nil, fmt.Errorf("field type 0x%02x at offset %d: %w", uint8(ftype), off, ErrUnknownFieldType)
			}
			fields = append(fields, Field{ID: id, Type: ftype, Value: RawValue{
				Data: append([]byte(nil), data...),
			}})
			return fields, nil
		}
	}
	return fields, nil
}

// EncodeFields is the inverse of DecodeFields. The encoding is driven by
// each field's value variant; the field's type code is written verbatim so
// preserved unknown fields round-trip byte for byte.
func EncodeFields(fields []Field) ([]byte, error) {
	var buf []byte
	for i, f := range fields {
		buf = append(buf, marker, f.ID, byte(f.Type))
		switch v := f.Value.(type) {
		case IntValue:
			buf = append(buf, v.Raw[:]...)
		case TimedInt:
			buf = binary.BigEndian.AppendUint32(buf, v.Stamp)
			buf = append(buf, marker)
			buf = append(buf, v.Raw[:]...)
		case TimedText:
			if bytes.IndexByte([]byte(v.Text), 0x00) >= 0 {
				return nil, fmt.Errorf("field %d: text contains NUL: %w", i, ErrFieldText)
			}
			buf = binary.BigEndian.AppendUint32(buf, v.Stamp)
			buf = append(buf, marker)
			buf = append(buf, v.Text...)
			buf = append(buf, 0x00)
		case Timeseries:
			if len(v.Samples) > 0xFF {
				return nil, fmt.Errorf("field %d: %d samples exceed one-byte count", i, len(v.Samples))
			}
			buf = binary.BigEndian.AppendUint32(buf, v.Start)
			buf = append(buf, marker)
			buf = binary.BigEndian.AppendUint32(buf, v.End)
			buf = append(buf, marker, byte(len(v.Samples)))
			for _, s := range v.Samples {
				buf = append(buf, marker)
				buf = binary.BigEndian.AppendUint16(buf, s.Hi)
				buf = binary.BigEndian.AppendUint16(buf, s.Lo)
			}
			buf = append(buf, marker)
		case RawValue:
			buf = append(buf, v.Data...)
		default:
			return nil, fmt.Errorf("field %d: nil or unsupported value %T", i, f.Value)
		}
	}
	return buf, nil
}
