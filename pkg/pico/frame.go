package pico

import (
	"encoding/binary"
	"fmt"
)

// Envelope layout, all multi-byte integers big-endian:
//
//	off 0..4    five zero bytes (preamble)
//	off 5       0xFF
//	off 6       message type
//	off 7..10   serial
//	off 11..12  length = len(payload) + 3
//	off 13..    payload (field sequence, may be empty)
//	off N-3     0xFF
//	off N-2..   CRC-16 over bytes 0..N-4
const (
	// HeaderLen is the fixed prefix up to and including the length word.
	// A reader that has the first HeaderLen bytes knows the frame size.
	HeaderLen  = 13
	trailerLen = 3 // checksum marker + checksum
	// MinFrameLen is the size of a frame with an empty payload.
	MinFrameLen = HeaderLen + trailerLen
)

// FrameLen returns the total frame size implied by a header's length word.
func FrameLen(header []byte) int {
	return HeaderLen + int(binary.BigEndian.Uint16(header[11:13]))
}

// EncodeMessage renders a message into its wire form.
func EncodeMessage(m *Message) ([]byte, error) {
	payload, err := EncodeFields(m.Fields)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, HeaderLen+len(payload)+trailerLen)
	buf = append(buf, 0, 0, 0, 0, 0, marker, byte(m.Type))
	buf = binary.BigEndian.AppendUint32(buf, m.Serial)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(payload)+trailerLen))
	buf = append(buf, payload...)
	crc := Checksum(buf) // everything before the checksum marker
	buf = append(buf, marker)
	buf = binary.BigEndian.AppendUint16(buf, crc)
	return buf, nil
}

// DecodeMessage validates a complete frame and decodes it. Field decoding
// is lenient: unknown field types are preserved as raw bytes so traffic
// from newer firmware still decodes. A failed decode returns no Message.
func DecodeMessage(b []byte) (*Message, error) {
	if len(b) < MinFrameLen {
		return nil, fmt.Errorf("frame is %d bytes, minimum is %d: %w", len(b), MinFrameLen, ErrLength)
	}
	for i := 0; i < 5; i++ {
		if b[i] != 0x00 {
			return nil, fmt.Errorf("preamble byte at offset %d is 0x%02x: %w", i, b[i], ErrPreamble)
		}
	}
	if b[5] != marker {
		return nil, fmt.Errorf("offset 5 is 0x%02x: %w", b[5], ErrHeaderMarker)
	}
	mtype := MessageType(b[6])
	serial := binary.BigEndian.Uint32(b[7:11])
	total := FrameLen(b)
	switch {
	case len(b) < total:
		return nil, fmt.Errorf("frame declares %d bytes but only %d were read: %w", total, len(b), ErrLength)
	case len(b) > total:
		return nil, fmt.Errorf("frame declares %d bytes but %d were read: %w", total, len(b), ErrLength)
	}
	if b[total-3] != marker {
		return nil, fmt.Errorf("offset %d is 0x%02x: %w", total-3, b[total-3], ErrChecksumMarker)
	}
	want := binary.BigEndian.Uint16(b[total-2:])
	if got := Checksum(b[:total-3]); got != want {
		return nil, fmt.Errorf("computed 0x%04x, frame carries 0x%04x: %w", got, want, ErrChecksum)
	}
	fields, err := DecodeFields(b[HeaderLen:total-3], false)
	if err != nil {
		return nil, err
	}
	return &Message{Type: mtype, Serial: serial, Fields: fields}, nil
}
