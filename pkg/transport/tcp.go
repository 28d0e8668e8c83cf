// Package transport carries Pico frames over the device's two channels: a
// TCP control connection (request/response) and a UDP broadcast listener.
// Both share the codec in pkg/pico and own their socket exclusively; a
// transport is not safe for concurrent use by multiple callers.
package transport

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/openmarine/picolink/pkg/pico"
)

// DefaultTCPPort is the device's control port.
const DefaultTCPPort = 5001

var (
	// ErrEOF reports a peer that closed the connection mid-frame.
	ErrEOF = errors.New("transport: connection closed mid-frame")
	// ErrUnexpectedType reports a response whose type code does not match
	// the one the caller asked for. The response is dropped.
	ErrUnexpectedType = errors.New("transport: unexpected response type")
)

// TCP is the request/response channel. Requests are strictly ordered and
// unpipelined: one in flight at a time.
type TCP struct {
	conn    net.Conn
	timeout time.Duration
	mu      sync.Mutex
}

// DialTCP connects to the device's control port. The timeout bounds the
// connect and, when non-zero, every subsequent request/response exchange.
func DialTCP(addr string, timeout time.Duration) (*TCP, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("transport: connect %s: %w", addr, err)
	}
	return &TCP{conn: conn, timeout: timeout}, nil
}

// Request sends a message and reads the response. The response type must
// match want or the exchange fails with ErrUnexpectedType.
func (t *TCP) Request(msg *pico.Message, want pico.MessageType) (*pico.Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, err := pico.EncodeMessage(msg)
	if err != nil {
		return nil, err
	}
	if t.timeout > 0 {
		if err := t.conn.SetDeadline(time.Now().Add(t.timeout)); err != nil {
			return nil, fmt.Errorf("transport: set deadline: %w", err)
		}
	}
	log.Printf("TX %v: %s", msg.Type, hex.EncodeToString(b))
	if _, err := t.conn.Write(b); err != nil {
		return nil, fmt.Errorf("transport: write %v: %w", msg.Type, err)
	}
	resp, err := t.readFrame()
	if err != nil {
		return nil, err
	}
	if resp.Type != want {
		return nil, fmt.Errorf("transport: got %v, want %v: %w", resp.Type, want, ErrUnexpectedType)
	}
	return resp, nil
}

// readFrame reads exactly one frame: the fixed header first to learn the
// length, then the rest. io.ReadFull loops over short reads for us.
func (t *TCP) readFrame() (*pico.Message, error) {
	buf := make([]byte, pico.HeaderLen)
	if _, err := io.ReadFull(t.conn, buf); err != nil {
		return nil, eofErr("header", err)
	}
	total := pico.FrameLen(buf)
	buf = append(buf, make([]byte, total-pico.HeaderLen)...)
	if _, err := io.ReadFull(t.conn, buf[pico.HeaderLen:]); err != nil {
		return nil, eofErr("body", err)
	}
	log.Printf("RX frame: %s", hex.EncodeToString(buf))
	return pico.DecodeMessage(buf)
}

func eofErr(stage string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("transport: reading %s: %w", stage, ErrEOF)
	}
	return fmt.Errorf("transport: reading %s: %w", stage, err)
}

// Close releases the socket.
func (t *TCP) Close() error {
	return t.conn.Close()
}
