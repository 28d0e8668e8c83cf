package transport

import (
	"fmt"
	"log"
	"net"
	"time"

	"github.com/openmarine/picolink/pkg/pico"
)

// DefaultUDPPort is the port the device broadcasts on.
const DefaultUDPPort = 43210

const maxDatagram = 4096

// UDP listens for device broadcasts. Broadcasts share the port with
// whatever else is on the network, so datagrams that do not frame as Pico
// messages are dropped, never surfaced.
type UDP struct {
	conn *net.UDPConn
}

// ListenUDP binds the broadcast port on all interfaces.
func ListenUDP(port int) (*UDP, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, fmt.Errorf("transport: listen udp :%d: %w", port, err)
	}
	return &UDP{conn: conn}, nil
}

// LocalAddr reports the bound address.
func (u *UDP) LocalAddr() net.Addr {
	return u.conn.LocalAddr()
}

// SetDeadline bounds subsequent Next calls.
func (u *UDP) SetDeadline(t time.Time) error {
	return u.conn.SetReadDeadline(t)
}

// Next blocks until a well-formed broadcast arrives and returns the sender
// and the decoded message. Socket errors (including deadline expiry and
// Close from another goroutine) are returned to the caller.
func (u *UDP) Next() (*net.UDPAddr, *pico.Message, error) {
	buf := make([]byte, maxDatagram)
	for {
		n, addr, err := u.conn.ReadFromUDP(buf)
		if err != nil {
			return nil, nil, fmt.Errorf("transport: read udp: %w", err)
		}
		msg, err := pico.DecodeMessage(buf[:n])
		if err != nil {
			log.Printf("udp: dropping %d-byte datagram from %s: %v", n, addr, err)
			continue
		}
		return addr, msg, nil
	}
}

// Close releases the socket and unblocks a pending Next.
func (u *UDP) Close() error {
	return u.conn.Close()
}
