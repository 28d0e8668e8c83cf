// Package client drives a Pico over the two-step flow the device expects:
// learn its address from a UDP broadcast, then talk to it over TCP.
package client

import (
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/openmarine/picolink/pkg/transport"
)

// ErrDiscoveryTimeout reports that no valid broadcast arrived in time.
var ErrDiscoveryTimeout = errors.New("client: discovery timed out")

// Discover listens on the broadcast port until the first well-formed frame
// arrives and returns the sender's host address. A zero timeout waits
// forever; broadcasts are periodic, so a lost one just means waiting for
// the next.
func Discover(udpPort int, timeout time.Duration) (string, error) {
	listener, err := transport.ListenUDP(udpPort)
	if err != nil {
		return "", err
	}
	defer listener.Close()
	return DiscoverWith(listener, timeout)
}

// DiscoverWith runs discovery on a caller-owned listener. The listener is
// not closed; the caller keeps that responsibility.
func DiscoverWith(listener *transport.UDP, timeout time.Duration) (string, error) {
	if timeout > 0 {
		if err := listener.SetDeadline(time.Now().Add(timeout)); err != nil {
			return "", err
		}
	}
	addr, msg, err := listener.Next()
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", fmt.Errorf("client: no broadcast within %v: %w", timeout, ErrDiscoveryTimeout)
		}
		return "", err
	}
	log.Printf("Discovered Pico at %s (%v, serial 0x%08x)", addr.IP, msg.Type, msg.Serial)
	return addr.IP.String(), nil
}
