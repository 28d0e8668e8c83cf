package transport

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmarine/picolink/pkg/pico"
)

func TestUDPNextSkipsGarbage(t *testing.T) {
	listener, err := ListenUDP(0)
	require.NoError(t, err)
	defer listener.Close()

	sender, err := net.Dial("udp", listener.LocalAddr().String())
	require.NoError(t, err)
	defer sender.Close()

	valid, err := pico.EncodeMessage(&pico.Message{Type: pico.TypeSensorState, Serial: 0x84B3EE93})
	require.NoError(t, err)

	// Foreign traffic first: not a frame, then a frame with a bad checksum.
	_, err = sender.Write([]byte("SSDP-ish noise"))
	require.NoError(t, err)
	corrupt := append([]byte(nil), valid...)
	corrupt[len(corrupt)-1] ^= 0x01
	_, err = sender.Write(corrupt)
	require.NoError(t, err)
	_, err = sender.Write(valid)
	require.NoError(t, err)

	require.NoError(t, listener.SetDeadline(time.Now().Add(2*time.Second)))
	addr, msg, err := listener.Next()
	require.NoError(t, err)
	assert.Equal(t, pico.TypeSensorState, msg.Type)
	assert.Equal(t, uint32(0x84B3EE93), msg.Serial)
	assert.NotNil(t, addr)
}

func TestUDPNextDeadline(t *testing.T) {
	listener, err := ListenUDP(0)
	require.NoError(t, err)
	defer listener.Close()

	require.NoError(t, listener.SetDeadline(time.Now().Add(50*time.Millisecond)))
	_, _, err = listener.Next()
	require.Error(t, err)
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func TestUDPCloseUnblocksNext(t *testing.T) {
	listener, err := ListenUDP(0)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, _, err := listener.Next()
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, listener.Close())

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not unblock on Close")
	}
}
