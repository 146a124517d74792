package devicelink

import (
	"bufio"
	"net"
	"testing"
	"time"

	apperrors "github.com/iwtcode/dmcAdapter/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startFakeDevice поднимает TCP-сервер, который на каждую команду,
// оканчивающуюся CR, отвечает через reply.
func startFakeDevice(t *testing.T, reply func(cmd string) string) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				reader := bufio.NewReader(conn)
				for {
					cmd, err := reader.ReadString('\r')
					if err != nil {
						return
					}
					if _, err := conn.Write([]byte(reply(cmd[:len(cmd)-1]))); err != nil {
						return
					}
				}
			}(conn)
		}
	}()

	return listener.Addr().String()
}

func TestTCPLinkSendReceivesUntilPrompt(t *testing.T) {
	addr := startFakeDevice(t, func(cmd string) string {
		if cmd == "MG 1" {
			return " 1.0000\r\n:"
		}
		return ":"
	})

	link := NewTCPLink()
	require.NoError(t, link.Open(addr))
	defer link.Close()

	resp, err := link.Send("MG 1", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "1.0000", resp)

	resp, err = link.Send("ST", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "", resp)
}

func TestTCPLinkKeepsErrorMarker(t *testing.T) {
	addr := startFakeDevice(t, func(cmd string) string { return "?" })

	link := NewTCPLink()
	require.NoError(t, link.Open(addr))
	defer link.Close()

	resp, err := link.Send("BAD", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "?", resp)
}

func TestTCPLinkTimeout(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		// Молчаливое устройство: соединение висит без ответа.
		defer conn.Close()
		time.Sleep(time.Second)
	}()

	link := NewTCPLink()
	require.NoError(t, link.Open(listener.Addr().String()))
	defer link.Close()

	_, err = link.Send("MG 1", 50*time.Millisecond)
	require.Error(t, err)

	var timeoutErr *apperrors.TimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
}

func TestTCPLinkSendWithoutOpen(t *testing.T) {
	link := NewTCPLink()
	_, err := link.Send("MG 1", time.Second)
	assert.ErrorIs(t, err, apperrors.ErrNotConnected)
}
