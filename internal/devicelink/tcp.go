package devicelink

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/iwtcode/dmcAdapter/internal/interfaces"
	apperrors "github.com/iwtcode/dmcAdapter/pkg/errors"
)

// tcpLink - канал связи с контроллером DMC по TCP.
// Команды завершаются CR; ответ заканчивается подсказкой ':' (успех)
// или '?' (ошибка), подсказка из полезных данных вырезается, маркер '?'
// остается в хвосте ответа.
type tcpLink struct {
	conn   net.Conn
	reader *bufio.Reader
}

// NewTCPLink создает новый неподключенный TCP-линк.
func NewTCPLink() interfaces.DeviceLink {
	return &tcpLink{}
}

func (l *tcpLink) Open(address string) error {
	conn, err := net.DialTimeout("tcp", address, 3*time.Second)
	if err != nil {
		return fmt.Errorf("dial %s: %w", address, err)
	}
	l.conn = conn
	l.reader = bufio.NewReader(conn)
	return nil
}

func (l *tcpLink) Close() error {
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	l.reader = nil
	return err
}

func (l *tcpLink) Send(text string, timeout time.Duration) (string, error) {
	if l.conn == nil {
		return "", apperrors.ErrNotConnected
	}

	deadline := time.Now().Add(timeout)
	if err := l.conn.SetDeadline(deadline); err != nil {
		return "", err
	}

	if _, err := l.conn.Write([]byte(text + "\r")); err != nil {
		return "", fmt.Errorf("write %q: %w", text, err)
	}

	var sb strings.Builder
	for {
		b, err := l.reader.ReadByte()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return "", &apperrors.TimeoutError{Command: text, Timeout: timeout}
			}
			return "", fmt.Errorf("read response for %q: %w", text, err)
		}
		if b == ':' {
			return strings.TrimSpace(sb.String()), nil
		}
		if b == '?' {
			// Маркер ошибки остается в ответе, его разбирает контроллер.
			return strings.TrimSpace(sb.String()) + "?", nil
		}
		sb.WriteByte(b)
	}
}
