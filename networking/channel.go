package networking

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

// Channel is a connected duplex byte stream with a fixed read timeout. It
// knows how to move control messages and raw bytes; sequencing them is up to
// the caller.
type Channel struct {
	conn    net.Conn
	timeout time.Duration
}

// NewChannel wraps conn. Every blocking read is bounded by timeout.
func NewChannel(conn net.Conn, timeout time.Duration) *Channel {
	return &Channel{conn: conn, timeout: timeout}
}

// SendControl writes the single byte encoding of msg
func (c *Channel) SendControl(msg Message) error {
	_, err := c.Write([]byte{msg.Encode()})
	return err
}

// ReceiveControl blocks until one byte arrives or the timeout elapses
func (c *Channel) ReceiveControl() (Message, error) {
	b := make([]byte, 1)
	if _, err := io.ReadFull(c, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("%w: receive control message: %w", ErrIO, err)
		}
		return 0, err
	}
	return Decode(b[0])
}

// ReceivePayload performs a single read of whatever is buffered, up to max bytes
func (c *Channel) ReceivePayload(max int) ([]byte, error) {
	buf := make([]byte, max)
	n, err := c.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: stream closed before payload", ErrShortRead)
	}
	return nil, err
}

// Read implements io.Reader with the read deadline applied. io.EOF is passed
// through untouched so io.ReadFull and friends keep their semantics.
func (c *Channel) Read(p []byte) (int, error) {
	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, fmt.Errorf("%w: set read deadline: %w", ErrIO, err)
		}
	}
	n, err := c.conn.Read(p)
	if err != nil && err != io.EOF {
		return n, classify("read", err)
	}
	return n, err
}

// Write implements io.Writer. A partial write is reported as a failure.
func (c *Channel) Write(p []byte) (int, error) {
	n, err := c.conn.Write(p)
	if err != nil {
		return n, classify("write", err)
	}
	if n != len(p) {
		return n, fmt.Errorf("%w: write: %w", ErrIO, io.ErrShortWrite)
	}
	return n, nil
}

// CloseRead half-closes the connection for reading where the transport
// supports it.
func (c *Channel) CloseRead() error {
	if hc, ok := c.conn.(interface{ CloseRead() error }); ok {
		if err := hc.CloseRead(); err != nil {
			return classify("close read", err)
		}
	}
	return nil
}

// Close closes the underlying connection
func (c *Channel) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the address of the peer
func (c *Channel) RemoteAddr() string {
	if addr := c.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}

// classify tags a transport error as a timeout or a plain i/o failure
func classify(op string, err error) error {
	if errors.Is(err, ErrIO) || errors.Is(err, ErrTimeout) {
		return err
	}
	var ne net.Error
	if errors.Is(err, os.ErrDeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: %s: %w", ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
