package networking

import (
	"context"
	"net"

	"golang.org/x/net/ipv4"
)

// SocketOptions tune every connection dialed or accepted
type SocketOptions struct {
	DSCP  int  // IP TOS value, 0 leaves the OS default
	MPTCP bool // Multipath TCP
}

// Dial opens a TCP connection to address
func Dial(ctx context.Context, address string, opts SocketOptions) (net.Conn, error) {
	_, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, err
	}
	dial := new(net.Dialer)
	dial.SetMultipathTCP(opts.MPTCP)
	conn, err := dial.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}
	Tune(conn, opts)
	return conn, nil
}

// Listen binds a listening TCP socket on address
func Listen(ctx context.Context, address string, opts SocketOptions) (net.Listener, error) {
	_, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, err
	}
	lc := new(net.ListenConfig)
	lc.SetMultipathTCP(opts.MPTCP)
	return lc.Listen(ctx, "tcp", address)
}

// Tune sets TCP_NODELAY and the DSCP field on conn. Failures are ignored:
// both are best effort and not every platform or address family honours them.
func Tune(conn net.Conn, opts SocketOptions) {
	if tcp, ok := conn.(*net.TCPConn); ok {
		tcp.SetNoDelay(true)
	}
	if opts.DSCP > 0 {
		// NOTE: On Windows by default it will not apply the value.
		ipv4.NewConn(conn).SetTOS(opts.DSCP)
	}
}
