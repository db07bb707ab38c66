package transport

import (
	"context"
	"net"
	"time"

	"shout/internal/errors"
)

// TCPDialer establishes plain TCP connections.
type TCPDialer struct {
	Timeout time.Duration // 0 = no dial timeout
}

// Dial connects to address over TCP.
func (d *TCPDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout}
	conn, err := dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, errors.Wrap("dial", address, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return conn, nil
}

// Close is a no-op for stateless TCP dialers.
func (d *TCPDialer) Close() error { return nil }
