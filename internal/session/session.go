// Package session represents one live connection of the exchange: a
// net.Conn plus its framing state, owned by exactly one handler.
//
// A Session is an explicit value passed into handlers rather than a
// field on a top-level server or client object, which keeps the
// open/close lifecycle a separately testable unit. Sessions are never
// reused and never share mutable state, so handlers need no locking
// beyond the idempotent Close.
package session

import (
	"bufio"
	"net"
	"sync/atomic"

	"shout/internal/errors"
	"shout/internal/metrics"
	"shout/internal/wire"
	"shout/util"
)

// Session wraps a connection with frame-level Send/Receive operations
// and tracks its open/closed state.
type Session struct {
	conn    net.Conn
	reader  *bufio.Reader
	closed  atomic.Bool
	metrics *metrics.Collector // nil-safe, may be nil
}

// New creates a Session owning conn. The collector may be nil.
func New(conn net.Conn, m *metrics.Collector) *Session {
	return &Session{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		metrics: m,
	}
}

// Receive blocks until one complete frame has been decoded and returns
// its payload.
//
// Errors: errors.ErrSessionClosed after Close; *errors.FrameError for
// a truncated or non-UTF-8 frame; *errors.NetworkError for transport
// failures, including the remote end closing the connection.
func (s *Session) Receive() (string, error) {
	if s.closed.Load() {
		return "", errors.ErrSessionClosed
	}

	msg, err := wire.Read(s.reader)
	if err != nil {
		if errors.IsMalformed(err) {
			return "", err
		}
		return "", errors.Wrap("read", s.remote(), err)
	}

	s.metrics.MessageReceived(len(msg))
	return msg, nil
}

// Send encodes msg as one frame and writes it to the connection.
func (s *Session) Send(msg string) error {
	if s.closed.Load() {
		return errors.ErrSessionClosed
	}

	bp := util.GetBuf()
	frame, err := wire.Append((*bp)[:0], msg)
	if err != nil {
		util.PutBuf(bp)
		return err
	}

	_, err = s.conn.Write(frame)
	*bp = frame[:0]
	util.PutBuf(bp)

	if err != nil {
		return errors.Wrap("write", s.remote(), err)
	}

	s.metrics.MessageSent(len(msg))
	return nil
}

// Buffered reports whether at least one byte is waiting on the read
// side. It is a best-effort hint, not a guarantee that a complete
// frame has arrived: a Receive may still block until the rest of a
// partially delivered frame shows up.
func (s *Session) Buffered() bool {
	return !s.closed.Load() && s.reader.Buffered() > 0
}

// Close releases the connection. It is idempotent; only the first
// call closes the socket.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.conn.Close()
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// RemoteAddr returns the remote address of the connection.
func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

func (s *Session) remote() string {
	if addr := s.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}
