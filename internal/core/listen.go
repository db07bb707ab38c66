package core

import (
	"context"
	"net"
	"time"

	"golang.org/x/sync/semaphore"

	"shout/internal/capability"
	"shout/internal/errors"
	"shout/internal/metrics"
	"shout/internal/session"
	"shout/util"
)

// ListenMode accepts inbound connections and runs a capability on
// each one in its own goroutine. Admission is bounded: connections
// beyond MaxClients are closed immediately rather than queued, so a
// misbehaving crowd cannot exhaust the process.
type ListenMode struct {
	Address    string // ":port"
	MaxClients int
	Timeout    time.Duration // per-session idle deadline; 0 = none
	Capability capability.Capability
	Logger     *util.Logger
	Metrics    *metrics.Collector // may be nil
}

// Run binds the listener and serves until the context is cancelled.
// A bind failure is fatal; a failed accept is logged and the loop
// keeps listening.
func (m *ListenMode) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", m.Address)
	if err != nil {
		return errors.Wrap("listen", m.Address, err)
	}
	defer ln.Close()

	m.Logger.Info("listening on %s", ln.Addr())

	// Shut the listener down when the context expires.
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	sem := semaphore.NewWeighted(int64(m.MaxClients))

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				m.Logger.Info("server stopped")
				m.Logger.Verbose("final stats:\n%s", m.Metrics.JSON())
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			// Accept failures terminate nothing: one bad handshake
			// must not take the server down.
			m.Logger.Warn("accept failed: %v", err)
			m.Metrics.RecordError(err.Error())
			continue
		}

		if !sem.TryAcquire(1) {
			m.Logger.Warn("rejecting %s: %v (max %d)",
				conn.RemoteAddr(), errors.ErrServerFull, m.MaxClients)
			m.Metrics.SessionRejected()
			conn.Close()
			continue
		}

		m.Logger.Info("accepted connection from %s", conn.RemoteAddr())
		m.Metrics.SessionOpened()
		go func() {
			// LIFO: the slot is free before the session counts as gone.
			defer m.Metrics.SessionClosed()
			defer sem.Release(1)
			m.serveConn(ctx, conn)
		}()
	}
}

// serveConn owns one session from accept to teardown. Failures stay
// inside this goroutine; they never cross into other sessions or
// abort the accept loop.
func (m *ListenMode) serveConn(ctx context.Context, conn net.Conn) {
	if m.Timeout > 0 {
		conn.SetDeadline(time.Now().Add(m.Timeout)) //nolint:errcheck
	}

	sess := session.New(conn, m.Metrics)
	defer sess.Close()

	// Unblock the handler's Receive if the server is shutting down.
	stop := context.AfterFunc(ctx, func() { sess.Close() })
	defer stop()

	if err := m.Capability.Handle(ctx, sess); err != nil && !errors.IsClosed(err) {
		m.Logger.Error("session %s: %v", conn.RemoteAddr(), err)
		return
	}
	m.Logger.Info("connection closed: %s", conn.RemoteAddr())
}
