package core

import (
	"context"
	"fmt"

	"shout/internal/capability"
	"shout/internal/metrics"
	"shout/internal/session"
	"shout/internal/transport"
	"shout/util"
)

// ConnectMode is the default client mode: it dials the exchange
// server and runs a capability on the resulting session.
type ConnectMode struct {
	Dialer     transport.Dialer
	Capability capability.Capability
	Address    string
	Logger     *util.Logger
	Metrics    *metrics.Collector // may be nil
}

// Run dials the remote address, wraps the connection in a session, and
// hands it to the capability. The transport is closed when Run
// returns. There is no reconnect: a dropped session stays dropped.
func (m *ConnectMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()

	m.Logger.Verbose("connecting to %s", m.Address)

	conn, err := m.Dialer.Dial(ctx, "tcp", m.Address)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", m.Address, err)
	}

	m.Logger.Verbose("connected to %s", conn.RemoteAddr())

	m.Metrics.SessionOpened()
	defer m.Metrics.SessionClosed()

	sess := session.New(conn, m.Metrics)
	defer sess.Close()

	err = m.Capability.Handle(ctx, sess)
	m.Logger.Info("connection closed")
	return err
}
