package capability

import (
	"context"
	"strings"

	"shout/internal/errors"
	"shout/internal/metrics"
	"shout/internal/session"
)

// Echo is the server-side handler loop: it receives messages and
// replies with the uppercased text until the sentinel arrives or the
// session breaks.
type Echo struct {
	Metrics *metrics.Collector // may be nil
}

// Handle runs the echo loop for one session.
//
// The sentinel comparison is exact (case-sensitive): "Exit" is echoed
// back as "EXIT" like any other message. Our own client lowercases
// before sending, so the asymmetry only shows with foreign clients.
//
// An abrupt peer disconnect is only noticed on the next receive; there
// is no heartbeat in the protocol.
func (e *Echo) Handle(ctx context.Context, sess *session.Session) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := sess.Receive()
		if err != nil {
			if errors.IsClosed(err) {
				// Peer went away without the sentinel.
				return nil
			}
			e.Metrics.RecordError(err.Error())
			return err
		}

		if msg == Sentinel {
			return sess.Close()
		}

		if err := sess.Send(strings.ToUpper(msg)); err != nil {
			if errors.IsClosed(err) {
				return nil
			}
			e.Metrics.RecordError(err.Error())
			return err
		}
	}
}
