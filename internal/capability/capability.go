// Package capability defines what happens over an established
// session. Each Capability encapsulates a single behaviour — echoing
// messages back uppercased (Echo) or driving an interactive console
// exchange (Interact) — and operates on a Session rather than a raw
// net.Conn, which keeps capabilities testable and decoupled from
// transport details.
package capability

import (
	"context"

	"shout/internal/session"
)

// Sentinel is the reserved message text that ends a session instead of
// being echoed. The server matches it exactly; the client accepts any
// letter case from the console but always transmits this literal.
const Sentinel = "exit"

// Capability handles a single session according to a specific
// behaviour. Handle blocks until the session ends or the context is
// cancelled. Implementations may close the session (on the sentinel);
// callers close it again afterwards, which is safe because Close is
// idempotent.
type Capability interface {
	Handle(ctx context.Context, sess *session.Session) error
}
