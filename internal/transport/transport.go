// Package transport provides abstractions for network connection
// establishment. Transports handle the "how" of reaching the exchange
// server — plain TCP or TCP through an SSH gateway — independent of
// what happens over the connection (the capability layer's job).
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound network connections. Implementations include
// a plain TCP dialer and an SSH-routed dialer that reaches the server
// through an encrypted gateway.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH client). Stateless dialers return nil.
	Close() error
}
