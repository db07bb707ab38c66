package config

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and environment variable loading.

const (
	// DefaultPort is the exchange protocol's fixed TCP port, shared by
	// client and server configuration.
	DefaultPort = 7077

	// DefaultHost is where the client connects when no host argument
	// is given.
	DefaultHost = "127.0.0.1"

	// DefaultMaxClients bounds concurrent sessions in listen mode;
	// connections beyond the limit are rejected, not queued.
	DefaultMaxClients = 64

	// DefaultSSHPort is the standard SSH port for --via gateways.
	DefaultSSHPort = 22
)
