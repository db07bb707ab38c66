// Package config defines the runtime configuration for shout and
// provides helpers for parsing gateway specifications and ports.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"shout/internal/errors"
)

// Config holds every tuneable for a single shout run.
type Config struct {
	// ── Connection ───────────────────────────────────────────────────
	Host       string
	Port       int // protocol port; defaults to DefaultPort on both sides
	Listen     bool
	Timeout    time.Duration // idle deadline on server sessions, dial timeout on the client
	MaxClients int           // admission limit in listen mode

	// ── SSH gateway ──────────────────────────────────────────────────
	GatewaySpec    string // raw user@host[:port] from --via
	GatewayEnabled bool
	GatewayUser    string
	GatewayHost    string
	GatewayPort    int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
}

// ── Port helper ──────────────────────────────────────────────────────

// ParsePort validates a numeric port argument.
func ParsePort(spec string) (int, error) {
	port, err := strconv.Atoi(spec)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", spec)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// ── Gateway-spec parser ──────────────────────────────────────────────

// gatewayRe matches [user@]host[:port].
var gatewayRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseGatewaySpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222". Port defaults to 22.
func ParseGatewaySpec(spec string) (user, host string, port int, err error) {
	m := gatewayRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid gateway spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid gateway port %q", m[3])
		}
	}
	if host == "" {
		return "", "", 0, fmt.Errorf("gateway host is required")
	}
	return user, host, port, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return &errors.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "out of range 1-65535",
			Hint:    fmt.Sprintf("the protocol default is %d", DefaultPort),
		}
	}

	if c.Listen {
		if c.GatewayEnabled {
			return &errors.ConfigError{
				Field:   "via",
				Message: "listen mode through an SSH gateway is not supported",
			}
		}
		if c.MaxClients < 1 {
			return &errors.ConfigError{
				Field:   "max-clients",
				Value:   c.MaxClients,
				Message: "must be at least 1",
				Hint:    fmt.Sprintf("the default is %d", DefaultMaxClients),
			}
		}
	} else {
		if c.Host == "" {
			return &errors.ConfigError{
				Field:   "host",
				Message: "server host is required (use --help for usage)",
			}
		}
	}

	if c.GatewayEnabled && c.GatewayHost == "" {
		return &errors.ConfigError{
			Field:   "via",
			Message: "gateway host is required",
		}
	}

	return nil
}
