package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the SHOUT_ prefix. Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg. Only non-empty
// env vars override the existing value. This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("SHOUT_HOST"); v != "" {
		cfg.Host = v
	}
	if v := envInt("SHOUT_PORT"); v > 0 {
		cfg.Port = v
	}
	if envBool("SHOUT_LISTEN") {
		cfg.Listen = true
	}
	if v := envInt("SHOUT_TIMEOUT"); v > 0 {
		cfg.Timeout = time.Duration(v) * time.Second
	}
	if v := envInt("SHOUT_MAX_CLIENTS"); v > 0 {
		cfg.MaxClients = v
	}

	// SSH gateway
	if v := os.Getenv("SHOUT_VIA"); v != "" {
		cfg.GatewaySpec = v
	}
	if v := os.Getenv("SHOUT_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("SHOUT_SSH_PASSWORD") {
		cfg.SSHPassword = true
	}
	if envBool("SHOUT_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("SHOUT_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}
	if v := os.Getenv("SHOUT_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Output
	if v := envInt("SHOUT_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}
