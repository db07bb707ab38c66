package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadFromEnv_Host(t *testing.T) {
	t.Setenv("SHOUT_HOST", "test.example.com")
	cfg := &Config{}
	LoadFromEnv(cfg)
	if cfg.Host != "test.example.com" {
		t.Errorf("Host = %q, want %q", cfg.Host, "test.example.com")
	}
}

func TestLoadFromEnv_Port(t *testing.T) {
	t.Setenv("SHOUT_PORT", "9000")
	cfg := &Config{}
	LoadFromEnv(cfg)
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
}

func TestLoadFromEnv_Booleans(t *testing.T) {
	for _, v := range []string{"1", "true", "yes", "TRUE", "Yes"} {
		t.Run("SHOUT_LISTEN="+v, func(t *testing.T) {
			t.Setenv("SHOUT_LISTEN", v)
			cfg := &Config{}
			LoadFromEnv(cfg)
			if !cfg.Listen {
				t.Error("Listen should be true")
			}
		})
	}
}

func TestLoadFromEnv_Timeout(t *testing.T) {
	t.Setenv("SHOUT_TIMEOUT", "10")
	cfg := &Config{}
	LoadFromEnv(cfg)
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
}

func TestLoadFromEnv_MaxClients(t *testing.T) {
	t.Setenv("SHOUT_MAX_CLIENTS", "5")
	cfg := &Config{}
	LoadFromEnv(cfg)
	if cfg.MaxClients != 5 {
		t.Errorf("MaxClients = %d, want 5", cfg.MaxClients)
	}
}

func TestLoadFromEnv_SSHFields(t *testing.T) {
	t.Setenv("SHOUT_VIA", "admin@bastion:2222")
	t.Setenv("SHOUT_SSH_KEY", "/home/user/.ssh/id_ed25519")
	t.Setenv("SHOUT_SSH_PASSWORD", "true")
	t.Setenv("SHOUT_SSH_AGENT", "1")
	t.Setenv("SHOUT_STRICT_HOSTKEY", "yes")
	t.Setenv("SHOUT_KNOWN_HOSTS", "/custom/known_hosts")

	cfg := &Config{}
	LoadFromEnv(cfg)

	if cfg.GatewaySpec != "admin@bastion:2222" {
		t.Errorf("GatewaySpec = %q", cfg.GatewaySpec)
	}
	if cfg.SSHKeyPath != "/home/user/.ssh/id_ed25519" {
		t.Errorf("SSHKeyPath = %q", cfg.SSHKeyPath)
	}
	if !cfg.SSHPassword {
		t.Error("SSHPassword should be true")
	}
	if !cfg.UseSSHAgent {
		t.Error("UseSSHAgent should be true")
	}
	if !cfg.StrictHostKey {
		t.Error("StrictHostKey should be true")
	}
	if cfg.KnownHostsPath != "/custom/known_hosts" {
		t.Errorf("KnownHostsPath = %q", cfg.KnownHostsPath)
	}
}

func TestLoadFromEnv_NoOverrideWhenEmpty(t *testing.T) {
	// Ensure no SHOUT_ vars are set.
	os.Clearenv()

	cfg := &Config{Host: "original", Port: 1234}
	LoadFromEnv(cfg)

	if cfg.Host != "original" {
		t.Errorf("Host was overridden: %q", cfg.Host)
	}
	if cfg.Port != 1234 {
		t.Errorf("Port was overridden: %d", cfg.Port)
	}
}

func TestLoadFromEnv_InvalidIntIgnored(t *testing.T) {
	t.Setenv("SHOUT_PORT", "not-a-number")
	cfg := &Config{}
	LoadFromEnv(cfg)
	if cfg.Port != 0 {
		t.Errorf("Port should be 0 for invalid input, got %d", cfg.Port)
	}
}

func TestLoadFromEnv_Verbose(t *testing.T) {
	t.Setenv("SHOUT_VERBOSE", "3")
	cfg := &Config{}
	LoadFromEnv(cfg)
	if cfg.Verbose != 3 {
		t.Errorf("Verbose = %d, want 3", cfg.Verbose)
	}
}
