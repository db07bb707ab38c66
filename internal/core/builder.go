package core

import (
	"io"
	"os"

	"golang.org/x/term"

	"shout/config"
	"shout/internal/capability"
	"shout/internal/metrics"
	"shout/internal/transport"
	"shout/util"
)

// Build constructs the appropriate Mode from the given configuration.
// This is the single dispatch point between the CLI and the modes.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	m := metrics.New()
	if cfg.Listen {
		return buildListen(cfg, logger, m), nil
	}
	return buildConnect(cfg, logger, m), nil
}

// ── mode builders ────────────────────────────────────────────────────

func buildListen(cfg *config.Config, logger *util.Logger, m *metrics.Collector) Mode {
	return &ListenMode{
		Address:    util.ListenAddr(cfg.Port),
		MaxClients: cfg.MaxClients,
		Timeout:    cfg.Timeout,
		Capability: &capability.Echo{Metrics: m},
		Logger:     logger,
		Metrics:    m,
	}
}

func buildConnect(cfg *config.Config, logger *util.Logger, m *metrics.Collector) Mode {
	return &ConnectMode{
		Dialer:     buildDialer(cfg, logger),
		Capability: buildInteract(logger),
		Address:    util.FormatAddr(cfg.Host, cfg.Port),
		Logger:     logger,
		Metrics:    m,
	}
}

// ── shared helpers ───────────────────────────────────────────────────

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.GatewayEnabled {
		return transport.NewSSHDialer(&transport.SSHConfig{
			User:          cfg.GatewayUser,
			Host:          cfg.GatewayHost,
			Port:          cfg.GatewayPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			ConnTimeout:   cfg.Timeout,
		}, logger)
	}
	return &transport.TCPDialer{Timeout: cfg.Timeout}
}

// buildInteract wires the console loop. The prompt only appears when
// a human is actually typing, i.e. stdin is a terminal.
func buildInteract(logger *util.Logger) capability.Capability {
	return &capability.Interact{
		Input:  os.Stdin,
		Output: os.Stdout,
		Prompt: consolePrompt(os.Stdin),
		Logger: logger,
	}
}

// consolePrompt returns the input prompt when in is an interactive
// terminal, or "" for piped input.
func consolePrompt(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "> "
	}
	return ""
}
