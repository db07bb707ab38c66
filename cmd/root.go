// Package cmd wires up the CLI flags and dispatches to the exchange
// core.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"shout/config"
	"shout/internal/core"
	"shout/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X shout/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the appropriate shout mode.
func Execute(ctx context.Context, args []string) error {
	cfg := &config.Config{
		Host:       config.DefaultHost,
		Port:       config.DefaultPort,
		MaxClients: config.DefaultMaxClients,
	}
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("shout", flag.ContinueOnError)

	// ── connection ───────────────────────────────────────────────
	fs.BoolVarP(&cfg.Listen, "listen", "l", cfg.Listen, "Listen mode (run the echo server)")
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "Protocol port")
	fs.IntVar(&cfg.MaxClients, "max-clients", cfg.MaxClients, "Concurrent session limit (with -l)")

	var timeoutSec int
	fs.IntVarP(&timeoutSec, "timeout", "w", 0, "Idle/dial timeout in seconds (0 = none)")

	// ── SSH gateway ──────────────────────────────────────────────
	fs.StringVarP(&cfg.GatewaySpec, "via", "T", cfg.GatewaySpec, "Connect via SSH gateway [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")

	var showVersion, showHelp, dryRun bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&dryRun, "dry-run", false, "Validate configuration and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("shout %s\n", version)
		return nil
	}

	if timeoutSec > 0 {
		cfg.Timeout = time.Duration(timeoutSec) * time.Second
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── gateway spec ─────────────────────────────────────────────
	if cfg.GatewaySpec != "" {
		user, host, port, err := config.ParseGatewaySpec(cfg.GatewaySpec)
		if err != nil {
			return fmt.Errorf("gateway: %w", err)
		}
		cfg.GatewayEnabled = true
		cfg.GatewayUser = user
		cfg.GatewayHost = host
		cfg.GatewayPort = port
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}
	if dryRun {
		return nil
	}

	// ── build and run ────────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose + 1) // 0 flags = normal output

	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

func parsePositional(cfg *config.Config, remaining []string) error {
	if cfg.Listen {
		if len(remaining) > 0 {
			return fmt.Errorf("unexpected arguments for listen mode: %v", remaining)
		}
		return nil
	}

	// Connect mode: [host [port]]
	switch len(remaining) {
	case 0: // bare "shout" talks to a local server on the protocol port
	case 2:
		port, err := config.ParsePort(remaining[1])
		if err != nil {
			return err
		}
		cfg.Port = port
		fallthrough
	case 1:
		cfg.Host = remaining[0]
	default:
		return fmt.Errorf("too many arguments (use --help for usage)")
	}
	return nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `shout – framed uppercase-echo exchange v%s

A length-prefixed text exchange over TCP: the server echoes every
message back uppercased; typing "exit" ends a session.

Usage:
  shout [options] [host] [port]               Connect and chat
  shout -l [-p <port>] [options]              Serve
  shout -T user@gateway host [port]           Connect via SSH gateway

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  shout -l                                    Serve on the default port (%d)
  shout example.com                           Chat with a remote server
  echo hello | shout 127.0.0.1 9000           One-shot pipe
  shout -T admin@bastion internal-host        Reach a server behind a gateway
`, config.DefaultPort)
}
