package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"shout/internal/errors"
	"shout/util"
)

// SSHConfig holds everything needed to dial an SSH gateway.
type SSHConfig struct {
	User          string
	Host          string
	Port          int
	KeyPath       string
	PromptPass    bool // prompt interactively for a password
	UseAgent      bool
	StrictHostKey bool
	KnownHosts    string
	ConnTimeout   time.Duration
}

// SSHDialer routes connections through an SSH gateway. The gateway
// connection is established lazily on the first Dial and torn down on
// Close.
type SSHDialer struct {
	config *SSHConfig
	logger *util.Logger

	mu     sync.Mutex
	client *ssh.Client
}

// NewSSHDialer creates a dialer that forwards connections through the
// given SSH gateway.
func NewSSHDialer(cfg *SSHConfig, logger *util.Logger) *SSHDialer {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.ConnTimeout == 0 {
		cfg.ConnTimeout = 30 * time.Second
	}
	return &SSHDialer{config: cfg, logger: logger}
}

// connect dials the gateway and completes the SSH handshake if not
// already connected. Caller must hold d.mu.
func (d *SSHDialer) connect(ctx context.Context) error {
	if d.client != nil {
		return nil
	}

	authMethods, err := buildAuthMethods(d.config)
	if err != nil {
		return fmt.Errorf("ssh auth: %w", err)
	}

	hkCallback, err := hostKeyCallback(d.config)
	if err != nil {
		return fmt.Errorf("ssh hostkey: %w", err)
	}

	sshCfg := &ssh.ClientConfig{
		User:            d.config.User,
		Auth:            authMethods,
		HostKeyCallback: hkCallback,
		Timeout:         d.config.ConnTimeout,
	}

	addr := util.FormatAddr(d.config.Host, d.config.Port)
	d.logger.Debug("ssh: dialing %s as %s", addr, d.config.User)

	// Context-aware TCP dial so callers can cancel the handshake setup.
	var dialer net.Dialer
	tcpConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrap("dial", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(tcpConn, addr, sshCfg)
	if err != nil {
		tcpConn.Close()
		return fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}

	d.client = ssh.NewClient(sshConn, chans, reqs)
	d.logger.Verbose("ssh gateway %s connected", addr)
	return nil
}

// Dial connects to address through the gateway, lazily establishing
// the SSH connection on the first call.
func (d *SSHDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.connect(ctx); err != nil {
		return nil, err
	}

	d.logger.Debug("ssh: forwarding to %s %s", network, address)
	conn, err := d.client.Dial(network, address)
	if err != nil {
		return nil, errors.Wrap("dial", address, err)
	}
	return conn, nil
}

// Close tears down the gateway connection.
func (d *SSHDialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	return err
}
