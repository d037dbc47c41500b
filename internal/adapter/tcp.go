package adapter

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"
)

// DialerConfig configures the TCP dialer.
type DialerConfig struct {
	Address Address
	Timeout time.Duration
	// TLSConfig overrides the default TLS client configuration. ServerName
	// defaults to the address host.
	TLSConfig *tls.Config
}

type tcpDialer struct {
	addr    Address
	timeout time.Duration
	tls     *tls.Config
}

// NewDialer returns a Dialer that connects over TCP and performs a TLS
// handshake when cfg.Address.TLS is set. A non-positive timeout defaults to
// 10 seconds.
func NewDialer(cfg DialerConfig) Dialer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	tlsCfg := cfg.TLSConfig
	if tlsCfg == nil {
		tlsCfg = &tls.Config{MinVersion: tls.VersionTLS12}
	} else {
		tlsCfg = tlsCfg.Clone()
	}
	if tlsCfg.ServerName == "" {
		tlsCfg.ServerName = cfg.Address.Host
	}

	return &tcpDialer{addr: cfg.Address, timeout: cfg.Timeout, tls: tlsCfg}
}

func (d *tcpDialer) Dial(ctx context.Context) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var (
		conn net.Conn
		err  error
	)
	if d.addr.TLS {
		td := &tls.Dialer{Config: d.tls}
		conn, err = td.DialContext(ctx, "tcp", d.addr.HostPort())
	} else {
		var nd net.Dialer
		conn, err = nd.DialContext(ctx, "tcp", d.addr.HostPort())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDial, d.addr, err)
	}
	return conn, nil
}

func (d *tcpDialer) Address() Address {
	return d.addr
}
