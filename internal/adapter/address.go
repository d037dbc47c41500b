package adapter

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	SchemePlain = "irc"
	SchemeTLS   = "ircs"

	DefaultPlainPort = 6667
	DefaultTLSPort   = 6697
)

// Address is a parsed server address.
type Address struct {
	Host string
	Port int
	TLS  bool
}

// ParseAddress parses irc://host[:port] and ircs://host[:port]. A bare
// host[:port] without a scheme is treated as TLS. Missing ports default to
// 6667 for plain and 6697 for TLS connections.
func ParseAddress(raw string) (Address, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Address{}, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	if !strings.Contains(raw, "://") {
		raw = SchemeTLS + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	var addr Address
	switch strings.ToLower(u.Scheme) {
	case SchemePlain:
		addr.Port = DefaultPlainPort
	case SchemeTLS:
		addr.TLS = true
		addr.Port = DefaultTLSPort
	default:
		return Address{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidAddress, u.Scheme)
	}

	if u.Path != "" && u.Path != "/" {
		return Address{}, fmt.Errorf("%w: unexpected path %q", ErrInvalidAddress, u.Path)
	}

	addr.Host = u.Hostname()
	if addr.Host == "" {
		return Address{}, fmt.Errorf("%w: missing host", ErrInvalidAddress)
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return Address{}, fmt.Errorf("%w: bad port %q", ErrInvalidAddress, p)
		}
		addr.Port = port
	}

	return addr, nil
}

// HostPort returns the address in host:port form.
func (a Address) HostPort() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// String returns the address in URL form.
func (a Address) String() string {
	scheme := SchemePlain
	if a.TLS {
		scheme = SchemeTLS
	}
	return scheme + "://" + a.HostPort()
}
