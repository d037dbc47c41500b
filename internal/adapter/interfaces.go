// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport used by the chat session.
//
// The primary abstraction is [Dialer], which opens a bidirectional byte
// stream to the chat server. The package ships a TCP implementation that
// wraps the connection in TLS for ircs:// addresses ([NewDialer]).
//
// Addresses are parsed by [ParseAddress]; malformed input is reported as
// [ErrInvalidAddress] so that callers can use [errors.Is].
package adapter

import (
	"context"
	"net"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/dialer_mock.go -package=mock

// Dialer opens connections to the chat server.
type Dialer interface {
	// Dial connects to the configured server. The returned connection is owned
	// by the caller, who must close it. Dial honours ctx cancellation and the
	// configured dial timeout, whichever comes first.
	Dial(ctx context.Context) (net.Conn, error)

	// Address returns the server address the dialer connects to.
	Address() Address
}
