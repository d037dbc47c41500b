// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service implements the chat session: the connection lifecycle,
// the receive loop, keep-alive replies and reconnection with backoff.
package service

import (
	"context"

	"github.com/MKhiriev/go-chat-tui/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/chat_session_mock.go -package=mock

// ChatSender sends chat messages to the joined channel.
type ChatSender interface {
	// Send encodes body and writes it to the server. It returns ErrAnonymous
	// without touching the transport when the session has no credential,
	// ErrNotConnected when the channel is not joined, a codec EncodeError for
	// invalid bodies and a *TransportError when the write fails.
	Send(ctx context.Context, body string) error
}

// EventSource is the consumer side of the session's event stream.
type EventSource interface {
	// Events returns the ordered event stream. It is never closed; consumers
	// stop reading when Done is closed or their context ends.
	Events() <-chan models.SessionEvent

	// Done is closed when Run has returned.
	Done() <-chan struct{}
}

// ChatSession is the full session contract used by the client.
type ChatSession interface {
	ChatSender
	EventSource

	// Connect dials the server and performs the login and join handshake.
	// A failure here is a startup failure; later failures are handled by Run.
	Connect(ctx context.Context) error

	// Run serves the connection opened by Connect, reconnecting with backoff
	// until ctx is cancelled or authentication fails terminally. It returns
	// nil in both cases.
	Run(ctx context.Context) error

	// Status returns a snapshot of the connection state.
	Status() Status
}
