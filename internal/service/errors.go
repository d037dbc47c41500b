package service

import (
	"errors"
	"fmt"
)

var (
	ErrAnonymous            = errors.New("anonymous session cannot send messages")
	ErrNotConnected         = errors.New("not connected")
	ErrAuthenticationFailed = errors.New("authentication failed")

	errReconnectRequested = errors.New("server requested reconnect")
)

// TransportError is a connection-level failure. It triggers the reconnect
// policy and never terminates the process.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
