package models

import "time"

// SessionEvent is produced only by the chat session and consumed by the
// interaction state machine. The concrete types below form a closed set.
type SessionEvent interface {
	sessionEvent()
}

// MessageReceived carries a chat line decoded from the wire.
type MessageReceived struct {
	Line ChatLine
}

// ConnectionEstablished is emitted once the session has joined the channel.
type ConnectionEstablished struct {
	ConnID  string
	Channel ChannelName
}

// ConnectionLost is emitted when the transport fails and again for every
// failed reconnect attempt. Attempt counts from 1; RetryIn is the delay before
// the next attempt.
type ConnectionLost struct {
	Reason  string
	Attempt int
	RetryIn time.Duration
}

// KeepAliveReceived is emitted for every keep-alive challenge the session
// answered.
type KeepAliveReceived struct {
	Payload string
}

// AuthenticationFailed is emitted when the server rejects the credential.
// Fallback reports whether the session continues anonymously.
type AuthenticationFailed struct {
	Reason   string
	Fallback bool
}

// Notice carries a server notice that is not an authentication failure.
type Notice struct {
	Text string
}

func (MessageReceived) sessionEvent()       {}
func (ConnectionEstablished) sessionEvent() {}
func (ConnectionLost) sessionEvent()        {}
func (KeepAliveReceived) sessionEvent()     {}
func (AuthenticationFailed) sessionEvent()  {}
func (Notice) sessionEvent()                {}
