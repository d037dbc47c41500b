package service

import "time"

// State is the connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateJoined
	// StateFailed is terminal: the server rejected the credential and no
	// anonymous fallback was configured.
	StateFailed
)

var stateNames = [...]string{
	StateDisconnected:   "disconnected",
	StateConnecting:     "connecting",
	StateAuthenticating: "authenticating",
	StateJoined:         "joined",
	StateFailed:         "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Status is an inspectable snapshot of the session state. Attempt and
// NextRetryAt are set while Disconnected with a reconnect scheduled.
type Status struct {
	State       State
	ConnID      string
	Attempt     int
	NextRetryAt time.Time
	Err         error
}
