package interaction

import (
	"time"

	"github.com/MKhiriev/go-chat-tui/models"
)

// Mode governs whether keys are commands or text.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
)

func (m Mode) String() string {
	if m == ModeInsert {
		return "insert"
	}
	return "normal"
}

// ConnPhase is the connection state as far as the user is concerned.
type ConnPhase int

const (
	PhaseConnecting ConnPhase = iota
	PhaseJoined
	PhaseDisconnected
	PhaseAuthFailed
)

// ConnStatus is the latest connection status reported by the session.
type ConnStatus struct {
	Phase   ConnPhase
	ConnID  string
	Attempt int
	RetryIn time.Duration
	Reason  string
}

// Notice is a one-line message for the status bar. Persistent notices stay
// until replaced; others are cleared by a StatusExpired input carrying their
// ID.
type Notice struct {
	ID         int
	Text       string
	Err        error
	Persistent bool
}

// Empty reports whether there is nothing to show.
func (n Notice) Empty() bool {
	return n.Text == "" && n.Err == nil
}

// Snapshot is the read-only view handed to the render adapter after every
// state change.
type Snapshot struct {
	Mode           Mode
	Input          string
	Cursor         int
	Lines          []models.ChatLine
	// BelowRows rows of the last line in Lines are under the viewport.
	BelowRows      int
	NewerLines     int
	Conn           ConnStatus
	Notice         Notice
	Channel        models.ChannelName
	Anonymous      bool
	// ScrollPosition is counted in rows above the newest row.
	ScrollPosition int
	TotalLines     int
	KeepAlives     int
	Width          int
	Height         int
}
