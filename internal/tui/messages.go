package tui

import (
	"github.com/MKhiriev/go-chat-tui/models"
)

type sessionEventMsg struct {
	event models.SessionEvent
}

// sessionClosedMsg is delivered once the session loop has returned and its
// pending events are drained.
type sessionClosedMsg struct{}

type sendResultMsg struct {
	body string
	err  error
}

type clearStatusMsg struct {
	id int
}
