package interaction

import "github.com/MKhiriev/go-chat-tui/models"

// Input is anything Machine.Apply consumes. The concrete types below form a
// closed set.
type Input interface {
	input()
}

// KeyPress is a key from the key input adapter.
type KeyPress struct {
	Key Key
}

// SessionInput wraps an event produced by the chat session.
type SessionInput struct {
	Event models.SessionEvent
}

// Resize reports the size of the chat viewport in cells.
type Resize struct {
	Width  int
	Height int
}

// SendResult reports the outcome of an EffectSend.
type SendResult struct {
	Body string
	Err  error
}

// StatusExpired clears the notice with the given ID if it is still shown.
type StatusExpired struct {
	ID int
}

func (KeyPress) input()      {}
func (SessionInput) input()  {}
func (Resize) input()        {}
func (SendResult) input()    {}
func (StatusExpired) input() {}

// EffectKind is the closed set of side effects Apply may request.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectSend
	EffectQuit
)

// Effect is a side effect for the caller to perform. Body is set for
// EffectSend.
type Effect struct {
	Kind EffectKind
	Body string
}

var noEffect = Effect{Kind: EffectNone}
