package codec

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/MKhiriev/go-chat-tui/models"
)

// Kind classifies a decoded inbound frame.
type Kind int

const (
	KindUnknown Kind = iota
	KindChatMessage
	KindPing
	KindPong
	KindAuthFailure
	KindNotice
	KindJoin
	KindReconnect
	KindNumeric
)

var kindNames = [...]string{
	KindUnknown:     "unknown",
	KindChatMessage: "chat_message",
	KindPing:        "ping",
	KindPong:        "pong",
	KindAuthFailure: "auth_failure",
	KindNotice:      "notice",
	KindJoin:        "join",
	KindReconnect:   "reconnect",
	KindNumeric:     "numeric",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Numerics the session reacts to.
const (
	RplWelcome    = 1
	RplEndOfNames = 366
)

// authFailureTexts are the NOTICE bodies the server sends when it rejects
// PASS/NICK.
var authFailureTexts = []string{
	"login authentication failed",
	"improperly formatted auth",
	"invalid nick",
}

// Event is a classified inbound frame. Only the fields relevant to Kind are
// set.
type Event struct {
	Kind  Kind
	Frame Frame

	// Line is set for KindChatMessage.
	Line models.ChatLine
	// Channel is set for KindChatMessage, KindJoin and RplEndOfNames.
	Channel models.ChannelName
	// Nick is the prefix nick for KindJoin and KindChatMessage.
	Nick string
	// Payload is the keep-alive challenge for KindPing and KindPong.
	Payload string
	// Text is the notice body for KindNotice and KindAuthFailure.
	Text string
	// Numeric is the reply code for KindNumeric.
	Numeric int
}

// Decoder classifies frames and hands out chat line sequence numbers. It is
// safe for concurrent use.
type Decoder struct {
	seq atomic.Uint64
}

// NewDecoder returns a Decoder whose first chat line gets Seq 1.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode parses one raw frame. Malformed frames return a *DecodeError;
// well-formed frames with an unhandled command return KindUnknown.
func (d *Decoder) Decode(raw []byte) (Event, error) {
	line := strings.TrimRight(string(raw), "\r\n")
	f, err := ParseFrame(line)
	if err != nil {
		return Event{}, &DecodeError{Raw: line, Err: err}
	}

	ev, err := d.classify(f)
	if err != nil {
		return Event{}, &DecodeError{Raw: line, Err: err}
	}
	return ev, nil
}

// LocalLine builds the chat line for a message this client sent, drawing its
// sequence number from the same counter as decoded lines.
func (d *Decoder) LocalLine(sender, body string) models.ChatLine {
	return models.NewChatLine(sender, body, d.seq.Add(1))
}

func (d *Decoder) classify(f Frame) (Event, error) {
	ev := Event{Frame: f}

	switch f.Command {
	case "PRIVMSG":
		sender := f.Nick()
		if sender == "" {
			return Event{}, ErrMissingSender
		}
		if len(f.Params) != 2 || !strings.HasPrefix(f.Params[0], "#") {
			return Event{}, ErrBadParams
		}
		if name := f.Tags["display-name"]; name != "" {
			sender = name
		}
		ev.Kind = KindChatMessage
		ev.Nick = f.Nick()
		ev.Channel = wireChannel(f.Params[0])
		ev.Line = models.NewChatLine(sender, f.Params[1], d.seq.Add(1))
	case "PING":
		if len(f.Params) == 0 {
			return Event{}, ErrNoParams
		}
		ev.Kind = KindPing
		ev.Payload = f.Trailing()
	case "PONG":
		ev.Kind = KindPong
		ev.Payload = f.Trailing()
	case "NOTICE":
		if len(f.Params) == 0 {
			return Event{}, ErrNoParams
		}
		ev.Text = f.Trailing()
		ev.Kind = KindNotice
		if isAuthFailure(ev.Text) {
			ev.Kind = KindAuthFailure
		}
	case "JOIN":
		if len(f.Params) == 0 {
			return Event{}, ErrNoParams
		}
		ev.Kind = KindJoin
		ev.Nick = f.Nick()
		ev.Channel = wireChannel(f.Params[0])
	case "RECONNECT":
		ev.Kind = KindReconnect
	default:
		code, ok := numeric(f.Command)
		if !ok {
			ev.Kind = KindUnknown
			return ev, nil
		}
		ev.Kind = KindNumeric
		ev.Numeric = code
		if code == RplEndOfNames && len(f.Params) >= 2 {
			ev.Channel = wireChannel(f.Params[1])
		}
	}

	return ev, nil
}

func wireChannel(p string) models.ChannelName {
	return models.ChannelName(strings.ToLower(strings.TrimPrefix(p, "#")))
}

func isAuthFailure(text string) bool {
	lower := strings.ToLower(text)
	for _, s := range authFailureTexts {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func numeric(cmd string) (int, bool) {
	if len(cmd) != 3 {
		return 0, false
	}
	code, err := strconv.Atoi(cmd)
	if err != nil || code < 0 {
		return 0, false
	}
	return code, true
}
