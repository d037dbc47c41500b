package codec

import (
	"strings"

	"github.com/MKhiriev/go-chat-tui/models"
)

// MaxBodyBytes is the largest chat message body, in bytes of UTF-8, the
// server accepts.
const MaxBodyBytes = 500

const crlf = "\r\n"

// ValidateBody normalizes an outgoing body the way EncodeChatMessage does and
// reports whether it can be sent. Line breaks become spaces, then the body is
// trimmed.
func ValidateBody(body string) (string, error) {
	body = strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return ' '
		}
		return r
	}, body)
	body = strings.TrimSpace(body)

	if body == "" {
		return "", ErrEmptyBody
	}
	if len(body) > MaxBodyBytes {
		return "", ErrTooLong
	}
	return body, nil
}

// EncodeChatMessage returns the PRIVMSG frame for body in channel.
func EncodeChatMessage(channel models.ChannelName, body string) ([]byte, error) {
	body, err := ValidateBody(body)
	if err != nil {
		return nil, err
	}
	return []byte("PRIVMSG " + channel.Target() + " :" + body + crlf), nil
}

// EncodeKeepAliveResponse echoes a keep-alive challenge payload.
func EncodeKeepAliveResponse(payload []byte) []byte {
	return []byte("PONG :" + string(payload) + crlf)
}

// EncodePass returns the PASS frame.
func EncodePass(password string) []byte {
	return []byte("PASS " + password + crlf)
}

// EncodeNick returns the NICK frame.
func EncodeNick(nick string) []byte {
	return []byte("NICK " + nick + crlf)
}

// EncodeJoin returns the JOIN frame for channel.
func EncodeJoin(channel models.ChannelName) []byte {
	return []byte("JOIN " + channel.Target() + crlf)
}

// Capabilities requested during the handshake: tags carry display names and
// commands enables RECONNECT.
const Capabilities = "twitch.tv/tags twitch.tv/commands"

// EncodeCapReq returns the CAP REQ frame for caps.
func EncodeCapReq(caps string) []byte {
	return []byte("CAP REQ :" + caps + crlf)
}
