package models

// ChatLine is a single chat message received from the wire (or echoed
// locally after a successful send). It is never mutated after construction.
type ChatLine struct {
	// Sender is the nick of the author.
	Sender string
	// Body is the message text with the protocol framing removed.
	Body string
	// Seq is a monotonically increasing sequence number assigned when the
	// line was decoded or echoed. Lines reach the event stream in Seq order.
	Seq uint64
}

// NewChatLine constructs a ChatLine.
func NewChatLine(sender, body string, seq uint64) ChatLine {
	return ChatLine{Sender: sender, Body: body, Seq: seq}
}
