package interaction

import (
	"fmt"

	"github.com/MKhiriev/go-chat-tui/internal/codec"
	"github.com/MKhiriev/go-chat-tui/internal/service"
	"github.com/MKhiriev/go-chat-tui/internal/store"
	"github.com/MKhiriev/go-chat-tui/models"
)

// RowCounter reports how many screen rows line takes when wrapped to width
// cells.
type RowCounter func(line models.ChatLine, width int) int

// Machine owns all interactive state. It is not safe for concurrent use.
type Machine struct {
	channel   models.ChannelName
	anonymous bool

	mode   Mode
	input  InputBuffer
	scroll int
	width  int
	height int
	lines  *store.Scrollback
	rows   RowCounter

	conn       ConnStatus
	notice     Notice
	alert      Notice
	noticeSeq  int
	keepAlives int
}

// NewMachine returns a Machine in Normal mode, pinned to the latest line and
// waiting for the session to connect.
func NewMachine(channel models.ChannelName, lines *store.Scrollback, anonymous bool) *Machine {
	return &Machine{
		channel:   channel,
		anonymous: anonymous,
		lines:     lines,
		conn:      ConnStatus{Phase: PhaseConnecting},
	}
}

// Apply consumes one input and returns the side effect it requests.
func (m *Machine) Apply(in Input) Effect {
	switch in := in.(type) {
	case KeyPress:
		return m.applyKey(in.Key)
	case SessionInput:
		m.applySessionEvent(in.Event)
	case Resize:
		m.resize(max(0, in.Width), max(0, in.Height))
	case SendResult:
		if in.Err != nil {
			m.setNotice(Notice{Err: fmt.Errorf("message not sent: %w", in.Err)})
		}
	case StatusExpired:
		if in.ID == m.notice.ID {
			m.notice = Notice{}
		}
	}
	return noEffect
}

// SetRowCounter makes scrolling count the rows lines take on screen instead
// of one row per line. A nil rows restores one row per line.
func (m *Machine) SetRowCounter(rows RowCounter) {
	m.rows = rows
	m.clampScroll()
}

// Snapshot returns the render-ready view of the current state.
func (m *Machine) Snapshot() Snapshot {
	w := m.lines.Window(m.scroll, m.height, m.rowCounter())
	return Snapshot{
		Mode:           m.mode,
		Input:          m.input.String(),
		Cursor:         m.input.Cursor(),
		Lines:          w.Lines,
		BelowRows:      w.Below,
		NewerLines:     w.Newer,
		Conn:           m.conn,
		Notice:         m.currentNotice(),
		Channel:        m.channel,
		Anonymous:      m.anonymous,
		ScrollPosition: m.scroll,
		TotalLines:     m.lines.TotalLines(),
		KeepAlives:     m.keepAlives,
		Width:          m.width,
		Height:         m.height,
	}
}

func (m *Machine) applyKey(k Key) Effect {
	if k.Type == KeyForceQuit {
		return Effect{Kind: EffectQuit}
	}

	if m.mode == ModeInsert {
		return m.applyInsertKey(k)
	}
	return m.applyNormalKey(k)
}

func (m *Machine) applyNormalKey(k Key) Effect {
	switch k.Type {
	case KeyRune:
		switch k.Rune {
		case 'q':
			return Effect{Kind: EffectQuit}
		case 'i':
			m.mode = ModeInsert
		case 'k':
			m.scrollBy(1)
		case 'j':
			m.scrollBy(-1)
		case 'g':
			m.scrollTo(store.MaxPosition(m.totalRows(), m.height))
		case 'G':
			m.scrollTo(0)
		}
	case KeyUp:
		m.scrollBy(1)
	case KeyDown:
		m.scrollBy(-1)
	case KeyPgUp:
		m.scrollBy(max(1, m.height))
	case KeyPgDown:
		m.scrollBy(-max(1, m.height))
	case KeyHome:
		m.scrollTo(store.MaxPosition(m.totalRows(), m.height))
	case KeyEnd:
		m.scrollTo(0)
	}
	return noEffect
}

func (m *Machine) applyInsertKey(k Key) Effect {
	switch k.Type {
	case KeyRune:
		if !k.Alt {
			m.input.Insert(k.Rune)
		}
	case KeyBackspace:
		if k.Alt {
			m.input.DeleteWord()
		} else {
			m.input.Backspace()
		}
	case KeyDelete:
		m.input.Delete()
	case KeyLeft:
		m.input.Left()
	case KeyRight:
		m.input.Right()
	case KeyHome:
		m.input.Home()
	case KeyEnd:
		m.input.End()
	case KeyClearLine:
		m.input.Clear()
	case KeyEsc:
		m.mode = ModeNormal
	case KeyEnter:
		return m.submit()
	}
	return noEffect
}

// submit validates the pending line and requests a send. The line is cleared
// without appending it to the scrollback; the echoed message does that.
// Invalid lines stay in the buffer for correction.
func (m *Machine) submit() Effect {
	if m.input.Len() == 0 {
		return noEffect
	}

	body, err := codec.ValidateBody(m.input.String())
	if err != nil {
		m.setNotice(Notice{Err: err})
		return noEffect
	}

	m.input.Clear()
	return Effect{Kind: EffectSend, Body: body}
}

func (m *Machine) applySessionEvent(ev models.SessionEvent) {
	switch ev := ev.(type) {
	case models.MessageReceived:
		m.lines.Append(ev.Line)
		// keep the same lines on screen while the user reads history
		if m.scroll > 0 {
			m.scroll += m.lineRows(ev.Line)
		}
		m.clampScroll()
	case models.ConnectionEstablished:
		m.conn = ConnStatus{Phase: PhaseJoined, ConnID: ev.ConnID}
	case models.ConnectionLost:
		m.conn = ConnStatus{
			Phase:   PhaseDisconnected,
			Attempt: ev.Attempt,
			RetryIn: ev.RetryIn,
			Reason:  ev.Reason,
		}
	case models.KeepAliveReceived:
		m.keepAlives++
	case models.AuthenticationFailed:
		if ev.Fallback {
			m.anonymous = true
			m.setNotice(Notice{
				Text:       "authentication failed (" + ev.Reason + "), continuing anonymously",
				Persistent: true,
			})
			return
		}
		m.conn = ConnStatus{Phase: PhaseAuthFailed, Reason: ev.Reason}
		m.setNotice(Notice{
			Err:        fmt.Errorf("%w: %s", service.ErrAuthenticationFailed, ev.Reason),
			Persistent: true,
		})
	case models.Notice:
		m.setNotice(Notice{Text: ev.Text})
	}
}

// setNotice shows n. Persistent notices are kept apart so that a transient
// notice only hides them until it expires.
func (m *Machine) setNotice(n Notice) {
	m.noticeSeq++
	n.ID = m.noticeSeq
	if n.Persistent {
		m.alert = n
		m.notice = Notice{}
		return
	}
	m.notice = n
}

func (m *Machine) currentNotice() Notice {
	if m.notice.Empty() {
		return m.alert
	}
	return m.notice
}

func (m *Machine) scrollBy(delta int) {
	if m.totalRows() <= m.height {
		return
	}
	m.scrollTo(m.scroll + delta)
}

func (m *Machine) scrollTo(position int) {
	m.scroll = store.ClampPosition(position, m.totalRows(), m.height)
}

func (m *Machine) clampScroll() {
	if m.scroll == 0 {
		return
	}
	m.scrollTo(m.scroll)
}

// resize keeps the rows hidden above the viewport constant so the topmost
// visible row stays put. A view pinned to the newest line stays pinned.
func (m *Machine) resize(width, height int) {
	if m.scroll == 0 {
		m.width, m.height = width, height
		return
	}

	above := m.totalRows() - m.scroll - m.height
	m.width, m.height = width, height
	m.scrollTo(m.totalRows() - m.height - above)
}

func (m *Machine) totalRows() int {
	return m.lines.TotalRows(m.rowCounter())
}

func (m *Machine) lineRows(line models.ChatLine) int {
	if m.rows == nil {
		return 1
	}
	return max(1, m.rows(line, m.width))
}

func (m *Machine) rowCounter() store.RowCounter {
	if m.rows == nil {
		return nil
	}
	return m.lineRows
}
