package tui

import (
	"context"
	"time"

	"github.com/MKhiriev/go-chat-tui/internal/interaction"
	"github.com/MKhiriev/go-chat-tui/internal/logger"
	"github.com/MKhiriev/go-chat-tui/models"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// noticeTTL is how long a transient notice stays in the status bar.
const noticeTTL = 4 * time.Second

// Model adapts the interaction machine to bubbletea:
// 1) turns key, resize and session messages into machine inputs
// 2) performs the effects the machine asks for
// 3) paints the machine snapshot
//
// Sends are queued and issued one at a time so that messages leave in the
// order they were submitted.
type Model struct {
	ctx     context.Context
	machine *interaction.Machine
	session Session
	info    models.AppBuildInfo
	log     *logger.Logger

	spinner  spinner.Model
	spinning bool

	outbox  []string
	sending bool

	noticeID int
	closed   bool
	width    int
	height   int
}

func NewModel(ctx context.Context, machine *interaction.Machine, session Session, info models.AppBuildInfo, log *logger.Logger) Model {
	if log == nil {
		log = logger.Nop()
	}
	machine.SetRowCounter(lineRows)
	return Model{
		ctx:      ctx,
		machine:  machine,
		session:  session,
		info:     info,
		log:      log,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		spinning: true,
	}
}

// Init starts listening for session events. The spinner starts ticking here,
// which is why NewModel marks it as spinning.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listen(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.machine.Apply(interaction.Resize{Width: msg.Width, Height: chatRows(msg.Height)})
		return m, nil

	case tea.KeyMsg:
		for _, k := range translateKey(msg) {
			effect := m.machine.Apply(interaction.KeyPress{Key: k})
			switch effect.Kind {
			case interaction.EffectQuit:
				return m, tea.Quit
			case interaction.EffectSend:
				m.outbox = append(m.outbox, effect.Body)
			}
		}
		cmd := tea.Batch(m.flush(), m.expireNotice())
		return m, cmd

	case sessionEventMsg:
		m.machine.Apply(interaction.SessionInput{Event: msg.event})
		cmd := tea.Batch(m.listen(), m.expireNotice(), m.spin())
		return m, cmd

	case sessionClosedMsg:
		m.closed = true
		m.log.Debug().Msg("session event stream closed")
		return m, nil

	case sendResultMsg:
		m.sending = false
		if len(m.outbox) > 0 {
			m.outbox = m.outbox[1:]
		}
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("message not sent")
		}
		m.machine.Apply(interaction.SendResult{Body: msg.body, Err: msg.err})
		cmd := tea.Batch(m.flush(), m.expireNotice())
		return m, cmd

	case clearStatusMsg:
		m.machine.Apply(interaction.StatusExpired{ID: msg.id})
		return m, nil

	case spinner.TickMsg:
		if !m.needsSpinner() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	return renderScreen(m.machine.Snapshot(), m.info, m.spinner.View(), m.width, m.height)
}

// listen waits for the next session event. Events still buffered when the
// session stops are delivered before sessionClosedMsg.
func (m Model) listen() tea.Cmd {
	if m.closed || m.session == nil {
		return nil
	}
	ctx, events, done := m.ctx, m.session.Events(), m.session.Done()
	return func() tea.Msg {
		select {
		case ev := <-events:
			return sessionEventMsg{event: ev}
		case <-done:
			select {
			case ev := <-events:
				return sessionEventMsg{event: ev}
			default:
				return sessionClosedMsg{}
			}
		case <-ctx.Done():
			return sessionClosedMsg{}
		}
	}
}

// flush issues the oldest queued send unless one is already in flight.
func (m *Model) flush() tea.Cmd {
	if m.sending || len(m.outbox) == 0 {
		return nil
	}
	m.sending = true

	ctx, sender, body := m.ctx, m.session, m.outbox[0]
	return func() tea.Msg {
		return sendResultMsg{body: body, err: sender.Send(ctx, body)}
	}
}

// expireNotice schedules the removal of a freshly shown transient notice.
func (m *Model) expireNotice() tea.Cmd {
	n := m.machine.Snapshot().Notice
	if n.Empty() || n.Persistent || n.ID == m.noticeID {
		return nil
	}
	m.noticeID = n.ID

	id := n.ID
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func (m *Model) spin() tea.Cmd {
	if m.spinning || !m.needsSpinner() {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m Model) needsSpinner() bool {
	switch m.machine.Snapshot().Conn.Phase {
	case interaction.PhaseConnecting, interaction.PhaseDisconnected:
		return !m.closed
	}
	return false
}
