package tui

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-chat-tui/internal/interaction"
	"github.com/MKhiriev/go-chat-tui/internal/logger"
	"github.com/MKhiriev/go-chat-tui/internal/service"
	"github.com/MKhiriev/go-chat-tui/models"
	tea "github.com/charmbracelet/bubbletea"
)

// Session is the part of the chat session the UI talks to.
type Session interface {
	service.ChatSender
	service.EventSource
}

// TUI runs the chat screen until the user quits or ctx is cancelled.
type TUI struct {
	machine *interaction.Machine
	session Session
	info    models.AppBuildInfo
	log     *logger.Logger
	opts    []tea.ProgramOption
}

func New(machine *interaction.Machine, session Session, info models.AppBuildInfo, log *logger.Logger, opts ...tea.ProgramOption) *TUI {
	if log == nil {
		log = logger.Nop()
	}
	return &TUI{
		machine: machine,
		session: session,
		info:    info,
		log:     log,
		opts:    opts,
	}
}

// Run blocks until the program exits. A quit requested by the user, an
// interrupt and a cancelled ctx all return nil.
func (t *TUI) Run(ctx context.Context) error {
	model := NewModel(ctx, t.machine, t.session, t.info, t.log)

	opts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, t.opts...)
	_, err := tea.NewProgram(model, opts...).Run()
	switch {
	case err == nil, errors.Is(err, tea.ErrInterrupted):
	case errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil:
		return nil
	default:
		return err
	}

	t.log.Debug().Msg("chat screen closed")
	return nil
}
