package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-chat-tui/internal/adapter"
	"github.com/MKhiriev/go-chat-tui/internal/config"
	"github.com/MKhiriev/go-chat-tui/internal/interaction"
	"github.com/MKhiriev/go-chat-tui/internal/logger"
	"github.com/MKhiriev/go-chat-tui/internal/service"
	"github.com/MKhiriev/go-chat-tui/internal/store"
	"github.com/MKhiriev/go-chat-tui/internal/tui"
	"github.com/MKhiriev/go-chat-tui/internal/workers"
	"github.com/MKhiriev/go-chat-tui/models"
)

// ErrConnect is returned by Run when the first connection attempt fails.
var ErrConnect = errors.New("could not connect")

type App struct {
	session service.ChatSession
	ui      UI
	log     *logger.Logger
}

// NewApp builds every component from cfg.
func NewApp(cfg *config.ClientConfig, info models.AppBuildInfo, log *logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("nil client config")
	}
	if log == nil {
		log = logger.Nop()
	}

	dialer := adapter.NewDialer(adapter.DialerConfig{
		Address: cfg.Adapter.Address,
		Timeout: cfg.Adapter.DialTimeout,
	})

	session := service.NewChatSession(dialer, service.SessionConfig{
		Credential:        cfg.Credential,
		Channel:           cfg.Chat.Channel,
		Echo:              service.EchoMode(cfg.Chat.Echo),
		AnonymousFallback: cfg.Chat.AnonymousFallback,
		ReadTimeout:       cfg.Adapter.ReadTimeout,
		HandshakeTimeout:  cfg.Adapter.HandshakeTimeout,
		WriteTimeout:      cfg.Adapter.WriteTimeout,
		Backoff: service.BackoffConfig{
			Base:          cfg.Reconnect.Base,
			Cap:           cfg.Reconnect.Cap,
			JitterPercent: cfg.Reconnect.JitterPercent,
		},
	}, log.GetChildLogger())

	machine := interaction.NewMachine(cfg.Chat.Channel, store.NewScrollback(cfg.Chat.ScrollbackCapacity), cfg.Credential == nil)
	ui := tui.New(machine, session, info, log.GetChildLogger())

	log.Info().
		Str("address", dialer.Address().String()).
		Str("channel", cfg.Chat.Channel.String()).
		Bool("anonymous", cfg.Credential == nil).
		Msg("client configured")

	return newApp(session, ui, log), nil
}

func newApp(session service.ChatSession, ui UI, log *logger.Logger) *App {
	if log == nil {
		log = logger.Nop()
	}
	return &App{session: session, ui: ui, log: log}
}

// Run connects and then runs the session loop and the UI until the UI
// returns. A failed first connection is returned wrapped in ErrConnect and
// the UI is never started.
func (a *App) Run(ctx context.Context) error {
	if err := a.session.Connect(ctx); err != nil {
		a.log.Error().Err(err).Msg("initial connection failed")
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}

	ctx, cancel := context.WithCancel(a.log.WithContext(ctx))
	defer cancel()

	err := workers.New(
		workers.Func(a.session.Run),
		workers.Func(func(ctx context.Context) error {
			// the session has nobody to report to once the UI is gone
			defer cancel()
			return a.ui.Run(ctx)
		}),
	).Run(ctx)
	if err != nil {
		return fmt.Errorf("client run: %w", err)
	}

	a.log.Info().Msg("client stopped")
	return nil
}
