package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-chat-tui/internal/adapter"
	"github.com/MKhiriev/go-chat-tui/internal/codec"
	"github.com/MKhiriev/go-chat-tui/internal/logger"
	"github.com/MKhiriev/go-chat-tui/internal/utils"
	"github.com/MKhiriev/go-chat-tui/models"
	"github.com/sethvargo/go-retry"
)

// EchoMode selects who appends the user's own messages to the scrollback.
type EchoMode string

const (
	// EchoLocal emits a MessageReceived after every successful send. Twitch
	// does not echo a sender's own PRIVMSG back.
	EchoLocal EchoMode = "local"
	// EchoServer relies on the server echoing sent messages.
	EchoServer EchoMode = "server"
)

const (
	anonymousNickPrefix = "justinfan"
	defaultEventBuffer  = 256
	maxFrameBytes       = 16 * 1024
)

// SessionConfig configures a chat session. A nil Credential means an
// anonymous, receive-only session.
type SessionConfig struct {
	Credential        *models.Credential
	Channel           models.ChannelName
	Echo              EchoMode
	AnonymousFallback bool

	ReadTimeout      time.Duration
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration

	Backoff     BackoffConfig
	EventBuffer int
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.Channel == "" {
		c.Channel = models.DefaultChannel
	}
	if c.Echo == "" {
		c.Echo = EchoLocal
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 6 * time.Minute
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 15 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = defaultEventBuffer
	}
	c.Backoff = c.Backoff.withDefaults()
	return c
}

type chatSession struct {
	dialer  adapter.Dialer
	cfg     SessionConfig
	decoder *codec.Decoder
	log     *logger.Logger

	events chan models.SessionEvent
	done   chan struct{}

	mu         sync.Mutex
	credential *models.Credential
	nick       string
	conn       net.Conn
	status     Status

	writeMu sync.Mutex
	// orderMu makes numbering a line and queueing it one step, so received
	// lines and local echoes reach the events channel in Seq order.
	orderMu sync.Mutex
}

// NewChatSession returns a session that connects through dialer. Nothing is
// dialed until Connect or Run is called.
func NewChatSession(dialer adapter.Dialer, cfg SessionConfig, log *logger.Logger) ChatSession {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logger.Nop()
	}

	s := &chatSession{
		dialer:     dialer,
		cfg:        cfg,
		decoder:    codec.NewDecoder(),
		log:        log,
		events:     make(chan models.SessionEvent, cfg.EventBuffer),
		done:       make(chan struct{}),
		credential: cfg.Credential,
	}
	s.nick = s.nickFor(cfg.Credential)
	return s
}

func (s *chatSession) Events() <-chan models.SessionEvent {
	return s.events
}

func (s *chatSession) Done() <-chan struct{} {
	return s.done
}

func (s *chatSession) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *chatSession) Connect(ctx context.Context) error {
	conn, err := s.connect(ctx)
	if err != nil {
		s.setStatus(Status{State: StateDisconnected, Err: err})
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	return nil
}

func (s *chatSession) Run(ctx context.Context) error {
	defer close(s.done)

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	var (
		backoff = s.cfg.Backoff.newBackoff()
		attempt int
		delay   time.Duration
	)

	for {
		if conn == nil {
			if !sleepCtx(ctx, delay) {
				s.setStatus(Status{State: StateDisconnected})
				return nil
			}

			c, err := s.connect(ctx)
			if err != nil {
				if ctx.Err() != nil {
					s.setStatus(Status{State: StateDisconnected})
					return nil
				}
				attempt++
				delay = s.scheduleRetry(ctx, backoff, attempt, err)
				continue
			}
			s.mu.Lock()
			s.conn = c
			s.mu.Unlock()
			conn = c
		}

		joined, err := s.serve(ctx, conn)
		conn = nil
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()

		switch {
		case ctx.Err() != nil:
			s.setStatus(Status{State: StateDisconnected})
			s.log.Info().Msg("session stopped")
			return nil
		case errors.Is(err, ErrAuthenticationFailed):
			if !s.fallbackToAnonymous() {
				s.setStatus(Status{State: StateFailed, Err: err})
				s.log.Error().Err(err).Msg("authentication failed, not retrying")
				return nil
			}
			backoff, attempt, delay = s.cfg.Backoff.newBackoff(), 0, 0
			continue
		}

		if joined {
			backoff, attempt = s.cfg.Backoff.newBackoff(), 0
		}
		attempt++

		if errors.Is(err, errReconnectRequested) {
			delay = 0
			s.setStatus(Status{State: StateDisconnected, Attempt: attempt, NextRetryAt: time.Now(), Err: err})
			s.log.Warn().Int("attempt", attempt).Msg("server requested reconnect")
			if !s.emit(ctx, models.ConnectionLost{Reason: err.Error(), Attempt: attempt}) {
				s.setStatus(Status{State: StateDisconnected})
				return nil
			}
			continue
		}

		delay = s.scheduleRetry(ctx, backoff, attempt, err)
	}
}

func (s *chatSession) Send(ctx context.Context, body string) error {
	s.mu.Lock()
	anonymous := s.credential == nil
	s.mu.Unlock()
	if anonymous {
		return ErrAnonymous
	}

	body, err := codec.ValidateBody(body)
	if err != nil {
		return err
	}
	frame, err := codec.EncodeChatMessage(s.cfg.Channel, body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	conn, state, nick := s.conn, s.status.State, s.nick
	s.mu.Unlock()
	if state != StateJoined || conn == nil {
		return ErrNotConnected
	}

	if err = s.write(conn, frame); err != nil {
		// the receive loop sees the closed conn and reconnects
		_ = conn.Close()
		return &TransportError{Op: "write", Err: err}
	}

	if s.cfg.Echo == EchoLocal {
		s.orderMu.Lock()
		s.emit(ctx, models.MessageReceived{Line: s.decoder.LocalLine(nick, body)})
		s.orderMu.Unlock()
	}
	return nil
}

// connect dials and writes the handshake. Anonymous sessions are joined as
// soon as the handshake is written; authenticated ones wait for the join
// acknowledgement in serve.
func (s *chatSession) connect(ctx context.Context) (net.Conn, error) {
	s.setStatus(Status{State: StateConnecting})
	s.log.Debug().Str("addr", s.dialer.Address().String()).Msg("dialing")

	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}

	connID := utils.NewConnID()
	s.setStatus(Status{State: StateAuthenticating, ConnID: connID})

	s.mu.Lock()
	cred, nick := s.credential, s.nick
	s.mu.Unlock()

	frames := [][]byte{codec.EncodeCapReq(codec.Capabilities)}
	if cred != nil {
		frames = append(frames, codec.EncodePass(cred.Password()))
	}
	frames = append(frames, codec.EncodeNick(nick), codec.EncodeJoin(s.cfg.Channel))

	for _, f := range frames {
		if err = s.write(conn, f); err != nil {
			_ = conn.Close()
			return nil, &TransportError{Op: "handshake", Err: err}
		}
	}

	s.log.Info().
		Str("conn_id", connID).
		Str("nick", nick).
		Str("channel", s.cfg.Channel.String()).
		Bool("anonymous", cred == nil).
		Msg("handshake sent")

	if cred == nil {
		s.markJoined(ctx)
	}
	return conn, nil
}

// serve runs the receive loop on conn until it fails, then closes conn. It
// reports whether the channel was joined on this connection.
func (s *chatSession) serve(ctx context.Context, conn net.Conn) (bool, error) {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	err := s.receive(ctx, conn)
	return s.Status().State == StateJoined, err
}

func (s *chatSession) receive(ctx context.Context, conn net.Conn) error {
	reader := bufio.NewReaderSize(conn, maxFrameBytes)
	for {
		timeout := s.cfg.HandshakeTimeout
		if s.Status().State == StateJoined {
			timeout = s.cfg.ReadTimeout
		}
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return &TransportError{Op: "read", Err: err}
		}

		raw, err := reader.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			s.log.Debug().Int("bytes", len(raw)).Msg("dropping oversized frame")
			if err = discardLine(reader); err != nil {
				return &TransportError{Op: "read", Err: err}
			}
			continue
		}
		if err != nil {
			return &TransportError{Op: "read", Err: err}
		}

		s.orderMu.Lock()
		err = s.handleFrame(ctx, conn, raw)
		s.orderMu.Unlock()
		if err != nil {
			return err
		}
	}
}

func (s *chatSession) handleFrame(ctx context.Context, conn net.Conn, raw []byte) error {
	ev, err := s.decoder.Decode(raw)
	if err != nil {
		s.log.Debug().Err(err).Msg("dropping malformed frame")
		return nil
	}

	switch ev.Kind {
	case codec.KindChatMessage:
		if ev.Channel != s.cfg.Channel {
			return nil
		}
		s.emit(ctx, models.MessageReceived{Line: ev.Line})
	case codec.KindPing:
		if err = s.write(conn, codec.EncodeKeepAliveResponse([]byte(ev.Payload))); err != nil {
			return &TransportError{Op: "keep-alive", Err: err}
		}
		s.emit(ctx, models.KeepAliveReceived{Payload: ev.Payload})
	case codec.KindAuthFailure:
		s.mu.Lock()
		fallback := s.cfg.AnonymousFallback && s.credential != nil
		s.mu.Unlock()
		s.emit(ctx, models.AuthenticationFailed{Reason: ev.Text, Fallback: fallback})
		return fmt.Errorf("%w: %s", ErrAuthenticationFailed, ev.Text)
	case codec.KindNotice:
		s.emit(ctx, models.Notice{Text: ev.Text})
	case codec.KindJoin:
		s.mu.Lock()
		own := strings.EqualFold(ev.Nick, s.nick)
		s.mu.Unlock()
		if own && ev.Channel == s.cfg.Channel {
			s.markJoined(ctx)
		}
	case codec.KindNumeric:
		if ev.Numeric == codec.RplEndOfNames && ev.Channel == s.cfg.Channel {
			s.markJoined(ctx)
		}
	case codec.KindReconnect:
		return errReconnectRequested
	default:
		s.log.Debug().Str("command", ev.Frame.Command).Msg("ignoring frame")
	}
	return nil
}

func (s *chatSession) markJoined(ctx context.Context) {
	s.mu.Lock()
	if s.status.State == StateJoined {
		s.mu.Unlock()
		return
	}
	s.status = Status{State: StateJoined, ConnID: s.status.ConnID}
	connID := s.status.ConnID
	s.mu.Unlock()

	s.log.Info().Str("conn_id", connID).Str("channel", s.cfg.Channel.String()).Msg("joined")
	s.emit(ctx, models.ConnectionEstablished{ConnID: connID, Channel: s.cfg.Channel})
}

// scheduleRetry records the Disconnected state for attempt, emits
// ConnectionLost and returns the delay before the next attempt.
func (s *chatSession) scheduleRetry(ctx context.Context, backoff retry.Backoff, attempt int, cause error) time.Duration {
	delay := s.cfg.Backoff.nextDelay(backoff)

	s.setStatus(Status{
		State:       StateDisconnected,
		Attempt:     attempt,
		NextRetryAt: time.Now().Add(delay),
		Err:         cause,
	})
	s.log.Warn().
		Err(cause).
		Int("attempt", attempt).
		Dur("retry_in", delay).
		Msg("connection lost, reconnect scheduled")

	s.emit(ctx, models.ConnectionLost{Reason: cause.Error(), Attempt: attempt, RetryIn: delay})
	return delay
}

// fallbackToAnonymous drops the credential if the session is configured to
// continue anonymously after an authentication failure.
func (s *chatSession) fallbackToAnonymous() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cfg.AnonymousFallback || s.credential == nil {
		return false
	}
	s.credential = nil
	s.nick = s.nickFor(nil)
	s.log.Warn().Str("nick", s.nick).Msg("continuing anonymously")
	return true
}

func (s *chatSession) nickFor(cred *models.Credential) string {
	if cred != nil {
		return cred.Nick()
	}
	return fmt.Sprintf("%s%05d", anonymousNickPrefix, rand.IntN(100000))
}

func (s *chatSession) write(conn net.Conn, frame []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
		return err
	}
	_, err := conn.Write(frame)
	return err
}

// emit delivers ev in order. It applies backpressure to the caller instead of
// dropping events and gives up only when ctx ends.
func (s *chatSession) emit(ctx context.Context, ev models.SessionEvent) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *chatSession) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()

	s.log.Debug().
		Stringer("state", st.State).
		Str("conn_id", st.ConnID).
		Int("attempt", st.Attempt).
		Msg("session state")
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func discardLine(r *bufio.Reader) error {
	for {
		_, err := r.ReadSlice('\n')
		if !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}
