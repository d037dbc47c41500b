package service_test

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/go-chat-tui/internal/adapter"
	"github.com/MKhiriev/go-chat-tui/internal/codec"
	"github.com/MKhiriev/go-chat-tui/internal/logger"
	"github.com/MKhiriev/go-chat-tui/internal/mock"
	"github.com/MKhiriev/go-chat-tui/internal/service"
	"github.com/MKhiriev/go-chat-tui/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

const waitFor = 2 * time.Second

// ── fake server ───────────────────────────────────────────────────────────────

// fakeServer is the server end of a net.Pipe. Every line the client writes
// is forwarded to lines.
type fakeServer struct {
	conn  net.Conn
	lines chan string
}

func newPipe(t *testing.T) (net.Conn, *fakeServer) {
	t.Helper()
	client, server := net.Pipe()
	fs := &fakeServer{conn: server, lines: make(chan string, 64)}

	go func() {
		defer close(fs.lines)
		r := bufio.NewReader(server)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			fs.lines <- strings.TrimRight(line, "\r\n")
		}
	}()

	t.Cleanup(func() { _ = server.Close() })
	return client, fs
}

func (f *fakeServer) expect(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-f.lines:
		assert.Equal(t, want, got)
	case <-time.After(waitFor):
		t.Fatalf("server did not receive %q", want)
	}
}

func (f *fakeServer) expectMatch(t *testing.T, pattern string) {
	t.Helper()
	select {
	case got := <-f.lines:
		assert.Regexp(t, pattern, got)
	case <-time.After(waitFor):
		t.Fatalf("server did not receive a line matching %q", pattern)
	}
}

func (f *fakeServer) send(t *testing.T, line string) {
	t.Helper()
	require.NoError(t, f.conn.SetWriteDeadline(time.Now().Add(waitFor)))
	_, err := f.conn.Write([]byte(line + "\r\n"))
	require.NoError(t, err)
}

func (f *fakeServer) expectAuthHandshake(t *testing.T, nick string) {
	t.Helper()
	f.expect(t, "CAP REQ :"+codec.Capabilities)
	f.expect(t, "PASS oauth:secret")
	f.expect(t, "NICK "+nick)
	f.expect(t, "JOIN #forsen")
}

func (f *fakeServer) expectAnonHandshake(t *testing.T) {
	t.Helper()
	f.expect(t, "CAP REQ :"+codec.Capabilities)
	f.expectMatch(t, `^NICK justinfan\d{5}$`)
	f.expect(t, "JOIN #forsen")
}

// ── helpers ───────────────────────────────────────────────────────────────────

func newDialer(t *testing.T) *mock.MockDialer {
	ctrl := gomock.NewController(t)
	d := mock.NewMockDialer(ctrl)
	d.EXPECT().Address().Return(adapter.Address{Host: "irc.example.org", Port: 6667}).AnyTimes()
	return d
}

func testConfig(cred *models.Credential) service.SessionConfig {
	return service.SessionConfig{
		Credential:       cred,
		Channel:          "forsen",
		ReadTimeout:      time.Minute,
		HandshakeTimeout: time.Minute,
		WriteTimeout:     time.Second,
		Backoff:          service.BackoffConfig{Base: 20 * time.Millisecond, Cap: 80 * time.Millisecond},
	}
}

func bob() *models.Credential {
	return &models.Credential{Username: "Bob", Token: "secret"}
}

func nextEvent(t *testing.T, s service.ChatSession) models.SessionEvent {
	t.Helper()
	select {
	case ev := <-s.Events():
		return ev
	case <-time.After(waitFor):
		t.Fatal("no session event")
		return nil
	}
}

func startRun(t *testing.T, s service.ChatSession) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()
	return cancel, errCh
}

func stopRun(t *testing.T, cancel context.CancelFunc, errCh <-chan error) {
	t.Helper()
	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Run did not return after cancel")
	}
}

// ── anonymous ─────────────────────────────────────────────────────────────────

func TestSession_AnonymousJoinsAfterHandshake(t *testing.T) {
	defer goleak.VerifyNone(t)

	client, srv := newPipe(t)
	d := newDialer(t)
	d.EXPECT().Dial(gomock.Any()).Return(client, nil).Times(1)

	s := service.NewChatSession(d, testConfig(nil), logger.Nop())

	done := make(chan error, 1)
	go func() { done <- s.Connect(context.Background()) }()
	srv.expectAnonHandshake(t)
	require.NoError(t, <-done)

	ev := nextEvent(t, s)
	established, ok := ev.(models.ConnectionEstablished)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, models.ChannelName("forsen"), established.Channel)
	assert.NotEmpty(t, established.ConnID)
	assert.Equal(t, service.StateJoined, s.Status().State)

	cancel, errCh := startRun(t, s)

	srv.send(t, "@display-name=Alice :alice!alice@alice.tmi.twitch.tv PRIVMSG #forsen :hello chat")
	ev = nextEvent(t, s)
	msg, ok := ev.(models.MessageReceived)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, "Alice", msg.Line.Sender)
	assert.Equal(t, "hello chat", msg.Line.Body)

	stopRun(t, cancel, errCh)
}

func TestSession_AnonymousSendNeverTouchesTransport(t *testing.T) {
	d := newDialer(t)
	// no Dial expectation: any call fails the test

	s := service.NewChatSession(d, testConfig(nil), logger.Nop())

	for _, body := range []string{"hello", "", strings.Repeat("x", 1000)} {
		assert.ErrorIs(t, s.Send(context.Background(), body), service.ErrAnonymous)
	}
}

// ── authenticated ─────────────────────────────────────────────────────────────

func TestSession_AuthenticatedJoinAndSend(t *testing.T) {
	defer goleak.VerifyNone(t)

	client, srv := newPipe(t)
	d := newDialer(t)
	d.EXPECT().Dial(gomock.Any()).Return(client, nil).Times(1)

	s := service.NewChatSession(d, testConfig(bob()), logger.Nop())

	done := make(chan error, 1)
	go func() { done <- s.Connect(context.Background()) }()
	srv.expectAuthHandshake(t, "bob")
	require.NoError(t, <-done)
	assert.Equal(t, service.StateAuthenticating, s.Status().State)

	assert.ErrorIs(t, s.Send(context.Background(), "too early"), service.ErrNotConnected)

	cancel, errCh := startRun(t, s)

	srv.send(t, ":tmi.twitch.tv 001 bob :Welcome, GLHF!")
	srv.send(t, ":bob!bob@bob.tmi.twitch.tv JOIN #forsen")
	_, ok := nextEvent(t, s).(models.ConnectionEstablished)
	require.True(t, ok)
	assert.Equal(t, service.StateJoined, s.Status().State)

	sent := make(chan error, 1)
	go func() { sent <- s.Send(context.Background(), "  hi there  ") }()
	srv.expect(t, "PRIVMSG #forsen :hi there")
	require.NoError(t, <-sent)

	ev := nextEvent(t, s)
	echo, ok := ev.(models.MessageReceived)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, "bob", echo.Line.Sender)
	assert.Equal(t, "hi there", echo.Line.Body)

	stopRun(t, cancel, errCh)
}

func TestSession_LocalEchoKeepsSequenceOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	client, srv := newPipe(t)
	d := newDialer(t)
	d.EXPECT().Dial(gomock.Any()).Return(client, nil).Times(1)

	s := service.NewChatSession(d, testConfig(bob()), logger.Nop())
	cancel, errCh := startRun(t, s)
	srv.expectAuthHandshake(t, "bob")
	srv.send(t, ":bob!bob@bob.tmi.twitch.tv JOIN #forsen")
	_, ok := nextEvent(t, s).(models.ConnectionEstablished)
	require.True(t, ok)

	const received, sent = 40, 20

	go func() {
		for i := 0; i < received; i++ {
			line := fmt.Sprintf(":alice!alice@alice.tmi.twitch.tv PRIVMSG #forsen :in %d\r\n", i)
			if _, err := srv.conn.Write([]byte(line)); err != nil {
				return
			}
		}
	}()

	sendErrs := make(chan error, sent)
	go func() {
		for i := 0; i < sent; i++ {
			sendErrs <- s.Send(context.Background(), fmt.Sprintf("out %d", i))
		}
	}()

	var last uint64
	for i := 0; i < received+sent; i++ {
		msg, ok := nextEvent(t, s).(models.MessageReceived)
		require.True(t, ok)
		assert.Greater(t, msg.Line.Seq, last, "line %q delivered out of sequence", msg.Line.Body)
		last = msg.Line.Seq
	}
	for i := 0; i < sent; i++ {
		require.NoError(t, <-sendErrs)
		srv.expectMatch(t, `^PRIVMSG #forsen :out \d+$`)
	}

	stopRun(t, cancel, errCh)
}

func TestSession_JoinedOnEndOfNames(t *testing.T) {
	defer goleak.VerifyNone(t)

	client, srv := newPipe(t)
	d := newDialer(t)
	d.EXPECT().Dial(gomock.Any()).Return(client, nil).Times(1)

	s := service.NewChatSession(d, testConfig(bob()), logger.Nop())
	cancel, errCh := startRun(t, s)
	srv.expectAuthHandshake(t, "bob")

	srv.send(t, ":bob.tmi.twitch.tv 366 bob #forsen :End of /NAMES list")
	_, ok := nextEvent(t, s).(models.ConnectionEstablished)
	assert.True(t, ok)

	stopRun(t, cancel, errCh)
}

func TestSession_ServerEcho(t *testing.T) {
	defer goleak.VerifyNone(t)

	client, srv := newPipe(t)
	d := newDialer(t)
	d.EXPECT().Dial(gomock.Any()).Return(client, nil).Times(1)

	cfg := testConfig(bob())
	cfg.Echo = service.EchoServer
	s := service.NewChatSession(d, cfg, logger.Nop())
	cancel, errCh := startRun(t, s)
	srv.expectAuthHandshake(t, "bob")
	srv.send(t, ":bob!bob@bob.tmi.twitch.tv JOIN #forsen")
	_, ok := nextEvent(t, s).(models.ConnectionEstablished)
	require.True(t, ok)

	sent := make(chan error, 1)
	go func() { sent <- s.Send(context.Background(), "hello") }()
	srv.expect(t, "PRIVMSG #forsen :hello")
	require.NoError(t, <-sent)

	// the echoed frame is the only copy
	srv.send(t, ":bob!bob@bob.tmi.twitch.tv PRIVMSG #forsen :hello")
	msg, ok := nextEvent(t, s).(models.MessageReceived)
	require.True(t, ok)
	assert.Equal(t, "hello", msg.Line.Body)

	select {
	case ev := <-s.Events():
		t.Fatalf("unexpected event %T", ev)
	case <-time.After(50 * time.Millisecond):
	}

	stopRun(t, cancel, errCh)
}

func TestSession_SendValidatesBeforeState(t *testing.T) {
	s := service.NewChatSession(newDialer(t), testConfig(bob()), logger.Nop())

	assert.ErrorIs(t, s.Send(context.Background(), "   "), codec.ErrEmptyBody)
	assert.ErrorIs(t, s.Send(context.Background(), strings.Repeat("a", codec.MaxBodyBytes+1)), codec.ErrTooLong)
	assert.ErrorIs(t, s.Send(context.Background(), "ok"), service.ErrNotConnected)
}

// ── receive loop ──────────────────────────────────────────────────────────────

func TestSession_KeepAlive(t *testing.T) {
	defer goleak.VerifyNone(t)

	client, srv := newPipe(t)
	d := newDialer(t)
	d.EXPECT().Dial(gomock.Any()).Return(client, nil).Times(1)

	s := service.NewChatSession(d, testConfig(nil), logger.Nop())
	cancel, errCh := startRun(t, s)
	srv.expectAnonHandshake(t)
	_, ok := nextEvent(t, s).(models.ConnectionEstablished)
	require.True(t, ok)

	srv.send(t, "PING :tmi.twitch.tv")
	srv.expect(t, "PONG :tmi.twitch.tv")

	ev := nextEvent(t, s)
	assert.Equal(t, models.KeepAliveReceived{Payload: "tmi.twitch.tv"}, ev)

	stopRun(t, cancel, errCh)
}

func TestSession_PreservesOrderAndDropsMalformed(t *testing.T) {
	defer goleak.VerifyNone(t)

	client, srv := newPipe(t)
	d := newDialer(t)
	d.EXPECT().Dial(gomock.Any()).Return(client, nil).Times(1)

	s := service.NewChatSession(d, testConfig(nil), logger.Nop())
	cancel, errCh := startRun(t, s)
	srv.expectAnonHandshake(t)
	_, ok := nextEvent(t, s).(models.ConnectionEstablished)
	require.True(t, ok)

	const n = 50
	go func() {
		for i := 0; i < n; i++ {
			if i%10 == 0 {
				_, _ = srv.conn.Write([]byte("PRIVMSG #forsen :missing prefix\r\n"))
				_, _ = srv.conn.Write([]byte(":tmi.twitch.tv USERSTATE #forsen\r\n"))
			}
			_, _ = fmt.Fprintf(srv.conn, ":a!a@a PRIVMSG #forsen :msg %d\r\n", i)
		}
	}()

	var lastSeq uint64
	for i := 0; i < n; i++ {
		msg, ok := nextEvent(t, s).(models.MessageReceived)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("msg %d", i), msg.Line.Body)
		assert.Greater(t, msg.Line.Seq, lastSeq)
		lastSeq = msg.Line.Seq
	}

	stopRun(t, cancel, errCh)
}

func TestSession_ServerNotice(t *testing.T) {
	defer goleak.VerifyNone(t)

	client, srv := newPipe(t)
	d := newDialer(t)
	d.EXPECT().Dial(gomock.Any()).Return(client, nil).Times(1)

	s := service.NewChatSession(d, testConfig(nil), logger.Nop())
	cancel, errCh := startRun(t, s)
	srv.expectAnonHandshake(t)
	_, ok := nextEvent(t, s).(models.ConnectionEstablished)
	require.True(t, ok)

	srv.send(t, "@msg-id=slow_on :tmi.twitch.tv NOTICE #forsen :This room is now in slow mode.")
	assert.Equal(t, models.Notice{Text: "This room is now in slow mode."}, nextEvent(t, s))

	stopRun(t, cancel, errCh)
}

// ── reconnect ─────────────────────────────────────────────────────────────────

// Scenario C: a read failure while joined emits ConnectionLost, moves to
// Disconnected and schedules a reconnect after a nonzero delay.
func TestSession_ReconnectsAfterReadFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	first, srv1 := newPipe(t)
	second, srv2 := newPipe(t)
	d := newDialer(t)
	gomock.InOrder(
		d.EXPECT().Dial(gomock.Any()).Return(first, nil),
		d.EXPECT().Dial(gomock.Any()).Return(second, nil),
	)

	s := service.NewChatSession(d, testConfig(bob()), logger.Nop())
	cancel, errCh := startRun(t, s)

	srv1.expectAuthHandshake(t, "bob")
	srv1.send(t, ":bob!bob@bob.tmi.twitch.tv JOIN #forsen")
	est1, ok := nextEvent(t, s).(models.ConnectionEstablished)
	require.True(t, ok)

	before := time.Now()
	require.NoError(t, srv1.conn.Close())

	ev := nextEvent(t, s)
	lost, ok := ev.(models.ConnectionLost)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, 1, lost.Attempt)
	assert.Positive(t, lost.RetryIn)
	assert.NotEmpty(t, lost.Reason)

	st := s.Status()
	if st.State == service.StateDisconnected {
		assert.Equal(t, 1, st.Attempt)
		assert.True(t, st.NextRetryAt.After(before))
	}

	srv2.expectAuthHandshake(t, "bob")
	srv2.send(t, ":bob!bob@bob.tmi.twitch.tv JOIN #forsen")
	est2, ok := nextEvent(t, s).(models.ConnectionEstablished)
	require.True(t, ok)
	assert.NotEqual(t, est1.ConnID, est2.ConnID)
	assert.GreaterOrEqual(t, time.Since(before), lost.RetryIn)

	stopRun(t, cancel, errCh)
}

func TestSession_FailedDialsBackOff(t *testing.T) {
	defer goleak.VerifyNone(t)

	client, srv := newPipe(t)
	d := newDialer(t)
	refused := errors.New("connection refused")
	gomock.InOrder(
		d.EXPECT().Dial(gomock.Any()).Return(nil, refused),
		d.EXPECT().Dial(gomock.Any()).Return(nil, refused),
		d.EXPECT().Dial(gomock.Any()).Return(client, nil),
	)

	s := service.NewChatSession(d, testConfig(nil), logger.Nop())
	cancel, errCh := startRun(t, s)

	lost1, ok := nextEvent(t, s).(models.ConnectionLost)
	require.True(t, ok)
	lost2, ok := nextEvent(t, s).(models.ConnectionLost)
	require.True(t, ok)

	assert.Equal(t, 1, lost1.Attempt)
	assert.Equal(t, 2, lost2.Attempt)
	assert.Equal(t, 20*time.Millisecond, lost1.RetryIn)
	assert.Equal(t, 40*time.Millisecond, lost2.RetryIn)
	assert.Contains(t, lost1.Reason, "connection refused")

	srv.expectAnonHandshake(t)
	_, ok = nextEvent(t, s).(models.ConnectionEstablished)
	assert.True(t, ok)

	stopRun(t, cancel, errCh)
}

func TestSession_ServerRequestedReconnect(t *testing.T) {
	defer goleak.VerifyNone(t)

	first, srv1 := newPipe(t)
	second, srv2 := newPipe(t)
	d := newDialer(t)
	gomock.InOrder(
		d.EXPECT().Dial(gomock.Any()).Return(first, nil),
		d.EXPECT().Dial(gomock.Any()).Return(second, nil),
	)

	s := service.NewChatSession(d, testConfig(nil), logger.Nop())
	cancel, errCh := startRun(t, s)
	srv1.expectAnonHandshake(t)
	_, ok := nextEvent(t, s).(models.ConnectionEstablished)
	require.True(t, ok)

	srv1.send(t, ":tmi.twitch.tv RECONNECT")
	lost, ok := nextEvent(t, s).(models.ConnectionLost)
	require.True(t, ok)
	assert.Zero(t, lost.RetryIn)

	srv2.expectAnonHandshake(t)
	_, ok = nextEvent(t, s).(models.ConnectionEstablished)
	assert.True(t, ok)

	stopRun(t, cancel, errCh)
}

func TestSession_ReadIdleTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	first, srv1 := newPipe(t)
	d := newDialer(t)
	d.EXPECT().Dial(gomock.Any()).Return(first, nil)
	d.EXPECT().Dial(gomock.Any()).Return(nil, errors.New("refused")).AnyTimes()

	cfg := testConfig(nil)
	cfg.ReadTimeout = 50 * time.Millisecond
	s := service.NewChatSession(d, cfg, logger.Nop())
	cancel, errCh := startRun(t, s)
	srv1.expectAnonHandshake(t)
	_, ok := nextEvent(t, s).(models.ConnectionEstablished)
	require.True(t, ok)

	lost, ok := nextEvent(t, s).(models.ConnectionLost)
	require.True(t, ok)
	assert.Contains(t, lost.Reason, "timeout")

	stopRun(t, cancel, errCh)
}

func TestSession_CancelDuringBackoff(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := newDialer(t)
	d.EXPECT().Dial(gomock.Any()).Return(nil, errors.New("refused")).Times(1)

	cfg := testConfig(nil)
	cfg.Backoff = service.BackoffConfig{Base: time.Hour, Cap: time.Hour}
	s := service.NewChatSession(d, cfg, logger.Nop())
	cancel, errCh := startRun(t, s)

	_, ok := nextEvent(t, s).(models.ConnectionLost)
	require.True(t, ok)

	stopRun(t, cancel, errCh)
	assert.Equal(t, service.StateDisconnected, s.Status().State)

	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed after Run returned")
	}
}

// ── startup and authentication ────────────────────────────────────────────────

func TestSession_ConnectFailure(t *testing.T) {
	d := newDialer(t)
	d.EXPECT().Dial(gomock.Any()).Return(nil, fmt.Errorf("%w: refused", adapter.ErrDial))

	s := service.NewChatSession(d, testConfig(nil), logger.Nop())
	err := s.Connect(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, adapter.ErrDial)

	var te *service.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "dial", te.Op)
	assert.Equal(t, service.StateDisconnected, s.Status().State)
}

func TestSession_AuthenticationFailureIsTerminal(t *testing.T) {
	defer goleak.VerifyNone(t)

	client, srv := newPipe(t)
	d := newDialer(t)
	d.EXPECT().Dial(gomock.Any()).Return(client, nil).Times(1)

	s := service.NewChatSession(d, testConfig(bob()), logger.Nop())
	_, errCh := startRun(t, s)
	srv.expectAuthHandshake(t, "bob")

	srv.send(t, ":tmi.twitch.tv NOTICE * :Login authentication failed")
	assert.Equal(t, models.AuthenticationFailed{Reason: "Login authentication failed"}, nextEvent(t, s))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Run did not stop after authentication failure")
	}

	st := s.Status()
	assert.Equal(t, service.StateFailed, st.State)
	assert.ErrorIs(t, st.Err, service.ErrAuthenticationFailed)
	assert.ErrorIs(t, s.Send(context.Background(), "hi"), service.ErrNotConnected)
}

func TestSession_AuthenticationFallback(t *testing.T) {
	defer goleak.VerifyNone(t)

	first, srv1 := newPipe(t)
	second, srv2 := newPipe(t)
	d := newDialer(t)
	gomock.InOrder(
		d.EXPECT().Dial(gomock.Any()).Return(first, nil),
		d.EXPECT().Dial(gomock.Any()).Return(second, nil),
	)

	cfg := testConfig(bob())
	cfg.AnonymousFallback = true
	s := service.NewChatSession(d, cfg, logger.Nop())
	cancel, errCh := startRun(t, s)

	srv1.expectAuthHandshake(t, "bob")
	srv1.send(t, ":tmi.twitch.tv NOTICE * :Improperly formatted auth")
	assert.Equal(t, models.AuthenticationFailed{Reason: "Improperly formatted auth", Fallback: true}, nextEvent(t, s))

	srv2.expectAnonHandshake(t)
	_, ok := nextEvent(t, s).(models.ConnectionEstablished)
	require.True(t, ok)

	assert.ErrorIs(t, s.Send(context.Background(), "hi"), service.ErrAnonymous)

	stopRun(t, cancel, errCh)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "joined", service.StateJoined.String())
	assert.Equal(t, "failed", service.StateFailed.String())
	assert.Equal(t, "unknown", service.State(42).String())
}
