package test

import (
	"chat-client/domain"
	"chat-client/infrastructure/grpc/client"
	"chat-client/infrastructure/grpc/server"
	"chat-client/infrastructure/grpc/wire"
	"chat-client/moderation"
	"chat-client/repositories"
	"chat-client/roster"
	"chat-client/runtime"
	"chat-client/sink"
	"context"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

type eventLog struct {
	mu     sync.Mutex
	events []domain.IncomingEvent
}

func (e *eventLog) OnEvent(evt domain.IncomingEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, evt)
}

func (e *eventLog) all() []domain.IncomingEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.IncomingEvent(nil), e.events...)
}

func startRelay(t *testing.T, log *slog.Logger) (*server.RelayServer, *client.Dialer) {
	t.Helper()
	listener := bufconn.Listen(1 << 20)
	relay := server.NewRelayServer(log, 64)
	s := grpc.NewServer()
	wire.RegisterChatServiceServer(s, relay)
	go func() { _ = s.Serve(listener) }()

	dialer, err := client.NewDialer(log, "passthrough:///bufnet", true,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = dialer.Close()
		s.Stop()
	})
	return relay, dialer
}

func Test_Scenario(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	relay, dialer := startRelay(t, log)

	// 1. Bob keeps a censored, persisted and indexed view of the chat
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	t.Cleanup(func() {
		_ = blugeWriter.Close()
		_ = db.Close()
	})
	transcript := repositories.NewTranscriptRepository(db, blugeWriter, log)
	moderator, err := moderation.NewModerator([]string{"darn"}, '*', log)
	req.NoError(err)
	bobView := &eventLog{}
	members := roster.New()
	bobRenderer := sink.NewFanout(members, sink.NewModerationSink(moderator, bobView, log), sink.NewTranscriptSink(transcript, log))

	bobID, err := domain.NewIdentity("bob")
	req.NoError(err)
	bob := runtime.NewSession(log, dialer, bobRenderer, runtime.SessionConfig{Mode: domain.InboundQueued})
	req.NoError(bob.Connect(ctx, bobID))
	req.Eventually(func() bool { return relay.Connected() == 1 }, 2*time.Second, 10*time.Millisecond)

	// 2. Alice joins, talks and leaves with an explicit logout
	aliceID, err := domain.NewIdentity("alice")
	req.NoError(err)
	aliceView := &eventLog{}
	alice := runtime.NewSession(log, dialer, aliceView, runtime.SessionConfig{ExplicitLogout: true, LocalEcho: true})
	req.NoError(alice.Connect(ctx, aliceID))
	req.NoError(alice.Send("hello bob"))
	req.NoError(alice.Send("darn release"))
	alice.Disconnect()
	req.Equal(domain.StateClosed, alice.State())

	// 3. Bob saw everything, in order, censored
	expected := []domain.IncomingEvent{
		domain.UserJoined{Identity: aliceID},
		domain.ChatReceived{FromUserID: aliceID.ID, FromUserName: "alice", Text: "hello bob"},
		domain.ChatReceived{FromUserID: aliceID.ID, FromUserName: "alice", Text: "**** release"},
		domain.UserLeft{Identity: aliceID},
	}
	req.Eventually(func() bool { return len(bobView.all()) == len(expected) }, 2*time.Second, 10*time.Millisecond)
	req.Equal(expected, bobView.all())
	req.Zero(members.Len())

	// 4. Alice only saw her own echo
	req.Len(aliceView.all(), 2)

	// 5. The transcript kept the raw text and can find it
	entries, err := transcript.Recent(0)
	req.NoError(err)
	req.Len(entries, 4)
	found, err := transcript.Search(ctx, "release", 10)
	req.NoError(err)
	req.Len(found, 1)
	req.Equal("darn release", found[0].Text)

	bob.Disconnect()
	req.Equal(domain.StateClosed, bob.State())
	req.Eventually(func() bool { return relay.Connected() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func Test_ServerUnreachable(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	listener := bufconn.Listen(1 << 20)
	// Nobody serves the listener
	_ = listener.Close()

	dialer, err := client.NewDialer(log, "passthrough:///bufnet",
		false,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}))
	req.NoError(err)
	defer dialer.Close()

	identity, err := domain.NewIdentity("alice")
	req.NoError(err)
	session := runtime.NewSession(log, dialer, &eventLog{}, runtime.SessionConfig{})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = session.Connect(ctx, identity)

	req.Error(err)
	req.Equal(domain.StateClosed, session.State())
}
