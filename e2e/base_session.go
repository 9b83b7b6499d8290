package e2e

import (
	"chat-client/domain"
	"chat-client/infrastructure/grpc/client"
	"chat-client/runtime"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseSessionSuite struct {
	suite.Suite
	Config Config
	dialer *client.Dialer
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSessionSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ChatAddr == "" {
		s.T().Skip("E2E_CHAT_ADDR is not set")
	}
	s.dialer, err = client.NewDialer(s.logger(), s.Config.ChatAddr, s.Config.DebugJSON)
	s.Require().NoError(err, "Failed to create client for "+s.Config.ChatAddr)
}

func (s *BaseSessionSuite) TearDownSuite() {
	if s.dialer != nil {
		_ = s.dialer.Close()
	}
}

// Join connects a new participant and disconnects it when the test ends.
func (s *BaseSessionSuite) Join(name string, config runtime.SessionConfig) (*runtime.Session, *Recorder) {
	s.header(fmt.Sprintf("%s joins", name))
	identity, err := domain.NewIdentity(name)
	s.Require().NoError(err)

	recorder := &Recorder{}
	session := runtime.NewSession(s.logger(), s.dialer, recorder, config)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Require().NoError(session.Connect(ctx, identity), "Failed to connect to "+s.Config.ChatAddr)
	s.T().Cleanup(session.Disconnect)
	return session, recorder
}

func (s *BaseSessionSuite) header(title string) {
	header := fmt.Sprintf("  ====== %s ======", title)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

func (s *BaseSessionSuite) logger() *slog.Logger {
	if s.Config.DebugJSON {
		return logs.GetLoggerFromLevel(slog.LevelDebug)
	}
	return logs.GetLoggerFromLevel(slog.LevelWarn)
}

// Recorder keeps the events rendered for one participant.
type Recorder struct {
	mu     sync.Mutex
	events []domain.IncomingEvent
}

func (r *Recorder) OnEvent(evt domain.IncomingEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *Recorder) Chats() []domain.ChatReceived {
	r.mu.Lock()
	defer r.mu.Unlock()
	var chats []domain.ChatReceived
	for _, evt := range r.events {
		if chat, ok := evt.(domain.ChatReceived); ok {
			chats = append(chats, chat)
		}
	}
	return chats
}

func (r *Recorder) Saw(evt domain.IncomingEvent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, seen := range r.events {
		if seen == evt {
			return true
		}
	}
	return false
}
