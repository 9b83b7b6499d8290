package ui

import (
	"chat-client/errors"
	"chat-client/mocks"
	"chat-client/repositories"
	"chat-client/roster"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeChat struct {
	mu   sync.Mutex
	sent []string
	err  error
	done chan struct{}
}

func newFakeChat() *fakeChat {
	return &fakeChat{done: make(chan struct{})}
}

func (f *fakeChat) Send(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeChat) Done() <-chan struct{} {
	return f.done
}

func TestShell_SendsChatAndStopsOnQuit(t *testing.T) {
	req := require.New(t)
	console, out := newTestConsole()
	chat := newFakeChat()
	shell := NewShell(logs.GetLoggerFromLevel(slog.LevelDebug), console, chat, roster.New(), nil)

	// When typing two messages, quitting, then typing again
	err := shell.Run(context.Background(), strings.NewReader("hi\n//slash\n/quit\nignored\n"))

	// Then only the lines before /quit were sent
	req.NoError(err)
	req.Equal([]string{"hi", "/slash"}, chat.sent)
	req.Empty(out.String())
}

func TestShell_EndOfInput(t *testing.T) {
	req := require.New(t)
	console, _ := newTestConsole()
	chat := newFakeChat()
	shell := NewShell(logs.GetLoggerFromLevel(slog.LevelDebug), console, chat, roster.New(), nil)

	req.NoError(shell.Run(context.Background(), strings.NewReader("only line")))
	req.Equal([]string{"only line"}, chat.sent)
}

func TestShell_SendErrorIsPrinted(t *testing.T) {
	req := require.New(t)
	console, out := newTestConsole()
	chat := newFakeChat()
	chat.err = errors.ErrSessionClosed
	shell := NewShell(logs.GetLoggerFromLevel(slog.LevelDebug), console, chat, roster.New(), nil)

	req.NoError(shell.Run(context.Background(), strings.NewReader("late\n")))
	req.Contains(out.String(), "error: "+errors.ErrSessionClosed.Error())
}

func TestShell_StopsWhenSessionCloses(t *testing.T) {
	req := require.New(t)
	console, out := newTestConsole()
	chat := newFakeChat()
	close(chat.done)
	shell := NewShell(logs.GetLoggerFromLevel(slog.LevelDebug), console, chat, roster.New(), nil)

	// Given an input that never ends
	reader, writer := io.Pipe()
	defer writer.Close()

	done := make(chan error, 1)
	go func() { done <- shell.Run(context.Background(), reader) }()

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("shell kept reading after the session closed")
	}
	req.Contains(out.String(), "Connection closed.")
}

func TestShell_Who(t *testing.T) {
	req := require.New(t)
	console, out := newTestConsole()
	members := roster.New()
	members.Add(alice)
	members.Add(bob)
	shell := NewShell(logs.GetLoggerFromLevel(slog.LevelDebug), console, newFakeChat(), members, nil)

	req.NoError(shell.Run(context.Background(), strings.NewReader("/who\n")))
	req.Contains(out.String(), "alice")
	req.Contains(out.String(), "bob")
}

func TestShell_HistoryAndSearch(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	transcript := mocks.NewMockITranscriptRepository(ctrl)
	console, out := newTestConsole()
	shell := NewShell(logs.GetLoggerFromLevel(slog.LevelDebug), console, newFakeChat(), roster.New(), transcript)

	stored := []repositories.TranscriptEntry{{
		ID: uuid.New(), Kind: repositories.EntryChat, UserName: "bob", Text: "release is friday", At: time.Now(),
	}}
	gomock.InOrder(
		transcript.EXPECT().Recent(5).Return(stored, nil),
		transcript.EXPECT().Search(gomock.Any(), "friday", defaultHistory).Return(stored, nil),
		transcript.EXPECT().Search(gomock.Any(), "nothing", defaultHistory).Return(nil, repositories.ErrSearchDisabled),
	)

	req.NoError(shell.Run(context.Background(), strings.NewReader("/history 5\n/search friday\n/search nothing\n/search\n")))

	req.Equal(2, strings.Count(out.String(), "release is friday"))
	req.Contains(out.String(), "Search is disabled")
	req.Contains(out.String(), "Usage: /search <terms>")
}

func TestShell_TranscriptDisabled(t *testing.T) {
	req := require.New(t)
	console, out := newTestConsole()
	shell := NewShell(logs.GetLoggerFromLevel(slog.LevelDebug), console, newFakeChat(), roster.New(), nil)

	req.NoError(shell.Run(context.Background(), strings.NewReader("/history\n/help\n/dance\n")))

	req.Contains(out.String(), "Transcript is disabled.")
	req.Contains(out.String(), "/search <terms>")
	req.Contains(out.String(), "Unknown command /dance")
}
