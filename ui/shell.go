package ui

import (
	"bufio"
	"chat-client/errors"
	"chat-client/repositories"
	"chat-client/roster"
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Chat is the part of a session the shell drives.
type Chat interface {
	Send(text string) error
	Done() <-chan struct{}
}

// Shell turns input lines into messages and local commands.
type Shell struct {
	log        *slog.Logger
	console    *Console
	chat       Chat
	roster     *roster.Roster
	transcript repositories.ITranscriptRepository
}

// NewShell builds a shell. transcript may be nil when no transcript is kept.
func NewShell(log *slog.Logger, console *Console, chat Chat, roster *roster.Roster, transcript repositories.ITranscriptRepository) *Shell {
	return &Shell{log: log, console: console, chat: chat, roster: roster, transcript: transcript}
}

// Run reads lines until end of input, /quit, the session closing or ctx being done.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.chat.Done():
			s.console.Status("Connection closed.")
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if quit := s.handle(ctx, ParseCommand(line)); quit {
				return nil
			}
		}
	}
}

func (s *Shell) handle(ctx context.Context, cmd Command) bool {
	switch cmd.Kind {
	case CmdQuit:
		return true
	case CmdChat:
		if err := s.chat.Send(cmd.Text); err != nil {
			s.console.Error(err)
		}
	case CmdWho:
		s.console.Roster(s.roster.Participants())
	case CmdHistory:
		if s.transcript == nil {
			s.console.Status("Transcript is disabled.")
			return false
		}
		entries, err := s.transcript.Recent(cmd.Limit)
		if err != nil {
			s.log.Error("Reading transcript failed", "error", err)
			s.console.Error(err)
			return false
		}
		s.console.Transcript(entries)
	case CmdSearch:
		if cmd.Text == "" {
			s.console.Status("Usage: /search <terms>")
			return false
		}
		if s.transcript == nil {
			s.console.Status("Transcript is disabled.")
			return false
		}
		entries, err := s.transcript.Search(ctx, cmd.Text, cmd.Limit)
		if errors.Is(err, repositories.ErrSearchDisabled) {
			s.console.Status("Search is disabled, set SEARCH_INDEX_PATH to enable it.")
			return false
		}
		if err != nil {
			s.log.Error("Searching transcript failed", "error", err)
			s.console.Error(err)
			return false
		}
		s.console.Transcript(entries)
	case CmdHelp:
		s.console.Status(helpText)
	case CmdUnknown:
		s.console.Status(fmt.Sprintf("Unknown command /%s, try /help", cmd.Text))
	}
	return false
}
