package main

import (
	"bufio"
	"chat-client/domain"
	"chat-client/infrastructure/grpc/client"
	"chat-client/internal"
	"chat-client/moderation"
	"chat-client/repositories"
	"chat-client/roster"
	"chat-client/runtime"
	"chat-client/sink"
	"chat-client/ui"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadClientConfig()
	if err != nil {
		return exitConfig, err
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Identity
	stdin := bufio.NewReader(os.Stdin)
	name := config.UserName
	if name == "" {
		if name, err = askName(stdin); err != nil {
			return exitConfig, err
		}
	}
	identity, err := domain.NewIdentity(name)
	if err != nil {
		return exitConfig, fmt.Errorf("invalid user name: %w", err)
	}

	// 4. Renderers
	console := ui.NewConsole(os.Stdout, config.Colours)
	console.SetSelf(identity)
	moderator, err := moderation.NewModerator(config.Words(), charReplacement, log)
	if err != nil {
		return exitConfig, fmt.Errorf("moderator init failed: %w", err)
	}
	members := roster.New()
	renderer := sink.NewFanout(members, sink.NewModerationSink(moderator, console, log))

	// 5. Optional transcript (BadgerDB + Bluge)
	var transcript repositories.ITranscriptRepository
	if config.TranscriptPath != "" {
		repository, closeStore, err := openTranscript(config, log)
		if err != nil {
			return exitRuntime, err
		}
		defer closeStore()
		transcript = repository
		renderer.Add(sink.NewTranscriptSink(repository, log))
	}

	// 6. Transport
	dialer, err := client.NewDialer(log, config.ServerAddress, config.DebugFrames)
	if err != nil {
		return exitConfig, fmt.Errorf("could not create client for %s: %w", config.ServerAddress, err)
	}
	defer func() {
		log.Debug("Closing connection...")
		_ = dialer.Close()
	}()

	// 7. Session
	session := runtime.NewSession(log, dialer, renderer, runtime.SessionConfig{
		Mode:             config.Mode(),
		LocalEcho:        config.LocalEcho,
		ExplicitLogout:   config.ExplicitLogout,
		DrainTimeout:     config.DrainTimeout,
		GracePeriod:      config.GracePeriod,
		ErrorBufferSize:  config.ErrorBufferSize,
		MetricInterval:   config.MetricInterval,
		BacklogThreshold: config.BacklogWarnAt,
	})
	console.Status("Trying to connect to server...")
	if err = session.Connect(ctx, identity); err != nil {
		console.Status("Could not connect to " + config.ServerAddress)
		return exitRuntime, err
	}
	defer session.Disconnect()
	members.Add(identity)
	console.Status("You joined the chat.")
	go reportErrors(session, console)

	// 8. Input loop until /quit, end of input, remote close or a signal
	shell := ui.NewShell(log, console, session, members, transcript)
	if err = shell.Run(ctx, stdin); err != nil {
		return exitRuntime, fmt.Errorf("reading input: %w", err)
	}
	session.Disconnect()
	console.Status("You left the chat.")
	return exitOK, nil
}

func askName(stdin *bufio.Reader) (string, error) {
	fmt.Print("What is your name?: ")
	name, err := stdin.ReadString('\n')
	if err != nil && name == "" {
		return "", fmt.Errorf("reading name: %w", err)
	}
	return strings.TrimSpace(name), nil
}

func openTranscript(config internal.ClientConfig, log *slog.Logger) (*repositories.TranscriptRepository, func(), error) {
	db, err := badger.Open(badger.DefaultOptions(config.TranscriptPath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, nil, fmt.Errorf("transcript opening failed: %w", err)
	}
	var writer *bluge.Writer
	if config.SearchIndexPath != "" {
		if writer, err = bluge.OpenWriter(bluge.DefaultConfig(config.SearchIndexPath)); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to open bluge writer: %w", err)
		}
	}
	closeStore := func() {
		log.Debug("Closing transcript...")
		if writer != nil {
			_ = writer.Close()
		}
		_ = db.Close()
	}
	return repositories.NewTranscriptRepository(db, writer, log), closeStore, nil
}

func reportErrors(session *runtime.Session, console *ui.Console) {
	for err := range session.Errors() {
		console.Error(err)
	}
}
