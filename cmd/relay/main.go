package main

import (
	"chat-client/infrastructure/grpc/server"
	"chat-client/infrastructure/grpc/wire"
	"chat-client/internal"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run serves the relay until a signal arrives, then stops gracefully.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadRelayConfig()
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. gRPC Server Setup
	listener, err := net.Listen("tcp", config.Address())
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", config.Address(), err)
	}
	s := grpc.NewServer()
	wire.RegisterChatServiceServer(s, server.NewRelayServer(log, config.ConnectionBufferSize))

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting relay", "address", config.Address(), "at", time.Now().UTC())
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 4. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return exitRuntime, err
	}

	s.GracefulStop()
	log.Info("Relay stopped cleanly")
	return exitOK, nil
}
