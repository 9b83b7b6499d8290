package server

import (
	"chat-client/infrastructure/grpc/wire"
	"log/slog"
)

// Sink buffers frames for one connected participant.
// The stream handler owning it is the only one calling SendMsg.
type Sink struct {
	log    *slog.Logger
	Events chan *wire.Response
}

func NewSink(log *slog.Logger, bufferSize int) *Sink {
	return &Sink{log: log, Events: make(chan *wire.Response, bufferSize)}
}

// Consume never blocks the broadcaster: a slow participant loses frames.
func (s *Sink) Consume(resp *wire.Response) {
	select {
	case s.Events <- resp:
	default:
		s.log.Warn("Sink full, frame dropped (backpressure)")
	}
}
