package server

import (
	"chat-client/infrastructure/grpc/wire"
	"fmt"
	"io"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RelayServer is a minimal broadcast implementation of the chat service.
// Each participant gets the frames of every other participant.
type RelayServer struct {
	log                  *slog.Logger
	registry             *Registry
	connectionBufferSize int
}

func NewRelayServer(log *slog.Logger, connectionBufferSize int) *RelayServer {
	return &RelayServer{log: log, registry: NewRegistry(), connectionBufferSize: connectionBufferSize}
}

// SendMessages serves one participant for the lifetime of its stream.
// The first frame must be a login. When the client half-closes (or logs out)
// pending frames are flushed and the handler returns, which ends the stream
// on the server side and lets the client's reader see end of stream.
func (s *RelayServer) SendMessages(stream grpc.ServerStream) error {
	var first wire.Request
	if err := stream.RecvMsg(&first); err != nil {
		return err
	}
	if first.UserLogin == nil {
		return status.Error(codes.InvalidArgument, "first frame must be a user login")
	}
	user := *first.UserLogin

	sink := NewSink(s.log, s.connectionBufferSize)
	s.registry.Subscribe(user.ID, sink)
	s.broadcast(user.ID, &wire.Response{SendFromUserID: user.ID, SendFromUserName: user.Name, UserLogin: &user})
	s.log.Info(fmt.Sprintf("%s joined", user.Name), "user_id", user.ID)
	defer func() {
		s.registry.Unsubscribe(user.ID)
		s.broadcast(user.ID, &wire.Response{SendFromUserID: user.ID, SendFromUserName: user.Name, UserLogout: &user})
		s.log.Info(fmt.Sprintf("%s left", user.Name), "user_id", user.ID)
	}()

	received := make(chan error, 1)
	go func() { received <- s.receive(stream, user) }()

	for {
		select {
		case <-stream.Context().Done():
			s.log.Warn("Client disconnected", "user_id", user.ID)
			return nil
		case err := <-received:
			s.flush(stream, sink)
			return err
		case resp := <-sink.Events:
			if err := stream.SendMsg(resp); err != nil {
				s.log.Error("failed to push frame to stream", "user_id", user.ID, "error", err)
				return err
			}
		}
	}
}

// receive returns nil when the client half-closes or logs out.
func (s *RelayServer) receive(stream grpc.ServerStream, user wire.UserInfo) error {
	for {
		var req wire.Request
		if err := stream.RecvMsg(&req); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		switch {
		case req.ChatMessage != nil:
			s.broadcast(user.ID, &wire.Response{
				SendFromUserID:   user.ID,
				SendFromUserName: user.Name,
				ChatMessage:      req.ChatMessage,
			})
		case req.UserLogout != nil:
			return nil
		default:
			s.log.Debug("Ignoring frame", "user_id", user.ID)
		}
	}
}

func (s *RelayServer) flush(stream grpc.ServerStream, sink *Sink) {
	for {
		select {
		case resp := <-sink.Events:
			if err := stream.SendMsg(resp); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (s *RelayServer) broadcast(senderID string, resp *wire.Response) {
	for _, sink := range s.registry.SinksExcept(senderID) {
		sink.Consume(resp)
	}
}

// Connected returns the number of logged-in participants.
func (s *RelayServer) Connected() int {
	return s.registry.Len()
}
