package wire

import "google.golang.org/grpc"

const (
	ServiceName        = "chat.ChatService"
	SendMessagesMethod = "/" + ServiceName + "/SendMessages"
)

// SendMessagesStream describes the single bidirectional call of the service.
var SendMessagesStream = grpc.StreamDesc{
	StreamName:    "SendMessages",
	ServerStreams: true,
	ClientStreams: true,
}

// ChatServiceServer is implemented by servers speaking this protocol.
type ChatServiceServer interface {
	SendMessages(stream grpc.ServerStream) error
}

// ServiceDesc registers a ChatServiceServer on a *grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChatServiceServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    SendMessagesStream.StreamName,
			Handler:       sendMessagesHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "chat.proto",
}

func RegisterChatServiceServer(s grpc.ServiceRegistrar, srv ChatServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func sendMessagesHandler(srv any, stream grpc.ServerStream) error {
	return srv.(ChatServiceServer).SendMessages(stream)
}
