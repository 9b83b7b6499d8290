package client

import (
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/infrastructure/grpc/wire"
	"context"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// Dialer opens SendMessages streams on one shared client connection.
type Dialer struct {
	log         *slog.Logger
	conn        *grpc.ClientConn
	debugFrames bool
}

// NewDialer does not touch the network: grpc.NewClient connects lazily,
// so an unreachable server surfaces on the first Dial.
func NewDialer(log *slog.Logger, address string, debugFrames bool, opts ...grpc.DialOption) (*Dialer, error) {
	options := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(wire.Name)),
		grpc.WithStreamInterceptor(streamLogger(log)),
	}, opts...)
	conn, err := grpc.NewClient(address, options...)
	if err != nil {
		return nil, err
	}
	return &Dialer{log: log, conn: conn, debugFrames: debugFrames}, nil
}

func (d *Dialer) Dial(ctx context.Context) (contract.Transport, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := d.conn.NewStream(streamCtx, &wire.SendMessagesStream, wire.SendMessagesMethod)
	if err != nil {
		cancel()
		return nil, err
	}
	return &StreamTransport{log: d.log, stream: stream, cancel: cancel, debugFrames: d.debugFrames}, nil
}

func (d *Dialer) Close() error {
	return d.conn.Close()
}

// StreamTransport adapts a grpc.ClientStream to contract.Transport.
type StreamTransport struct {
	log         *slog.Logger
	stream      grpc.ClientStream
	cancel      context.CancelFunc
	debugFrames bool
	closeOnce   sync.Once
}

func (t *StreamTransport) Send(msg domain.OutgoingMessage) error {
	req, err := wire.FromOutgoing(msg)
	if err != nil {
		return err
	}
	if t.debugFrames {
		t.log.Debug("-> " + wire.Format(req))
	}
	return t.stream.SendMsg(req)
}

func (t *StreamTransport) Recv() (domain.Frame, error) {
	var resp wire.Response
	if err := t.stream.RecvMsg(&resp); err != nil {
		return domain.Frame{}, err
	}
	if t.debugFrames {
		t.log.Debug("<- " + wire.Format(&resp))
	}
	return resp.ToFrame(), nil
}

func (t *StreamTransport) CloseSend() error {
	return t.stream.CloseSend()
}

// Close cancels the stream context, which releases the stream and unblocks Recv.
func (t *StreamTransport) Close() error {
	t.closeOnce.Do(t.cancel)
	return nil
}

func streamLogger(log *slog.Logger) grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string,
		streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		start := time.Now()
		stream, err := streamer(ctx, desc, cc, method, opts...)
		log.Debug("Stream opened", "method", method, "code", status.Code(err).String(), "in", time.Since(start))
		return stream, err
	}
}
