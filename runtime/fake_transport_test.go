package runtime

import (
	"chat-client/contract"
	"chat-client/domain"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// fakeTransport records writes and plays server frames.
// The server side ends its stream when the client half-closes, unless stubborn.
type fakeTransport struct {
	ctx        context.Context
	frames     chan domain.Frame
	remoteDone chan struct{}
	remoteOnce sync.Once
	stubborn   bool
	failChats  bool
	failLogin  bool
	// remoteErr replaces io.EOF when the server ends its stream.
	remoteErr error
	// cancelWrites fails writes once the stream context is cancelled, like a grpc.ClientStream.
	cancelWrites bool
	writeDelay   time.Duration

	mu           sync.Mutex
	written      []domain.OutgoingMessage
	halfClosedAt int
	closeCount   int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		frames:       make(chan domain.Frame, 16),
		remoteDone:   make(chan struct{}),
		halfClosedAt: -1,
	}
}

func (f *fakeTransport) Send(msg domain.OutgoingMessage) error {
	if f.writeDelay > 0 {
		time.Sleep(f.writeDelay)
	}
	if f.cancelWrites && f.ctx.Err() != nil {
		return status.Error(codes.Canceled, f.ctx.Err().Error())
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	switch msg.(type) {
	case domain.Login:
		if f.failLogin {
			return fmt.Errorf("handshake rejected")
		}
	case domain.Chat:
		if f.failChats {
			return fmt.Errorf("broken pipe")
		}
	}
	if f.halfClosedAt >= 0 {
		return fmt.Errorf("send after half-close")
	}
	f.written = append(f.written, msg)
	return nil
}

func (f *fakeTransport) Recv() (domain.Frame, error) {
	select {
	case frame := <-f.frames:
		return frame, nil
	case <-f.remoteDone:
		if f.remoteErr != nil {
			return domain.Frame{}, f.remoteErr
		}
		return domain.Frame{}, io.EOF
	case <-f.ctx.Done():
		return domain.Frame{}, status.Error(codes.Canceled, f.ctx.Err().Error())
	}
}

func (f *fakeTransport) CloseSend() error {
	f.mu.Lock()
	f.halfClosedAt = len(f.written)
	f.mu.Unlock()
	if !f.stubborn {
		f.closeRemote()
	}
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCount++
	return nil
}

func (f *fakeTransport) closeRemote() {
	f.remoteOnce.Do(func() { close(f.remoteDone) })
}

func (f *fakeTransport) snapshot() ([]domain.OutgoingMessage, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.OutgoingMessage(nil), f.written...), f.halfClosedAt, f.closeCount
}

type fakeDialer struct {
	transport *fakeTransport
	err       error
}

func (d *fakeDialer) Dial(ctx context.Context) (contract.Transport, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.transport.ctx = ctx
	return d.transport, nil
}

type recordingRenderer struct {
	mu     sync.Mutex
	events []domain.IncomingEvent
}

func (r *recordingRenderer) OnEvent(evt domain.IncomingEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recordingRenderer) all() []domain.IncomingEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.IncomingEvent(nil), r.events...)
}
