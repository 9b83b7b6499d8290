//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-client/domain"
	"context"
	"reflect"
)

// Transport is one bidirectional stream to the chat service.
// Send and Recv may run concurrently with each other but neither is safe
// for concurrent use with itself.
type Transport interface {
	Send(msg domain.OutgoingMessage) error
	// Recv blocks until the next frame. It returns io.EOF once the remote side closed its end.
	Recv() (domain.Frame, error)
	// CloseSend half-closes the stream: no more writes from this side.
	CloseSend() error
	Close() error
}

// Dialer opens a Transport bound to ctx.
// Cancelling ctx must unblock any pending Send or Recv.
type Dialer interface {
	Dial(ctx context.Context) (Transport, error)
}

// Renderer consumes events for display.
// It may be called from any goroutine.
type Renderer interface {
	OnEvent(evt domain.IncomingEvent)
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
