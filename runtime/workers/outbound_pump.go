package workers

import (
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/errors"
	"context"
	"log/slog"
	"sync/atomic"
)

// OutboundPump is the only writer of a transport.
// Being a single sequential consumer is what keeps writes one at a time.
type OutboundPump struct {
	log       *slog.Logger
	transport contract.Transport
	queue     *Queue[domain.OutgoingMessage]
	written   *atomic.Int64
}

func NewOutboundPump(log *slog.Logger, transport contract.Transport, queue *Queue[domain.OutgoingMessage]) OutboundPump {
	return OutboundPump{log: log, transport: transport, queue: queue, written: new(atomic.Int64)}
}

// Written counts the messages the transport accepted.
func (p OutboundPump) Written() int64 {
	return p.written.Load()
}

// Run writes queued messages in FIFO order until the queue is drained.
// Once it returns, for whatever reason, the queue refuses new items.
func (p OutboundPump) Run(ctx context.Context) error {
	defer p.queue.Close()

	for {
		msg, err := p.queue.Pop(ctx)
		if errors.Is(err, errors.ErrQueueDrained) {
			p.log.Debug("Outbound queue drained")
			return nil
		}
		if err != nil {
			return err
		}

		if err := p.transport.Send(msg); err != nil {
			if ctx.Err() != nil || errors.IsCancellation(err) {
				return ctx.Err()
			}
			return errors.Wrap(errors.ErrTransportWrite, err)
		}
		p.written.Add(1)
		p.log.Debug("Frame written", "kind", kindOf(msg))
	}
}

func kindOf(msg domain.OutgoingMessage) string {
	switch msg.(type) {
	case domain.Login:
		return "login"
	case domain.Chat:
		return "chat"
	case domain.Logout:
		return "logout"
	default:
		return "unknown"
	}
}
