package workers

import (
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/errors"
	"context"
	"log/slog"
)

// InboundPump is the only reader of a transport.
// With a queue it forwards events to a RenderConsumer, otherwise it renders them itself.
type InboundPump struct {
	log       *slog.Logger
	transport contract.Transport
	renderer  contract.Renderer
	queue     *Queue[domain.IncomingEvent]
}

func NewInboundPump(log *slog.Logger, transport contract.Transport, renderer contract.Renderer,
	queue *Queue[domain.IncomingEvent]) InboundPump {
	return InboundPump{log: log, transport: transport, renderer: renderer, queue: queue}
}

// Run reads until end of stream, a read error or cancellation.
// End of stream and cancellation both return nil.
func (p InboundPump) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		frame, err := p.transport.Recv()
		if err != nil {
			switch {
			case errors.IsEndOfStream(err):
				p.log.Info("Server closed the stream")
				return nil
			case ctx.Err() != nil, errors.IsCancellation(err):
				p.log.Debug("Inbound pump cancelled")
				return nil
			default:
				return errors.Wrap(errors.ErrTransportRead, err)
			}
		}

		evt := domain.Classify(frame)
		if _, ok := evt.(domain.Empty); ok {
			p.log.Warn("Skipping frame", "case", frame.Case.String(), "error", errors.ErrClassificationMiss)
			continue
		}
		p.dispatch(evt)
	}
}

func (p InboundPump) dispatch(evt domain.IncomingEvent) {
	if p.queue == nil {
		p.renderer.OnEvent(evt)
		return
	}
	if err := p.queue.Push(evt); err != nil {
		p.log.Debug("Inbound queue closed, event dropped", "error", err)
	}
}
