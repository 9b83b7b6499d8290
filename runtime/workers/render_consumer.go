package workers

import (
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/errors"
	"context"
	"log/slog"
)

// RenderConsumer drains the inbound queue into a renderer.
type RenderConsumer struct {
	log      *slog.Logger
	queue    *Queue[domain.IncomingEvent]
	renderer contract.Renderer
}

func NewRenderConsumer(log *slog.Logger, queue *Queue[domain.IncomingEvent], renderer contract.Renderer) RenderConsumer {
	return RenderConsumer{log: log, queue: queue, renderer: renderer}
}

func (c RenderConsumer) Run(ctx context.Context) error {
	for {
		evt, err := c.queue.Pop(ctx)
		if errors.Is(err, errors.ErrQueueDrained) {
			c.log.Debug("Inbound queue drained")
			return nil
		}
		if err != nil {
			return err
		}
		c.renderer.OnEvent(evt)
	}
}
