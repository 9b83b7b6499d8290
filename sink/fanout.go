package sink

import (
	"chat-client/contract"
	"chat-client/domain"
)

// Fanout forwards every event to each renderer, in order.
// It provides best-effort fan-out: a slow renderer slows the others.
type Fanout struct {
	renderers []contract.Renderer
}

func NewFanout(renderers ...contract.Renderer) *Fanout {
	return &Fanout{renderers: renderers}
}

func (f *Fanout) Add(renderers ...contract.Renderer) *Fanout {
	f.renderers = append(f.renderers, renderers...)
	return f
}

func (f *Fanout) OnEvent(evt domain.IncomingEvent) {
	for _, renderer := range f.renderers {
		renderer.OnEvent(evt)
	}
}
