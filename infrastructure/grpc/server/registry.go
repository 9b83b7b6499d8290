package server

import (
	"sync"

	"github.com/samber/lo"
)

// Registry maps connected participants to their delivery sink.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Sink
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Sink)}
}

func (r *Registry) Subscribe(participantID string, sink *Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[participantID] = sink
}

func (r *Registry) Unsubscribe(participantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, participantID)
}

// SinksExcept returns every sink but the one of participantID.
func (r *Registry) SinksExcept(participantID string) []*Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(lo.OmitByKeys(r.sessions, []string{participantID}))
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
