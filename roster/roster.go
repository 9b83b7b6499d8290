// Package roster keeps the list of participants currently in the chat,
// as announced by join and leave events.
package roster

import (
	"chat-client/domain"
	"sort"
	"sync"

	"github.com/samber/lo"
)

type Roster struct {
	mu      sync.RWMutex
	members map[string]domain.Identity
}

func New() *Roster {
	return &Roster{members: make(map[string]domain.Identity)}
}

// Add registers a participant directly, e.g. the local user after login.
func (r *Roster) Add(identity domain.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[identity.ID] = identity
}

func (r *Roster) OnEvent(evt domain.IncomingEvent) {
	switch e := evt.(type) {
	case domain.UserJoined:
		r.Add(e.Identity)
	case domain.UserLeft:
		r.mu.Lock()
		delete(r.members, e.Identity.ID)
		r.mu.Unlock()
	case domain.ChatReceived:
		// A participant connected before us only shows up through its messages.
		r.mu.Lock()
		if _, ok := r.members[e.FromUserID]; !ok && e.FromUserID != "" {
			r.members[e.FromUserID] = domain.Identity{ID: e.FromUserID, Name: e.FromUserName}
		}
		r.mu.Unlock()
	}
}

// Participants returns a snapshot sorted by name, then ID.
func (r *Roster) Participants() []domain.Identity {
	r.mu.RLock()
	members := lo.Values(r.members)
	r.mu.RUnlock()

	sort.Slice(members, func(i, j int) bool {
		if members[i].Name != members[j].Name {
			return members[i].Name < members[j].Name
		}
		return members[i].ID < members[j].ID
	})
	return members
}

func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
