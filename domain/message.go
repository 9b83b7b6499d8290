// Package domain contains core concepts of the chat client.
// This file defines the frames written to the chat service.
// Messages are immutable once built.
package domain

// OutgoingMessage is one frame written by the client.
// Only Login, Chat and Logout implement it.
type OutgoingMessage interface {
	outgoing()
}

// Login must be the first frame ever written for a session.
type Login struct {
	Identity Identity
}

type Chat struct {
	SenderID string
	Text     string
}

// Logout is only written when explicit logout is enabled,
// otherwise the half-close of the stream implies it.
type Logout struct {
	Identity Identity
}

func (Login) outgoing()  {}
func (Chat) outgoing()   {}
func (Logout) outgoing() {}
