package domain

import "fmt"

// FrameCase is the discriminator carried by every frame received from the service.
type FrameCase int

const (
	FrameNone FrameCase = iota
	FrameChatMessage
	FrameUserLogin
	FrameUserLogout
)

// FrameUnknown marks a discriminator this client does not know.
const FrameUnknown FrameCase = -1

func (c FrameCase) String() string {
	switch c {
	case FrameNone:
		return "none"
	case FrameChatMessage:
		return "chatMessage"
	case FrameUserLogin:
		return "userLogin"
	case FrameUserLogout:
		return "userLogout"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

// Frame is a received frame before classification.
// Which fields are set depends on Case.
type Frame struct {
	Case       FrameCase
	SenderID   string
	SenderName string
	Text       string
	User       Identity
}

// IncomingEvent is produced by the inbound pump only.
// Only ChatReceived, UserJoined, UserLeft and Empty implement it.
type IncomingEvent interface {
	incoming()
}

type ChatReceived struct {
	FromUserID   string
	FromUserName string
	Text         string
}

type UserJoined struct {
	Identity Identity
}

type UserLeft struct {
	Identity Identity
}

// Empty is a classification miss and must be treated as a no-op.
type Empty struct{}

func (ChatReceived) incoming() {}
func (UserJoined) incoming()   {}
func (UserLeft) incoming()     {}
func (Empty) incoming()        {}

// Classify maps a frame to its logical event.
// Discriminators with no known case yield Empty.
func Classify(frame Frame) IncomingEvent {
	switch frame.Case {
	case FrameChatMessage:
		return ChatReceived{
			FromUserID:   frame.SenderID,
			FromUserName: frame.SenderName,
			Text:         frame.Text,
		}
	case FrameUserLogin:
		return UserJoined{Identity: frame.User}
	case FrameUserLogout:
		return UserLeft{Identity: frame.User}
	default:
		return Empty{}
	}
}
