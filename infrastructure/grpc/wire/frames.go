// Package wire defines the frames exchanged with the chat service and the
// gRPC codec that carries them as protobuf Struct messages.
package wire

import (
	"chat-client/domain"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

const (
	keyUserLogin        = "userLogin"
	keyChatMessage      = "chatMessage"
	keyUserLogout       = "userLogout"
	keySendFromUserID   = "sendFromUserId"
	keySendFromUserName = "sendFromUserName"
	keyID               = "id"
	keyName             = "name"
	keyMessage          = "message"
)

type UserInfo struct {
	ID   string
	Name string
}

type ChatMessage struct {
	ID      string // sender id
	Message string
}

// Request is a client frame. Exactly one field is set.
type Request struct {
	UserLogin   *UserInfo
	ChatMessage *ChatMessage
	UserLogout  *UserInfo
}

// Response is a server frame.
// At most one of ChatMessage, UserLogin, UserLogout is set;
// Unknown keeps the name of a case this version does not understand.
type Response struct {
	SendFromUserID   string
	SendFromUserName string
	ChatMessage      *ChatMessage
	UserLogin        *UserInfo
	UserLogout       *UserInfo
	Unknown          string
}

// FromOutgoing maps a domain message to its request frame.
func FromOutgoing(msg domain.OutgoingMessage) (*Request, error) {
	switch m := msg.(type) {
	case domain.Login:
		return &Request{UserLogin: &UserInfo{ID: m.Identity.ID, Name: m.Identity.Name}}, nil
	case domain.Chat:
		return &Request{ChatMessage: &ChatMessage{ID: m.SenderID, Message: m.Text}}, nil
	case domain.Logout:
		return &Request{UserLogout: &UserInfo{ID: m.Identity.ID, Name: m.Identity.Name}}, nil
	default:
		return nil, fmt.Errorf("unsupported outgoing message %T", msg)
	}
}

// ToFrame exposes the discriminator of a response to the classifier.
func (r *Response) ToFrame() domain.Frame {
	frame := domain.Frame{SenderID: r.SendFromUserID, SenderName: r.SendFromUserName}
	switch {
	case r.ChatMessage != nil:
		frame.Case = domain.FrameChatMessage
		frame.Text = r.ChatMessage.Message
		if frame.SenderID == "" {
			frame.SenderID = r.ChatMessage.ID
		}
	case r.UserLogin != nil:
		frame.Case = domain.FrameUserLogin
		frame.User = domain.Identity{ID: r.UserLogin.ID, Name: r.UserLogin.Name}
	case r.UserLogout != nil:
		frame.Case = domain.FrameUserLogout
		frame.User = domain.Identity{ID: r.UserLogout.ID, Name: r.UserLogout.Name}
	case r.Unknown != "":
		frame.Case = domain.FrameUnknown
	default:
		frame.Case = domain.FrameNone
	}
	return frame
}

func (r *Request) toStruct() (*structpb.Struct, error) {
	fields := map[string]any{}
	switch {
	case r.UserLogin != nil:
		fields[keyUserLogin] = r.UserLogin.toMap()
	case r.ChatMessage != nil:
		fields[keyChatMessage] = r.ChatMessage.toMap()
	case r.UserLogout != nil:
		fields[keyUserLogout] = r.UserLogout.toMap()
	}
	return structpb.NewStruct(fields)
}

func (r *Request) fromStruct(s *structpb.Struct) {
	*r = Request{}
	fields := s.GetFields()
	switch {
	case fields[keyUserLogin] != nil:
		r.UserLogin = userInfoFrom(fields[keyUserLogin])
	case fields[keyChatMessage] != nil:
		r.ChatMessage = chatMessageFrom(fields[keyChatMessage])
	case fields[keyUserLogout] != nil:
		r.UserLogout = userInfoFrom(fields[keyUserLogout])
	}
}

func (r *Response) toStruct() (*structpb.Struct, error) {
	fields := map[string]any{
		keySendFromUserID:   r.SendFromUserID,
		keySendFromUserName: r.SendFromUserName,
	}
	switch {
	case r.ChatMessage != nil:
		fields[keyChatMessage] = r.ChatMessage.toMap()
	case r.UserLogin != nil:
		fields[keyUserLogin] = r.UserLogin.toMap()
	case r.UserLogout != nil:
		fields[keyUserLogout] = r.UserLogout.toMap()
	case r.Unknown != "":
		fields[r.Unknown] = map[string]any{}
	}
	return structpb.NewStruct(fields)
}

func (r *Response) fromStruct(s *structpb.Struct) {
	*r = Response{}
	for key, value := range s.GetFields() {
		switch key {
		case keySendFromUserID:
			r.SendFromUserID = value.GetStringValue()
		case keySendFromUserName:
			r.SendFromUserName = value.GetStringValue()
		case keyChatMessage:
			r.ChatMessage = chatMessageFrom(value)
		case keyUserLogin:
			r.UserLogin = userInfoFrom(value)
		case keyUserLogout:
			r.UserLogout = userInfoFrom(value)
		default:
			r.Unknown = key
		}
	}
}

func (u *UserInfo) toMap() map[string]any {
	return map[string]any{keyID: u.ID, keyName: u.Name}
}

func (c *ChatMessage) toMap() map[string]any {
	return map[string]any{keyID: c.ID, keyMessage: c.Message}
}

func userInfoFrom(value *structpb.Value) *UserInfo {
	fields := value.GetStructValue().GetFields()
	return &UserInfo{ID: fields[keyID].GetStringValue(), Name: fields[keyName].GetStringValue()}
}

func chatMessageFrom(value *structpb.Value) *ChatMessage {
	fields := value.GetStructValue().GetFields()
	return &ChatMessage{ID: fields[keyID].GetStringValue(), Message: fields[keyMessage].GetStringValue()}
}
