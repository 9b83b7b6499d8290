package sink

import (
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/moderation"
	"log/slog"
)

// ModerationSink censors chat text before handing events to next.
type ModerationSink struct {
	moderator *moderation.Moderator
	next      contract.Renderer
	log       *slog.Logger
}

func NewModerationSink(moderator *moderation.Moderator, next contract.Renderer, log *slog.Logger) ModerationSink {
	return ModerationSink{moderator: moderator, next: next, log: log}
}

func (m ModerationSink) OnEvent(evt domain.IncomingEvent) {
	if chat, ok := evt.(domain.ChatReceived); ok {
		var words []string
		chat.Text, words = m.moderator.Censor(chat.Text)
		if len(words) > 0 {
			m.log.Debug("Censored chat message", "user_id", chat.FromUserID, "words", words)
		}
		evt = chat
	}
	m.next.OnEvent(evt)
}
