package sink

import (
	"chat-client/domain"
	"chat-client/repositories"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// TranscriptSink keeps every received event on local disk.
// Storage failures are logged; rendering never depends on them.
type TranscriptSink struct {
	repository repositories.ITranscriptRepository
	log        *slog.Logger
	now        func() time.Time
}

func NewTranscriptSink(repository repositories.ITranscriptRepository, log *slog.Logger) TranscriptSink {
	return TranscriptSink{repository: repository, log: log, now: time.Now}
}

func (d TranscriptSink) OnEvent(evt domain.IncomingEvent) {
	entry, ok := d.toEntry(evt)
	if !ok {
		d.log.Debug(fmt.Sprintf("Not stored event : %T", evt))
		return
	}
	if err := d.repository.Store(entry); err != nil {
		d.log.Error("failed to store transcript entry", "kind", entry.Kind, "error", err)
	}
}

func (d TranscriptSink) toEntry(evt domain.IncomingEvent) (repositories.TranscriptEntry, bool) {
	entry := repositories.TranscriptEntry{ID: uuid.New(), At: d.now().UTC()}
	switch e := evt.(type) {
	case domain.ChatReceived:
		entry.Kind = repositories.EntryChat
		entry.UserID, entry.UserName, entry.Text = e.FromUserID, e.FromUserName, e.Text
	case domain.UserJoined:
		entry.Kind = repositories.EntryJoin
		entry.UserID, entry.UserName = e.Identity.ID, e.Identity.Name
	case domain.UserLeft:
		entry.Kind = repositories.EntryLeave
		entry.UserID, entry.UserName = e.Identity.ID, e.Identity.Name
	default:
		return repositories.TranscriptEntry{}, false
	}
	return entry, true
}
