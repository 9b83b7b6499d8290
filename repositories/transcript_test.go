package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func openTranscript(t *testing.T, withIndex bool) *TranscriptRepository {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	var writer *bluge.Writer
	if withIndex {
		writer, err = bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
		req.NoError(err)
		t.Cleanup(func() { _ = writer.Close() })
	}
	return NewTranscriptRepository(db, writer, logs.GetLoggerFromLevel(slog.LevelDebug))
}

func entry(kind EntryKind, name, text string, at time.Time) TranscriptEntry {
	return TranscriptEntry{ID: uuid.New(), Kind: kind, UserID: uuid.NewString(), UserName: name, Text: text, At: at}
}

func TestTranscript_Recent_ChronologicalOrder(t *testing.T) {
	req := require.New(t)
	repository := openTranscript(t, false)
	at := time.Now().UTC()

	// Given three entries stored out of order
	entries := []TranscriptEntry{
		entry(EntryJoin, "alice", "", at),
		entry(EntryChat, "alice", "hello", at.Add(1*time.Minute)),
		entry(EntryLeave, "alice", "", at.Add(2*time.Minute)),
	}
	req.NoError(repository.Store(entries[2]))
	req.NoError(repository.Store(entries[0]))
	req.NoError(repository.Store(entries[1]))

	// When reading them back
	fetched, err := repository.Recent(10)

	// Then they come oldest first
	req.NoError(err)
	req.Equal(entries, fetched)
}

func TestTranscript_Recent_Limit(t *testing.T) {
	req := require.New(t)
	repository := openTranscript(t, false)
	at := time.Now().UTC()

	for i := 0; i < 5; i++ {
		req.NoError(repository.Store(entry(EntryChat, "bob", "message", at.Add(time.Duration(i)*time.Second))))
	}

	// When asking for the last two
	fetched, err := repository.Recent(2)

	// Then only the two newest are returned
	req.NoError(err)
	req.Len(fetched, 2)
	req.Equal(at.Add(3*time.Second), fetched[0].At)
	req.Equal(at.Add(4*time.Second), fetched[1].At)
}

func TestTranscript_Search(t *testing.T) {
	req := require.New(t)
	repository := openTranscript(t, true)
	at := time.Now().UTC()

	hit := entry(EntryChat, "carol", "the badger crossed the road", at)
	req.NoError(repository.Store(hit))
	req.NoError(repository.Store(entry(EntryChat, "dave", "nothing to see", at.Add(time.Second))))
	req.NoError(repository.Store(entry(EntryJoin, "badger", "", at.Add(2*time.Second))))

	// When searching a word of the first message
	found, err := repository.Search(context.Background(), "badger", 10)

	// Then only that chat entry matches
	req.NoError(err)
	req.Equal([]TranscriptEntry{hit}, found)
}

func TestTranscript_Search_Disabled(t *testing.T) {
	req := require.New(t)
	repository := openTranscript(t, false)

	_, err := repository.Search(context.Background(), "anything", 10)

	req.ErrorIs(err, ErrSearchDisabled)
}
