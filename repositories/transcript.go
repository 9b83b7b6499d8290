//go:generate go run go.uber.org/mock/mockgen -source=transcript.go -destination=../mocks/mock_transcript_repository.go -package=mocks
package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	transcriptPrefix = "evt:"
	fieldText        = "text"
	fieldUser        = "user"
)

var ErrSearchDisabled = errors.New("transcript search is disabled")

type EntryKind string

const (
	EntryChat  EntryKind = "chat"
	EntryJoin  EntryKind = "join"
	EntryLeave EntryKind = "leave"
)

type ITranscriptRepository interface {
	Store(entry TranscriptEntry) error
	Recent(limit int) ([]TranscriptEntry, error)
	Search(ctx context.Context, terms string, limit int) ([]TranscriptEntry, error)
}

// TranscriptEntry is one received event kept on local disk.
type TranscriptEntry struct {
	ID       uuid.UUID
	Kind     EntryKind
	UserID   string
	UserName string
	Text     string
	At       time.Time
}

// TranscriptRepository stores entries in BadgerDB and, when a bluge writer
// is given, indexes chat text for full-text search.
type TranscriptRepository struct {
	db    *badger.DB
	index *bluge.Writer
	log   *slog.Logger
}

func NewTranscriptRepository(db *badger.DB, index *bluge.Writer, log *slog.Logger) *TranscriptRepository {
	return &TranscriptRepository{db: db, index: index, log: log}
}

// Store persists an entry under "evt:{timestamp_padded}:{uuid}".
// The 19-digit padding keeps lexicographical order chronological and the
// uuid keeps two entries of the same nanosecond apart.
func (r *TranscriptRepository) Store(entry TranscriptEntry) error {
	key := entryKey(entry)
	value, err := fromEntry(entry)
	if err != nil {
		return err
	}
	bytes, err := proto.Marshal(value)
	if err != nil {
		return err
	}
	if err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	}); err != nil {
		return err
	}

	if r.index == nil || entry.Kind != EntryChat {
		return nil
	}
	doc := bluge.NewDocument(key).
		AddField(bluge.NewTextField(fieldText, entry.Text)).
		AddField(bluge.NewKeywordField(fieldUser, entry.UserName).StoreValue())
	return r.index.Update(doc.ID(), doc)
}

// Recent returns the last limit entries, oldest first. A limit <= 0 returns all.
func (r *TranscriptRepository) Recent(limit int) ([]TranscriptEntry, error) {
	var entries []TranscriptEntry
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(transcriptPrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(append(prefix, []byte("9999999999999999999")...)); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(entries) == limit {
				break
			}
			entry, err := r.read(it.Item())
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(entries)
	return entries, nil
}

// Search returns the chat entries best matching terms.
func (r *TranscriptRepository) Search(ctx context.Context, terms string, limit int) ([]TranscriptEntry, error) {
	if r.index == nil {
		return nil, ErrSearchDisabled
	}
	reader, err := r.index.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	query := bluge.NewMatchQuery(terms).SetField(fieldText)
	matches, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var keys []string
	match, err := matches.Next()
	for err == nil && match != nil {
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				keys = append(keys, string(value))
			}
			return true
		})
		if err == nil {
			match, err = matches.Next()
		}
	}
	if err != nil {
		return nil, err
	}

	var entries []TranscriptEntry
	err = r.db.View(func(txn *badger.Txn) error {
		for _, key := range keys {
			item, err := txn.Get([]byte(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				r.log.Debug("Indexed entry missing from store", "key", key)
				continue
			}
			if err != nil {
				return err
			}
			entry, err := r.read(item)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	return entries, err
}

func (r *TranscriptRepository) read(item *badger.Item) (TranscriptEntry, error) {
	var entry TranscriptEntry
	err := item.Value(func(value []byte) error {
		var s structpb.Struct
		if err := proto.Unmarshal(value, &s); err != nil {
			return err
		}
		var err error
		entry, err = toEntry(&s)
		return err
	})
	return entry, err
}

func entryKey(entry TranscriptEntry) string {
	return fmt.Sprintf("%s%019d:%s", transcriptPrefix, entry.At.UnixNano(), entry.ID)
}

func fromEntry(entry TranscriptEntry) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":       entry.ID.String(),
		"kind":     string(entry.Kind),
		"userId":   entry.UserID,
		"userName": entry.UserName,
		"text":     entry.Text,
		"at":       entry.At.UTC().Format(time.RFC3339Nano),
	})
}

func toEntry(s *structpb.Struct) (TranscriptEntry, error) {
	fields := s.GetFields()
	id, err := uuid.Parse(fields["id"].GetStringValue())
	if err != nil {
		return TranscriptEntry{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, fields["at"].GetStringValue())
	if err != nil {
		return TranscriptEntry{}, err
	}
	return TranscriptEntry{
		ID:       id,
		Kind:     EntryKind(fields["kind"].GetStringValue()),
		UserID:   fields["userId"].GetStringValue(),
		UserName: fields["userName"].GetStringValue(),
		Text:     fields["text"].GetStringValue(),
		At:       at,
	}, nil
}
