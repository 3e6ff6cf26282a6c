package repositories

import (
	"context"
	"log/slog"

	"chat-hub/domain"

	"github.com/blugelabs/bluge"
)

// SearchIndex maintains a full-text index over room messages. The index
// lives in memory only and is best effort: it is trimmed on delete and on
// sweep, never rebuilt.
type SearchIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
	limit  int
}

// NewSearchIndex opens an in-memory bluge writer. limit caps the number of
// hits returned per search.
func NewSearchIndex(log *slog.Logger, limit int) (*SearchIndex, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, err
	}
	return &SearchIndex{writer: writer, log: log, limit: limit}, nil
}

// Index adds or replaces the message in the index.
func (s *SearchIndex) Index(msg domain.Message) error {
	if msg.Kind != domain.KindRoom {
		return nil
	}
	doc := bluge.NewDocument(msg.ID.String()).
		AddField(bluge.NewKeywordField("room", msg.Room)).
		AddField(bluge.NewTextField("body", msg.Body))
	return s.writer.Update(doc.ID(), doc)
}

// Remove drops one message from the index.
func (s *SearchIndex) Remove(messageID string) error {
	doc := bluge.NewDocument(messageID)
	return s.writer.Delete(doc.ID())
}

// Search returns the ids of the room's messages matching the terms, best
// first.
func (s *SearchIndex) Search(ctx context.Context, room, terms string) ([]string, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			s.log.Warn("Failed to close index reader", "err", err)
		}
	}()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("body")).
		AddMust(bluge.NewTermQuery(room).SetField("room"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(s.limit, query))
	if err != nil {
		return nil, err
	}

	var ids []string
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				ids = append(ids, string(value))
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (s *SearchIndex) Close() error {
	return s.writer.Close()
}
