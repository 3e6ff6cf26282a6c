//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chat-hub/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

type IMessageRepository interface {
	Append(msg domain.Message) error
	History(kind domain.Kind, key string) ([]domain.Message, error)
	Find(kind domain.Kind, key, messageID string) (domain.Message, bool, error)
	Delete(kind domain.Kind, key, messageID string) error
	Drop(kind domain.Kind, key string) ([]string, error)
	Sweep(cutoff time.Time) ([]string, error)
	ConversationsOf(nickname string, since time.Time) (map[string][]domain.Message, error)
	SequenceLen(kind domain.Kind, key string) (int, error)
}

// MessageRepository keeps the bounded message logs in BadgerDB. The store
// runs in Badger's in-memory mode: retention is the 100-entry cap and the
// 24h sweep, nothing survives the process.
//
// The key is formatted as "msg:{kind}:{key}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two
//     messages arrive at the same nanosecond.
//
// Room names and nicknames exclude ':' (enforced at the transport), so a
// sequence prefix can never leak into a neighbouring one.
type MessageRepository struct {
	db    *badger.DB
	log   *slog.Logger
	limit int
}

// NewMessageRepository wires the repository over an open Badger handle.
// limit is the per-sequence cap; insertion beyond it evicts the oldest.
func NewMessageRepository(db *badger.DB, log *slog.Logger, limit int) *MessageRepository {
	return &MessageRepository{db: db, log: log, limit: limit}
}

// OpenInMemory opens the non-durable Badger instance backing the store.
func OpenInMemory() (*badger.DB, error) {
	options := badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR)
	return badger.Open(options)
}

func sequencePrefix(kind domain.Kind, key string) []byte {
	return []byte(fmt.Sprintf("msg:%s:%s:", kind, key))
}

func messageKey(msg domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%s:%019d:%s",
		msg.Kind, msg.StoreKey(), msg.CreatedAt.UnixNano(), msg.ID))
}

// messageIDOf extracts the uuid segment, which is always the tail of a key.
func messageIDOf(key []byte) string {
	s := string(key)
	return s[strings.LastIndexByte(s, ':')+1:]
}

// collectKeys gathers the keys under a prefix that pass the filter, closing
// its iterator before returning so the caller may delete them in the same
// transaction.
func collectKeys(txn *badger.Txn, prefix []byte, keep func(*badger.Item) (bool, error)) ([][]byte, error) {
	var keys [][]byte
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		if keep != nil {
			ok, err := keep(item)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		keys = append(keys, item.KeyCopy(nil))
	}
	return keys, nil
}

// Append inserts the message at the end of its sequence and evicts the
// oldest entries beyond the cap, all in one transaction.
func (m *MessageRepository) Append(msg domain.Message) error {
	value, err := cbor.Marshal(msg)
	if err != nil {
		return err
	}

	prefix := sequencePrefix(msg.Kind, msg.StoreKey())
	return m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(messageKey(msg), value); err != nil {
			return err
		}

		// The iterator sees the pending write, so the count includes the
		// message inserted above.
		keys, err := collectKeys(txn, prefix, nil)
		if err != nil {
			return err
		}
		for len(keys) > m.limit {
			if err := txn.Delete(keys[0]); err != nil {
				return err
			}
			m.log.Debug("Evicted oldest message over sequence cap",
				"sequence", string(prefix), "messageId", messageIDOf(keys[0]))
			keys = keys[1:]
		}
		return nil
	})
}

// History returns the sequence in chronological order.
func (m *MessageRepository) History(kind domain.Kind, key string) ([]domain.Message, error) {
	var messages []domain.Message
	prefix := sequencePrefix(kind, key)

	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var msg domain.Message
				if err := cbor.Unmarshal(value, &msg); err != nil {
					return err
				}
				messages = append(messages, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return messages, err
}

// Find locates one message of a sequence by id.
func (m *MessageRepository) Find(kind domain.Kind, key, messageID string) (domain.Message, bool, error) {
	var (
		found bool
		msg   domain.Message
	)
	prefix := sequencePrefix(kind, key)
	suffix := ":" + messageID

	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			if !strings.HasSuffix(string(item.Key()), suffix) {
				continue
			}
			found = true
			return item.Value(func(value []byte) error {
				return cbor.Unmarshal(value, &msg)
			})
		}
		return nil
	})
	return msg, found, err
}

// Delete removes one message of a sequence by id. Permission checks belong
// to the caller; an unknown id is reported as badger.ErrKeyNotFound.
func (m *MessageRepository) Delete(kind domain.Kind, key, messageID string) error {
	prefix := sequencePrefix(kind, key)
	suffix := ":" + messageID

	return m.db.Update(func(txn *badger.Txn) error {
		keys, err := collectKeys(txn, prefix, func(item *badger.Item) (bool, error) {
			return strings.HasSuffix(string(item.Key()), suffix), nil
		})
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			return badger.ErrKeyNotFound
		}
		return txn.Delete(keys[0])
	})
}

// Drop discards a whole sequence and returns the ids of the removed
// messages so callers can clean up derived state.
func (m *MessageRepository) Drop(kind domain.Kind, key string) ([]string, error) {
	var removed []string
	prefix := sequencePrefix(kind, key)

	err := m.db.Update(func(txn *badger.Txn) error {
		keys, err := collectKeys(txn, prefix, nil)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
			removed = append(removed, messageIDOf(k))
		}
		return nil
	})
	return removed, err
}

// Sweep removes every message older than the cutoff across all sequences
// of all kinds and returns the removed ids.
func (m *MessageRepository) Sweep(cutoff time.Time) ([]string, error) {
	var removed []string
	prefix := []byte("msg:")

	err := m.db.Update(func(txn *badger.Txn) error {
		keys, err := collectKeys(txn, prefix, func(item *badger.Item) (bool, error) {
			var msg domain.Message
			err := item.Value(func(value []byte) error {
				return cbor.Unmarshal(value, &msg)
			})
			if err != nil {
				return false, err
			}
			return msg.CreatedAt.Before(cutoff), nil
		})
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
			removed = append(removed, messageIDOf(k))
		}
		return nil
	})
	return removed, err
}

// ConversationsOf returns every private conversation involving the
// nickname that has at least one message newer than since. Values hold the
// full stored sequence, keyed by conversation id.
func (m *MessageRepository) ConversationsOf(nickname string, since time.Time) (map[string][]domain.Message, error) {
	all := make(map[string][]domain.Message)
	fresh := make(map[string]bool)
	prefix := []byte("msg:" + string(domain.KindPrivate) + ":")

	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var msg domain.Message
				if err := cbor.Unmarshal(value, &msg); err != nil {
					return err
				}
				if msg.From != nickname && msg.To != nickname {
					return nil
				}
				id := msg.StoreKey()
				all[id] = append(all[id], msg)
				if msg.CreatedAt.After(since) {
					fresh[id] = true
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for id := range all {
		if !fresh[id] {
			delete(all, id)
		}
	}
	return all, nil
}

// SequenceLen counts the entries of one sequence, used by the inspector.
func (m *MessageRepository) SequenceLen(kind domain.Kind, key string) (int, error) {
	count := 0
	prefix := sequencePrefix(kind, key)
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
