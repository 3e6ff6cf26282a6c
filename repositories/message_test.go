package repositories

import (
	"log/slog"
	"testing"
	"time"

	"chat-hub/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestRepository(t *testing.T, limit int) *MessageRepository {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMessageRepository(db, slog.Default(), limit)
}

func roomMessage(room, from, body string, at time.Time) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		Kind:      domain.KindRoom,
		Room:      room,
		From:      from,
		Body:      body,
		CreatedAt: at,
	}
}

func privateMessage(from, to, body string, at time.Time) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		Kind:      domain.KindPrivate,
		From:      from,
		To:        to,
		Body:      body,
		CreatedAt: at,
	}
}

func Test_Append_And_History_Order(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t, 100)
	at := time.Now().UTC()

	stored := []domain.Message{
		roomMessage("Dev", "Alice", "first", at),
		roomMessage("Dev", "Bob", "second", at.Add(1*time.Minute)),
		roomMessage("Dev", "Clara", "third", at.Add(2*time.Minute)),
	}
	for _, msg := range stored {
		req.NoError(repository.Append(msg))
	}

	fetched, err := repository.History(domain.KindRoom, "Dev")
	req.NoError(err)
	req.Len(fetched, len(stored))
	for i := range stored {
		req.Equal(stored[i].ID, fetched[i].ID)
		req.Equal(stored[i].Body, fetched[i].Body)
	}
}

func Test_Append_EvictsOldestOverCap(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t, 100)
	at := time.Now().UTC()

	var first domain.Message
	for i := 0; i < 101; i++ {
		msg := roomMessage("Dev", "Alice", "spam", at.Add(time.Duration(i)*time.Second))
		if i == 0 {
			first = msg
		}
		req.NoError(repository.Append(msg))
	}

	history, err := repository.History(domain.KindRoom, "Dev")
	req.NoError(err)
	req.Len(history, 100)

	_, found, err := repository.Find(domain.KindRoom, "Dev", first.ID.String())
	req.NoError(err)
	req.False(found)
}

func Test_Sequences_Are_Isolated(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t, 100)
	at := time.Now().UTC()

	req.NoError(repository.Append(roomMessage("Dev", "Alice", "room talk", at)))
	req.NoError(repository.Append(privateMessage("alice", "bob", "psst", at)))

	roomHistory, err := repository.History(domain.KindRoom, "Dev")
	req.NoError(err)
	req.Len(roomHistory, 1)

	convHistory, err := repository.History(domain.KindPrivate, domain.ConversationID("bob", "alice"))
	req.NoError(err)
	req.Len(convHistory, 1)
	req.Equal("psst", convHistory[0].Body)
}

func Test_Delete_RemovesSingleMessage(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t, 100)
	at := time.Now().UTC()

	keep := roomMessage("Dev", "Alice", "keep", at)
	drop := roomMessage("Dev", "Bob", "drop", at.Add(time.Second))
	req.NoError(repository.Append(keep))
	req.NoError(repository.Append(drop))

	req.NoError(repository.Delete(domain.KindRoom, "Dev", drop.ID.String()))

	history, err := repository.History(domain.KindRoom, "Dev")
	req.NoError(err)
	req.Len(history, 1)
	req.Equal(keep.ID, history[0].ID)

	err = repository.Delete(domain.KindRoom, "Dev", drop.ID.String())
	req.Error(err)
}

func Test_Sweep_DropsAgedMessages(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t, 100)
	now := time.Now().UTC()

	aged := roomMessage("Dev", "Alice", "old", now.Add(-25*time.Hour))
	fresh := roomMessage("Dev", "Bob", "new", now)
	agedPrivate := privateMessage("alice", "bob", "old secret", now.Add(-25*time.Hour))
	req.NoError(repository.Append(aged))
	req.NoError(repository.Append(fresh))
	req.NoError(repository.Append(agedPrivate))

	removed, err := repository.Sweep(now.Add(-24 * time.Hour))
	req.NoError(err)
	req.ElementsMatch([]string{aged.ID.String(), agedPrivate.ID.String()}, removed)

	history, err := repository.History(domain.KindRoom, "Dev")
	req.NoError(err)
	req.Len(history, 1)
	req.Equal(fresh.ID, history[0].ID)
}

func Test_Drop_DiscardsWholeSequence(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t, 100)
	at := time.Now().UTC()

	first := roomMessage("Dev", "Alice", "one", at)
	second := roomMessage("Dev", "Bob", "two", at.Add(time.Second))
	req.NoError(repository.Append(first))
	req.NoError(repository.Append(second))

	removed, err := repository.Drop(domain.KindRoom, "Dev")
	req.NoError(err)
	req.ElementsMatch([]string{first.ID.String(), second.ID.String()}, removed)

	history, err := repository.History(domain.KindRoom, "Dev")
	req.NoError(err)
	req.Empty(history)
}

func Test_ConversationsOf_FiltersStaleThreads(t *testing.T) {
	req := require.New(t)
	repository := openTestRepository(t, 100)
	now := time.Now().UTC()

	req.NoError(repository.Append(privateMessage("alice", "bob", "recent", now)))
	req.NoError(repository.Append(privateMessage("carol", "alice", "stale", now.Add(-25*time.Hour))))
	req.NoError(repository.Append(privateMessage("bob", "carol", "not alice", now)))

	chats, err := repository.ConversationsOf("alice", now.Add(-24*time.Hour))
	req.NoError(err)
	req.Len(chats, 1)
	req.Contains(chats, domain.ConversationID("alice", "bob"))
	req.Len(chats[domain.ConversationID("alice", "bob")], 1)
}
