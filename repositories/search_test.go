package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_SearchIndex_MatchesWithinRoom(t *testing.T) {
	req := require.New(t)
	index, err := NewSearchIndex(slog.Default(), 10)
	req.NoError(err)
	defer index.Close()

	at := time.Now().UTC()
	hit := roomMessage("Dev", "Alice", "deploy pipeline is broken", at)
	other := roomMessage("Ops", "Bob", "deploy went fine", at)
	noise := roomMessage("Dev", "Clara", "lunch anyone", at)

	req.NoError(index.Index(hit))
	req.NoError(index.Index(other))
	req.NoError(index.Index(noise))

	ids, err := index.Search(context.Background(), "Dev", "deploy")
	req.NoError(err)
	req.Equal([]string{hit.ID.String()}, ids)
}

func Test_SearchIndex_RemoveDropsMessage(t *testing.T) {
	req := require.New(t)
	index, err := NewSearchIndex(slog.Default(), 10)
	req.NoError(err)
	defer index.Close()

	msg := roomMessage("Dev", "Alice", "incident declared", time.Now().UTC())
	req.NoError(index.Index(msg))
	req.NoError(index.Remove(msg.ID.String()))

	ids, err := index.Search(context.Background(), "Dev", "incident")
	req.NoError(err)
	req.Empty(ids)
}

func Test_SearchIndex_IgnoresPrivateMessages(t *testing.T) {
	req := require.New(t)
	index, err := NewSearchIndex(slog.Default(), 10)
	req.NoError(err)
	defer index.Close()

	req.NoError(index.Index(privateMessage("alice", "bob", "secret plan", time.Now().UTC())))

	ids, err := index.Search(context.Background(), "", "secret")
	req.NoError(err)
	req.Empty(ids)
}
