package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConversationID_IsSymmetric(t *testing.T) {
	req := require.New(t)
	req.Equal(ConversationID("alice", "bob"), ConversationID("bob", "alice"))
	req.Equal("alice_bob", ConversationID("bob", "alice"))
}

func TestConversationID_DistinctPairsDistinctIDs(t *testing.T) {
	req := require.New(t)
	req.NotEqual(ConversationID("alice", "bob"), ConversationID("alice", "carol"))
}

func TestConversationPeer(t *testing.T) {
	req := require.New(t)
	id := ConversationID("alice", "bob")
	req.Equal("bob", ConversationPeer(id, "alice"))
	req.Equal("alice", ConversationPeer(id, "bob"))
}
