package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chat-hub/domain"
)

func TestRoomRegistry_SeedsLobby(t *testing.T) {
	req := require.New(t)
	reg := NewRoomRegistry()

	room, ok := reg.Get(domain.Lobby)
	req.True(ok)
	req.Empty(room.Owner)
	req.False(room.HasSecret())
}

func TestRoomRegistry_ListKeepsCreationOrder(t *testing.T) {
	req := require.New(t)
	reg := NewRoomRegistry()

	_, err := reg.Create("beta", "alice", "")
	req.NoError(err)
	_, err = reg.Create("alpha", "bob", "hash")
	req.NoError(err)

	list := reg.List()
	req.Len(list, 3)
	req.Equal(domain.Lobby, list[0].Name)
	req.Equal("beta", list[1].Name)
	req.Equal("alpha", list[2].Name)
	req.True(list[2].HasPassword)
}

func TestRoomRegistry_RejectsDuplicates(t *testing.T) {
	req := require.New(t)
	reg := NewRoomRegistry()

	_, err := reg.Create("arena", "alice", "")
	req.NoError(err)
	_, err = reg.Create("arena", "bob", "")
	req.Error(err)
	_, err = reg.Create("", "bob", "")
	req.Error(err)
	_, err = reg.Create(domain.Lobby, "bob", "")
	req.Error(err)
}

func TestRoomRegistry_DeleteForgetsRoom(t *testing.T) {
	req := require.New(t)
	reg := NewRoomRegistry()

	_, err := reg.Create("arena", "alice", "")
	req.NoError(err)
	reg.Delete("arena")

	_, ok := reg.Get("arena")
	req.False(ok)
	req.Len(reg.List(), 1)
}
