package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoom_MembershipIsDeduplicated(t *testing.T) {
	req := require.New(t)
	room := NewRoom("arena", "alice", "")

	room.AddMember("s1")
	room.AddMember("s1")
	room.AddMember("s2")
	req.Len(room.Members(), 2)

	room.RemoveMember("s1")
	req.Equal([]SessionID{"s2"}, room.Members())
}

func TestRoom_RegisterJoinOnlyFirstTime(t *testing.T) {
	req := require.New(t)
	room := NewRoom("arena", "alice", "")

	req.True(room.RegisterJoin("bob"))
	req.False(room.RegisterJoin("bob"))
	req.True(room.RegisterJoin("carol"))
}

func TestRoom_HasSecret(t *testing.T) {
	req := require.New(t)
	req.False(NewRoom("open", "alice", "").HasSecret())
	req.True(NewRoom("vault", "alice", "hash").HasSecret())
}
