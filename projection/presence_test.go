package projection

import (
	"testing"
	"time"

	"chat-hub/domain"
	"chat-hub/moderation"

	"github.com/stretchr/testify/require"
)

type staticResolver map[domain.SessionID]string

func (r staticResolver) NicknameOf(id domain.SessionID) (string, bool) {
	nickname, ok := r[id]
	return nickname, ok
}

func TestRoomPresence_ResolvesMembersAndModeration(t *testing.T) {
	req := require.New(t)
	now := time.Now()

	room := domain.NewRoom("Dev", "alice", "")
	room.AddMember("s-alice")
	room.AddMember("s-bob")
	room.AddMember("s-ghost")

	resolver := staticResolver{"s-alice": "alice", "s-bob": "bob", "s-banned": "mallory"}

	ledger := moderation.NewLedger(moderation.BanByConnection)
	ledger.Ban("Dev", "s-banned")
	ledger.Ban("Dev", "s-gone")
	ledger.Kick("Dev", "eve", now.Add(time.Minute))
	ledger.Kick("Dev", "past", now.Add(-time.Minute))

	view := RoomPresence(room, resolver, ledger, now)

	// Unresolvable sessions are dropped from both lists.
	req.Equal([]string{"alice", "bob"}, view.Users)
	req.Equal("alice", view.RoomOwner)
	req.Equal([]string{"mallory"}, view.BannedUsers)
	req.Len(view.KickedUsers, 1)
	req.Contains(view.KickedUsers, "eve")
}

func TestRoomPresence_NicknameBanPolicy(t *testing.T) {
	req := require.New(t)

	room := domain.NewRoom("Dev", "alice", "")
	ledger := moderation.NewLedger(moderation.BanByNickname)
	ledger.Ban("Dev", "mallory")

	view := RoomPresence(room, staticResolver{}, ledger, time.Now())
	req.Equal([]string{"mallory"}, view.BannedUsers)
}
