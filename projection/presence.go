// Package projection derives read views from engine state. Views are
// computed after a mutation and broadcast to observers; they hold no state
// of their own.
package projection

import (
	"time"

	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/moderation"
)

// NicknameResolver is the slice of the session directory the presence view
// needs.
type NicknameResolver interface {
	NicknameOf(id domain.SessionID) (string, bool)
}

// RoomPresence builds the update_users snapshot of one room: member
// nicknames in join order, the owner, banned nicknames, and unexpired kicks
// with their expiration in unix milliseconds.
//
// Under the connection ban policy the ledger stores session ids, so banned
// entries resolve through the directory and silently drop identities whose
// connection is gone. Under the nickname policy the identity is the
// nickname itself.
func RoomPresence(room *domain.Room, resolver NicknameResolver, ledger *moderation.Ledger, now time.Time) event.UpdateUsers {
	users := make([]string, 0, len(room.Members()))
	for _, id := range room.Members() {
		if nickname, ok := resolver.NicknameOf(id); ok {
			users = append(users, nickname)
		}
	}

	banned := make([]string, 0)
	for _, identity := range ledger.BannedIdentities(room.Name) {
		if ledger.Policy() == moderation.BanByNickname {
			banned = append(banned, identity)
			continue
		}
		if nickname, ok := resolver.NicknameOf(domain.SessionID(identity)); ok {
			banned = append(banned, nickname)
		}
	}

	kicked := make(map[string]int64)
	for nickname, until := range ledger.ActiveKicks(room.Name, now) {
		kicked[nickname] = until.UnixMilli()
	}

	return event.UpdateUsers{
		Users:       users,
		RoomOwner:   room.Owner,
		BannedUsers: banned,
		KickedUsers: kicked,
	}
}
