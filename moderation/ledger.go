package moderation

import (
	"fmt"
	"sort"
	"time"
)

// BanPolicy selects the identity a ban is keyed on. The historical behavior
// keys on the transport connection, which a reconnect escapes; keying on
// the nickname survives reconnects.
type BanPolicy string

const (
	BanByConnection BanPolicy = "connection"
	BanByNickname   BanPolicy = "nickname"
)

// ParseBanPolicy maps the configured value to a policy. An empty value
// keeps the historical connection-keyed behavior.
func ParseBanPolicy(value string) (BanPolicy, error) {
	switch BanPolicy(value) {
	case "":
		return BanByConnection, nil
	case BanByConnection, BanByNickname:
		return BanPolicy(value), nil
	default:
		return "", fmt.Errorf("unknown ban policy %q", value)
	}
}

// Ledger tracks per-room bans (until explicitly lifted) and kicks (until a
// timestamp). It is not safe for concurrent use: the engine owns it and
// serializes every access.
//
// Kick reads are side-effecting: an expired record is deleted by the read
// that observes it. Sweep additionally expires eagerly to bound staleness.
type Ledger struct {
	policy BanPolicy
	bans   map[string]map[string]struct{}
	kicks  map[string]map[string]time.Time
}

func NewLedger(policy BanPolicy) *Ledger {
	return &Ledger{
		policy: policy,
		bans:   make(map[string]map[string]struct{}),
		kicks:  make(map[string]map[string]time.Time),
	}
}

func (l *Ledger) Policy() BanPolicy { return l.policy }

// Ban excludes the identity from the room until Unban.
func (l *Ledger) Ban(room, identity string) {
	if _, ok := l.bans[room]; !ok {
		l.bans[room] = make(map[string]struct{})
	}
	l.bans[room][identity] = struct{}{}
}

func (l *Ledger) Unban(room, identity string) {
	delete(l.bans[room], identity)
}

func (l *Ledger) IsBanned(room, identity string) bool {
	_, ok := l.bans[room][identity]
	return ok
}

// BannedIdentities returns the room's ban list in stable order.
func (l *Ledger) BannedIdentities(room string) []string {
	ids := make([]string, 0, len(l.bans[room]))
	for id := range l.bans[room] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Kick bars the nickname from the room until the given instant.
func (l *Ledger) Kick(room, nickname string, until time.Time) {
	if _, ok := l.kicks[room]; !ok {
		l.kicks[room] = make(map[string]time.Time)
	}
	l.kicks[room][nickname] = until
}

func (l *Ledger) Unkick(room, nickname string) {
	delete(l.kicks[room], nickname)
}

// KickRemaining reports how long the nickname stays barred from the room.
// An expired record is treated as absent and removed as a side effect.
func (l *Ledger) KickRemaining(room, nickname string, now time.Time) (time.Duration, bool) {
	until, ok := l.kicks[room][nickname]
	if !ok {
		return 0, false
	}
	if !now.Before(until) {
		delete(l.kicks[room], nickname)
		return 0, false
	}
	return until.Sub(now), true
}

// ActiveKicks returns the room's unexpired kick records, pruning expired
// ones on the way.
func (l *Ledger) ActiveKicks(room string, now time.Time) map[string]time.Time {
	active := make(map[string]time.Time)
	for nickname, until := range l.kicks[room] {
		if !now.Before(until) {
			delete(l.kicks[room], nickname)
			continue
		}
		active[nickname] = until
	}
	return active
}

// DropRoom discards every moderation record of a deleted room.
func (l *Ledger) DropRoom(room string) {
	delete(l.bans, room)
	delete(l.kicks, room)
}

// Sweep eagerly removes expired kick records across all rooms.
func (l *Ledger) Sweep(now time.Time) int {
	removed := 0
	for room, kicks := range l.kicks {
		for nickname, until := range kicks {
			if !now.Before(until) {
				delete(kicks, nickname)
				removed++
			}
		}
		if len(kicks) == 0 {
			delete(l.kicks, room)
		}
	}
	return removed
}

// CountsFor reports ban and active-kick counts, used by the inspector.
func (l *Ledger) CountsFor(room string, now time.Time) (bans, kicks int) {
	bans = len(l.bans[room])
	for _, until := range l.kicks[room] {
		if now.Before(until) {
			kicks++
		}
	}
	return bans, kicks
}
