package domain

// Lobby is the distinguished room that always exists and is never deleted.
const Lobby = "Lobby"

// Room is a named broadcast group with an owner and a membership list kept
// in join order. The join history remembers every nickname that ever
// entered, so a first arrival can be announced exactly once.
type Room struct {
	Name       string
	Owner      string // nickname of the creator, empty for the Lobby
	SecretHash string // argon2id hash of the password, empty for open rooms

	members     []SessionID
	joinHistory map[string]struct{}
}

func NewRoom(name, owner, secretHash string) *Room {
	return &Room{
		Name:        name,
		Owner:       owner,
		SecretHash:  secretHash,
		joinHistory: make(map[string]struct{}),
	}
}

// HasSecret reports whether joining requires a password.
func (r *Room) HasSecret() bool {
	return r.SecretHash != ""
}

// Members returns the current membership in join order.
func (r *Room) Members() []SessionID {
	return append([]SessionID(nil), r.members...)
}

func (r *Room) AddMember(id SessionID) {
	for _, m := range r.members {
		if m == id {
			return
		}
	}
	r.members = append(r.members, id)
}

func (r *Room) RemoveMember(id SessionID) {
	kept := r.members[:0]
	for _, m := range r.members {
		if m != id {
			kept = append(kept, m)
		}
	}
	r.members = kept
}

// RegisterJoin records the nickname in the room's join history and reports
// whether this was its first ever entry. The history never shrinks.
func (r *Room) RegisterJoin(nickname string) bool {
	if _, ok := r.joinHistory[nickname]; ok {
		return false
	}
	r.joinHistory[nickname] = struct{}{}
	return true
}
