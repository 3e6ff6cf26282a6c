package runtime

import (
	"fmt"

	"chat-hub/domain"
	"chat-hub/errors"
)

// Directory is the source of truth for "who is online": it maps connection
// identity to nickname and back. It is owned by the engine and never
// accessed outside the coordinator goroutine.
type Directory struct {
	sessions map[domain.SessionID]*domain.Session
	byNick   map[string]domain.SessionID
}

func NewDirectory() *Directory {
	return &Directory{
		sessions: make(map[domain.SessionID]*domain.Session),
		byNick:   make(map[string]domain.SessionID),
	}
}

// Attach registers a connection with no nickname yet. Idempotent.
func (d *Directory) Attach(id domain.SessionID) *domain.Session {
	if session, ok := d.sessions[id]; ok {
		return session
	}
	session := &domain.Session{ID: id}
	d.sessions[id] = session
	return session
}

func (d *Directory) Session(id domain.SessionID) (*domain.Session, bool) {
	session, ok := d.sessions[id]
	return session, ok
}

// Claim binds the nickname to the session. A nickname held by a different
// live session is refused; re-claiming by the same session overwrites its
// previous nickname.
func (d *Directory) Claim(id domain.SessionID, nickname string) error {
	session := d.Attach(id)
	if holder, ok := d.byNick[nickname]; ok && holder != id {
		return errors.Reject(errors.ErrValidation,
			fmt.Sprintf("Nickname %q is already taken", nickname))
	}
	if session.Nickname != "" {
		delete(d.byNick, session.Nickname)
	}
	session.Nickname = nickname
	d.byNick[nickname] = id
	return nil
}

// Resolve returns the session currently holding the nickname.
func (d *Directory) Resolve(nickname string) (domain.SessionID, bool) {
	id, ok := d.byNick[nickname]
	return id, ok
}

func (d *Directory) NicknameOf(id domain.SessionID) (string, bool) {
	session, ok := d.sessions[id]
	if !ok || session.Nickname == "" {
		return "", false
	}
	return session.Nickname, true
}

// Release removes both mapping directions; called on disconnect.
func (d *Directory) Release(id domain.SessionID) {
	session, ok := d.sessions[id]
	if !ok {
		return
	}
	if session.Nickname != "" {
		// Only drop the reverse mapping if this session still owns it.
		if holder, ok := d.byNick[session.Nickname]; ok && holder == id {
			delete(d.byNick, session.Nickname)
		}
	}
	delete(d.sessions, id)
}

// Count reports the number of live sessions, used by the inspector.
func (d *Directory) Count() int {
	return len(d.sessions)
}
