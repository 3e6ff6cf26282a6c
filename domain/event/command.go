// Package event defines the closed set of inbound commands the engine
// processes and the outbound notifications it emits. The transport decodes
// wire frames into these types; nothing else crosses the boundary.
package event

import (
	"chat-hub/domain"
)

// Command is one decoded inbound event. Commands are applied strictly one
// at a time by the engine; Origin identifies the session that sent it, or
// "" for engine-internal commands such as Sweep.
type Command interface {
	Origin() domain.SessionID
}

// Connect is enqueued by the transport when a connection is established.
type Connect struct {
	Session domain.SessionID
}

func (c Connect) Origin() domain.SessionID { return c.Session }

// Disconnect is enqueued by the transport when a connection is severed. It
// releases the nickname mapping and the room membership as one atomic step.
type Disconnect struct {
	Session domain.SessionID
}

func (c Disconnect) Origin() domain.SessionID { return c.Session }

type SetNickname struct {
	Session  domain.SessionID
	Nickname string
}

func (c SetNickname) Origin() domain.SessionID { return c.Session }

type PostRoomMessage struct {
	Session domain.SessionID
	Room    string
	Body    string
	ReplyTo string
}

func (c PostRoomMessage) Origin() domain.SessionID { return c.Session }

type CreateRoom struct {
	Session domain.SessionID
	Room    string
	Secret  string
}

func (c CreateRoom) Origin() domain.SessionID { return c.Session }

type JoinRoom struct {
	Session domain.SessionID
	Room    string
	Secret  string
}

func (c JoinRoom) Origin() domain.SessionID { return c.Session }

type DeleteRoom struct {
	Session domain.SessionID
	Room    string
}

func (c DeleteRoom) Origin() domain.SessionID { return c.Session }

type KickUser struct {
	Session domain.SessionID
	Room    string
	Target  string
	Minutes int
}

func (c KickUser) Origin() domain.SessionID { return c.Session }

type BanUser struct {
	Session domain.SessionID
	Room    string
	Target  string
}

func (c BanUser) Origin() domain.SessionID { return c.Session }

type UnbanUser struct {
	Session domain.SessionID
	Room    string
	Target  string
}

func (c UnbanUser) Origin() domain.SessionID { return c.Session }

type UnkickUser struct {
	Session domain.SessionID
	Room    string
	Target  string
}

func (c UnkickUser) Origin() domain.SessionID { return c.Session }

type PostPrivateMessage struct {
	Session domain.SessionID
	To      string
	Body    string
	ReplyTo string
}

func (c PostPrivateMessage) Origin() domain.SessionID { return c.Session }

type DeleteMessage struct {
	Session   domain.SessionID
	MessageID string
	Kind      domain.Kind
	Room      string // room messages only
	OtherUser string // private messages only
}

func (c DeleteMessage) Origin() domain.SessionID { return c.Session }

type OpenPrivateChat struct {
	Session   domain.SessionID
	OtherUser string
}

func (c OpenPrivateChat) Origin() domain.SessionID { return c.Session }

type SearchMessages struct {
	Session domain.SessionID
	Room    string
	Query   string
}

func (c SearchMessages) Origin() domain.SessionID { return c.Session }

// Sweep is enqueued by the retention sweeper so that purging runs through
// the same serialization point as every other mutation.
type Sweep struct{}

func (Sweep) Origin() domain.SessionID { return "" }

// Inspect is a read-only query used by the debug server. The engine replies
// with one row per room on the provided channel without blocking.
type Inspect struct {
	Reply chan<- [][]string
}

func (Inspect) Origin() domain.SessionID { return "" }
