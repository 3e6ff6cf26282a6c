// Package domain contains core concepts of the chat system.
// This file defines Message entries and related rules.
// Messages are immutable once stored.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Kind discriminates room messages from private ones.
type Kind string

const (
	KindRoom    Kind = "room"
	KindPrivate Kind = "private"
)

// Message represents an immutable chat entry.
type Message struct {
	ID        uuid.UUID // unique identifier
	Kind      Kind
	Room      string // room name, room messages only
	From      string
	To        string // recipient nickname, private messages only
	Body      string
	Lang      string // ISO 639-1 code detected at ingestion, may be empty
	ReplyTo   string // id of the message this one replies to, may be empty
	CreatedAt time.Time
}

// StoreKey returns the sequence this message belongs to: the room name for
// room messages, the conversation id for private ones.
func (m Message) StoreKey() string {
	if m.Kind == KindPrivate {
		return ConversationID(m.From, m.To)
	}
	return m.Room
}
