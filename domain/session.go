// Package domain contains core concepts of the chat system.
// No runtime, network, or UI logic should be added here.
package domain

// SessionID is the opaque connection identity owned by the transport.
type SessionID string

// Session is one active transport connection. Nickname is empty until the
// client claims one, CurrentRoom is empty while the session occupies no room.
// A session occupies at most one room at a time.
type Session struct {
	ID          SessionID
	Nickname    string
	CurrentRoom string
}
