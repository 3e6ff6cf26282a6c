package domain

import "strings"

const conversationSeparator = "_"

// ConversationID derives the key of the private thread between two
// nicknames. The pair is sorted first, so the id does not depend on who
// initiated the exchange.
func ConversationID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + conversationSeparator + b
}

// ConversationPeer returns the other participant of a conversation id, or
// "" when the nickname is not part of it.
func ConversationPeer(id, nickname string) string {
	a, b, ok := strings.Cut(id, conversationSeparator)
	if !ok {
		return ""
	}
	switch nickname {
	case a:
		return b
	case b:
		return a
	}
	return ""
}
