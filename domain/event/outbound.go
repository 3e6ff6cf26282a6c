package event

// Outbound is one engine notification ready for dispatch. Name is the wire
// event the client listens on; the struct itself is the JSON payload.
type Outbound interface {
	Name() string
}

// MessagePayload is the stored shape of a message as seen by clients.
type MessagePayload struct {
	Type          string `json:"type"`
	From          string `json:"from"`
	To            string `json:"to,omitempty"`
	Message       string `json:"message"`
	Timestamp     int64  `json:"timestamp"`
	FormattedTime string `json:"formattedTime"`
	MessageID     string `json:"messageId"`
	ReplyTo       string `json:"replyTo,omitempty"`
	Lang          string `json:"lang,omitempty"`
}

type RoomInfo struct {
	Name        string `json:"name"`
	HasPassword bool   `json:"hasPassword"`
	Owner       string `json:"owner,omitempty"`
}

type PrivateChat struct {
	OtherUser string           `json:"otherUser"`
	Messages  []MessagePayload `json:"messages"`
}

type NicknameSet struct {
	PrivateChats []PrivateChat `json:"privateChats"`
}

func (NicknameSet) Name() string { return "nickname_set" }

type UpdateRooms struct {
	Rooms []RoomInfo `json:"rooms"`
}

func (UpdateRooms) Name() string { return "update_rooms" }

// UpdateUsers is the presence snapshot of one room: member nicknames,
// owner, banned nicknames, and kicked nicknames with their expiration in
// unix milliseconds. Expired kicks are filtered out at computation time.
type UpdateUsers struct {
	Users       []string         `json:"users"`
	RoomOwner   string           `json:"roomOwner,omitempty"`
	BannedUsers []string         `json:"bannedUsers"`
	KickedUsers map[string]int64 `json:"kickedUsers"`
}

func (UpdateUsers) Name() string { return "update_users" }

type MessageToClient struct {
	Message   string `json:"message"`
	MessageID string `json:"messageId,omitempty"`
	From      string `json:"from,omitempty"`
	ReplyTo   string `json:"replyTo,omitempty"`
}

func (MessageToClient) Name() string { return "message_to_client" }

type JoinRoomSuccess struct {
	Room           string           `json:"room"`
	MessageHistory []MessagePayload `json:"messageHistory"`
}

func (JoinRoomSuccess) Name() string { return "join_room_success" }

type RoomDeleted struct {
	Room string `json:"room"`
}

func (RoomDeleted) Name() string { return "room_deleted" }

type Kicked struct {
	Room       string `json:"room"`
	Duration   int    `json:"duration"`
	Expiration int64  `json:"expiration"`
}

func (Kicked) Name() string { return "kicked" }

type Banned struct {
	Room    string `json:"room"`
	Message string `json:"message"`
}

func (Banned) Name() string { return "banned" }

// RelocateRoom instructs a client to switch to another room, used after a
// ban to send the user back to the Lobby.
type RelocateRoom struct {
	Room string `json:"room"`
}

func (RelocateRoom) Name() string { return "join_room" }

type PrivateMessage struct {
	MessagePayload
}

func (PrivateMessage) Name() string { return "private_message" }

type PrivateChatHistory struct {
	OtherUser string           `json:"otherUser"`
	Messages  []MessagePayload `json:"messages"`
}

func (PrivateChatHistory) Name() string { return "private_chat_history" }

type MessageDeleted struct {
	MessageID string `json:"messageId"`
	Type      string `json:"type"`
	ChatID    string `json:"chatId,omitempty"`
}

func (MessageDeleted) Name() string { return "message_deleted" }

type ErrorMessage struct {
	Message string `json:"message"`
}

func (ErrorMessage) Name() string { return "error_message" }

type SearchResults struct {
	Room       string   `json:"room"`
	Query      string   `json:"query"`
	MessageIDs []string `json:"messageIds"`
}

func (SearchResults) Name() string { return "search_results" }
