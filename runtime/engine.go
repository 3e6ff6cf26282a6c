package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"chat-hub/auth"
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/moderation"
	"chat-hub/projection"
	"chat-hub/repositories"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Engine is the authoritative state machine: session directory, room
// registry, moderation ledger, and message store, mutated one command at a
// time. It is not safe for concurrent use; the Coordinator is the only
// caller of Apply.
type Engine struct {
	log       *slog.Logger
	clock     func() time.Time
	transport contract.Transport
	directory *Directory
	rooms     *RoomRegistry
	ledger    *moderation.Ledger
	messages  repositories.IMessageRepository
	index     *repositories.SearchIndex
	censor    *moderation.Censor
	retention time.Duration
}

// NewEngine wires the engine over its collaborators. index and censor may
// be nil, which disables search and profanity masking respectively.
func NewEngine(log *slog.Logger, transport contract.Transport,
	messages repositories.IMessageRepository, index *repositories.SearchIndex,
	censor *moderation.Censor, policy moderation.BanPolicy,
	retention time.Duration) *Engine {
	return &Engine{
		log:       log,
		clock:     time.Now,
		transport: transport,
		directory: NewDirectory(),
		rooms:     NewRoomRegistry(),
		ledger:    moderation.NewLedger(policy),
		messages:  messages,
		index:     index,
		censor:    censor,
		retention: retention,
	}
}

// WithClock replaces the time source, for tests that simulate expiry.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// Apply processes one command fully: state mutation plus every derived
// outbound notification. A rejected command surfaces an error_message to
// the originating session and never affects other participants.
func (e *Engine) Apply(cmd event.Command) {
	var err error
	switch c := cmd.(type) {
	case event.Connect:
		e.handleConnect(c)
	case event.Disconnect:
		e.handleDisconnect(c)
	case event.SetNickname:
		err = e.handleSetNickname(c)
	case event.PostRoomMessage:
		err = e.handleRoomMessage(c)
	case event.CreateRoom:
		err = e.handleCreateRoom(c)
	case event.JoinRoom:
		err = e.handleJoinRoom(c)
	case event.DeleteRoom:
		err = e.handleDeleteRoom(c)
	case event.KickUser:
		err = e.handleKick(c)
	case event.BanUser:
		err = e.handleBan(c)
	case event.UnbanUser:
		err = e.handleUnban(c)
	case event.UnkickUser:
		err = e.handleUnkick(c)
	case event.PostPrivateMessage:
		err = e.handlePrivateMessage(c)
	case event.DeleteMessage:
		err = e.handleDeleteMessage(c)
	case event.OpenPrivateChat:
		err = e.handleOpenPrivateChat(c)
	case event.SearchMessages:
		err = e.handleSearch(c)
	case event.Sweep:
		e.handleSweep()
	case event.Inspect:
		e.handleInspect(c)
	default:
		e.log.Warn("Unhandled command", "type", fmt.Sprintf("%T", cmd))
	}

	if err == nil {
		return
	}
	message := err.Error()
	if errors.IsRejection(err) {
		e.log.Debug("Command rejected", "type", fmt.Sprintf("%T", cmd), "err", err)
	} else {
		e.log.Error("Command failed", "type", fmt.Sprintf("%T", cmd), "err", err)
		message = "Internal error"
	}
	e.transport.Unicast(cmd.Origin(), event.ErrorMessage{Message: message})
}

func (e *Engine) handleConnect(c event.Connect) {
	e.directory.Attach(c.Session)
	e.transport.Unicast(c.Session, event.UpdateRooms{Rooms: e.rooms.List()})
}

// handleDisconnect releases membership and directory entries as one step.
func (e *Engine) handleDisconnect(c event.Disconnect) {
	if session, ok := e.directory.Session(c.Session); ok {
		e.detachFromRoom(session)
	}
	e.directory.Release(c.Session)
}

func (e *Engine) handleSetNickname(c event.SetNickname) error {
	if c.Nickname == "" {
		return errors.Reject(errors.ErrValidation, "Nickname cannot be empty")
	}
	if err := e.directory.Claim(c.Session, c.Nickname); err != nil {
		return err
	}

	chats, err := e.messages.ConversationsOf(c.Nickname, e.clock().Add(-e.retention))
	if err != nil {
		return err
	}
	privateChats := make([]event.PrivateChat, 0, len(chats))
	for _, msgs := range chats {
		other := msgs[0].From
		if other == c.Nickname {
			other = msgs[0].To
		}
		privateChats = append(privateChats, event.PrivateChat{
			OtherUser: other,
			Messages:  e.payloads(msgs),
		})
	}
	sort.Slice(privateChats, func(i, j int) bool {
		return privateChats[i].OtherUser < privateChats[j].OtherUser
	})

	e.transport.Unicast(c.Session, event.NicknameSet{PrivateChats: privateChats})
	return nil
}

func (e *Engine) handleRoomMessage(c event.PostRoomMessage) error {
	nickname, err := e.nicknameOf(c.Session)
	if err != nil {
		return err
	}
	if _, ok := e.rooms.Get(c.Room); !ok {
		return errors.Reject(errors.ErrNotFound, "Unknown room")
	}

	body, lang := e.moderate(c.Body)
	msg := domain.Message{
		ID:        uuid.New(),
		Kind:      domain.KindRoom,
		Room:      c.Room,
		From:      nickname,
		Body:      body,
		Lang:      lang,
		ReplyTo:   c.ReplyTo,
		CreatedAt: e.clock(),
	}
	if err := e.messages.Append(msg); err != nil {
		return err
	}
	if e.index != nil {
		if err := e.index.Index(msg); err != nil {
			e.log.Warn("Failed to index message", "messageId", msg.ID, "err", err)
		}
	}

	e.transport.RoomCast(c.Room, event.MessageToClient{
		Message:   fmt.Sprintf("[%s] %s: %s", formatClock(msg.CreatedAt), nickname, body),
		MessageID: msg.ID.String(),
		From:      nickname,
		ReplyTo:   c.ReplyTo,
	})
	return nil
}

func (e *Engine) handleCreateRoom(c event.CreateRoom) error {
	nickname, err := e.nicknameOf(c.Session)
	if err != nil {
		return err
	}

	secretHash := ""
	if strings.TrimSpace(c.Secret) != "" {
		secretHash, err = auth.HashSecret(c.Secret)
		if err != nil {
			return err
		}
	}
	if _, err := e.rooms.Create(c.Room, nickname, secretHash); err != nil {
		return err
	}

	e.transport.Broadcast(event.UpdateRooms{Rooms: e.rooms.List()})
	return nil
}

func (e *Engine) handleJoinRoom(c event.JoinRoom) error {
	session := e.directory.Attach(c.Session)
	nickname, err := e.nicknameOf(c.Session)
	if err != nil {
		return err
	}
	room, ok := e.rooms.Get(c.Room)
	if !ok {
		return errors.Reject(errors.ErrNotFound, "Cannot join room")
	}

	if e.ledger.IsBanned(c.Room, e.banIdentity(c.Session, nickname)) {
		return errors.Reject(errors.ErrStateConflict, "Cannot join room")
	}
	if _, kicked := e.ledger.KickRemaining(c.Room, nickname, e.clock()); kicked {
		return errors.Reject(errors.ErrStateConflict, "Cannot join room")
	}
	isOwner := room.Owner != "" && room.Owner == nickname
	if !isOwner && room.HasSecret() {
		match, err := auth.VerifySecret(c.Secret, room.SecretHash)
		if err != nil {
			return err
		}
		if !match {
			return errors.Reject(errors.ErrStateConflict, "Cannot join room")
		}
	}

	e.detachFromRoom(session)
	room.AddMember(c.Session)
	session.CurrentRoom = c.Room
	e.transport.JoinGroup(c.Session, c.Room)
	firstJoin := room.RegisterJoin(nickname)

	history, err := e.messages.History(domain.KindRoom, c.Room)
	if err != nil {
		return err
	}
	e.transport.Unicast(c.Session, event.JoinRoomSuccess{
		Room:           c.Room,
		MessageHistory: e.payloads(history),
	})
	if firstJoin {
		e.transport.RoomCast(c.Room, e.systemLine(nickname+" has joined the room"))
	}

	// Broadcast even on a repeat join to resynchronize observers.
	e.transport.Broadcast(event.UpdateRooms{Rooms: e.rooms.List()})
	e.transport.RoomCast(c.Room, e.presence(room))
	return nil
}

func (e *Engine) handleDeleteRoom(c event.DeleteRoom) error {
	nickname, err := e.nicknameOf(c.Session)
	if err != nil {
		return err
	}
	room, ok := e.rooms.Get(c.Room)
	if !ok {
		return errors.Reject(errors.ErrNotFound, "Unknown room")
	}
	if c.Room == domain.Lobby {
		return errors.Reject(errors.ErrPermission, "The Lobby cannot be deleted")
	}
	if room.Owner != nickname {
		return errors.Reject(errors.ErrPermission, "Only the room owner can delete a room")
	}

	e.transport.RoomCast(c.Room, event.RoomDeleted{Room: c.Room})
	for _, id := range room.Members() {
		if member, ok := e.directory.Session(id); ok {
			member.CurrentRoom = ""
		}
		e.transport.LeaveGroup(id, c.Room)
	}

	e.rooms.Delete(c.Room)
	e.ledger.DropRoom(c.Room)
	// No rejoin is possible, so the room's history goes with it.
	removed, err := e.messages.Drop(domain.KindRoom, c.Room)
	if err != nil {
		return err
	}
	e.dropFromIndex(removed)

	e.transport.Broadcast(event.UpdateRooms{Rooms: e.rooms.List()})
	return nil
}

func (e *Engine) handleKick(c event.KickUser) error {
	nickname, err := e.nicknameOf(c.Session)
	if err != nil {
		return err
	}
	room, ok := e.rooms.Get(c.Room)
	if !ok {
		return errors.Reject(errors.ErrNotFound, "Unknown room")
	}
	if room.Owner != nickname {
		return errors.Reject(errors.ErrPermission, "Only the room owner can kick users")
	}
	if c.Minutes < 1 || c.Minutes > 1440 {
		return errors.Reject(errors.ErrValidation, "Kick duration must be between 1 and 1440 minutes")
	}
	if c.Target == room.Owner {
		return errors.Reject(errors.ErrValidation, "Cannot kick this user")
	}
	targetID, online := e.directory.Resolve(c.Target)
	if !online {
		return errors.Reject(errors.ErrNotFound, "Cannot kick this user")
	}

	until := e.clock().Add(time.Duration(c.Minutes) * time.Minute)
	e.ledger.Kick(c.Room, c.Target, until)

	wasInside := false
	if target, ok := e.directory.Session(targetID); ok && target.CurrentRoom == c.Room {
		wasInside = true
		e.detachFromRoom(target)
	}

	e.transport.Unicast(targetID, event.Kicked{
		Room:       c.Room,
		Duration:   c.Minutes,
		Expiration: until.UnixMilli(),
	})
	e.transport.RoomCast(c.Room,
		e.systemLine(fmt.Sprintf("%s has been kicked for %d minutes", c.Target, c.Minutes)))
	if !wasInside {
		e.transport.RoomCast(c.Room, e.presence(room))
	}
	return nil
}

func (e *Engine) handleBan(c event.BanUser) error {
	nickname, err := e.nicknameOf(c.Session)
	if err != nil {
		return err
	}
	room, ok := e.rooms.Get(c.Room)
	if !ok {
		return errors.Reject(errors.ErrNotFound, "Unknown room")
	}
	if room.Owner != nickname {
		return errors.Reject(errors.ErrPermission, "Only room owner can ban users")
	}
	if c.Target == room.Owner {
		return errors.Reject(errors.ErrValidation, "Cannot ban this user")
	}
	targetID, online := e.directory.Resolve(c.Target)
	if !online {
		return errors.Reject(errors.ErrNotFound, "Cannot ban this user")
	}

	e.ledger.Ban(c.Room, e.banIdentity(targetID, c.Target))

	wasInside := false
	if target, ok := e.directory.Session(targetID); ok && target.CurrentRoom == c.Room {
		wasInside = true
		e.detachFromRoom(target)
	}

	e.transport.Unicast(targetID, event.Banned{
		Room:    c.Room,
		Message: fmt.Sprintf("You have been banned from %s", c.Room),
	})
	// Send the banned user back to the Lobby.
	e.transport.Unicast(targetID, event.RelocateRoom{Room: domain.Lobby})
	e.transport.RoomCast(c.Room, e.systemLine(c.Target+" has been banned from the room"))
	if !wasInside {
		e.transport.RoomCast(c.Room, e.presence(room))
	}
	return nil
}

func (e *Engine) handleUnban(c event.UnbanUser) error {
	nickname, err := e.nicknameOf(c.Session)
	if err != nil {
		return err
	}
	room, ok := e.rooms.Get(c.Room)
	if !ok {
		return errors.Reject(errors.ErrNotFound, "Unknown room")
	}
	if room.Owner != nickname {
		return errors.Reject(errors.ErrPermission, "Only the room owner can unban users")
	}

	identity := c.Target
	if e.ledger.Policy() == moderation.BanByConnection {
		targetID, online := e.directory.Resolve(c.Target)
		if !online {
			return errors.Reject(errors.ErrNotFound, "User not found or offline")
		}
		identity = string(targetID)
	}
	e.ledger.Unban(c.Room, identity)

	e.transport.RoomCast(c.Room, e.systemLine(c.Target+" has been unbanned"))
	e.transport.RoomCast(c.Room, e.presence(room))
	return nil
}

func (e *Engine) handleUnkick(c event.UnkickUser) error {
	nickname, err := e.nicknameOf(c.Session)
	if err != nil {
		return err
	}
	room, ok := e.rooms.Get(c.Room)
	if !ok {
		return errors.Reject(errors.ErrNotFound, "Unknown room")
	}
	if room.Owner != nickname {
		return errors.Reject(errors.ErrPermission, "Only the room owner can unkick users")
	}

	e.ledger.Unkick(c.Room, c.Target)
	e.transport.RoomCast(c.Room, e.systemLine(c.Target+" has been unkicked"))
	e.transport.RoomCast(c.Room, e.presence(room))
	return nil
}

func (e *Engine) handlePrivateMessage(c event.PostPrivateMessage) error {
	from, err := e.nicknameOf(c.Session)
	if err != nil {
		return err
	}
	toID, online := e.directory.Resolve(c.To)
	if !online {
		return errors.Reject(errors.ErrNotFound, "User not found or offline")
	}

	body, lang := e.moderate(c.Body)
	msg := domain.Message{
		ID:        uuid.New(),
		Kind:      domain.KindPrivate,
		From:      from,
		To:        c.To,
		Body:      body,
		Lang:      lang,
		ReplyTo:   c.ReplyTo,
		CreatedAt: e.clock(),
	}
	if err := e.messages.Append(msg); err != nil {
		return err
	}

	delivered := event.PrivateMessage{MessagePayload: e.payload(msg)}
	e.transport.Unicast(toID, delivered)
	e.transport.Unicast(c.Session, delivered)
	return nil
}

func (e *Engine) handleDeleteMessage(c event.DeleteMessage) error {
	nickname, err := e.nicknameOf(c.Session)
	if err != nil {
		return err
	}

	switch c.Kind {
	case domain.KindPrivate:
		chatID := domain.ConversationID(nickname, c.OtherUser)
		msg, found, err := e.messages.Find(domain.KindPrivate, chatID, c.MessageID)
		if err != nil {
			return err
		}
		if !found {
			return errors.Reject(errors.ErrNotFound, "Message not found")
		}
		if msg.From != nickname {
			return errors.Reject(errors.ErrPermission, "You can only delete your own messages")
		}
		if err := e.messages.Delete(domain.KindPrivate, chatID, c.MessageID); err != nil {
			return err
		}

		deleted := event.MessageDeleted{MessageID: c.MessageID, Type: string(domain.KindPrivate), ChatID: chatID}
		if otherID, online := e.directory.Resolve(c.OtherUser); online {
			e.transport.Unicast(otherID, deleted)
		}
		e.transport.Unicast(c.Session, deleted)
		return nil

	case domain.KindRoom:
		room, ok := e.rooms.Get(c.Room)
		if !ok {
			return errors.Reject(errors.ErrNotFound, "Unknown room")
		}
		msg, found, err := e.messages.Find(domain.KindRoom, c.Room, c.MessageID)
		if err != nil {
			return err
		}
		if !found {
			return errors.Reject(errors.ErrNotFound, "Message not found")
		}
		if msg.From != nickname && room.Owner != nickname {
			return errors.Reject(errors.ErrPermission, "You do not have permission to delete this message")
		}
		if err := e.messages.Delete(domain.KindRoom, c.Room, c.MessageID); err != nil {
			return err
		}
		e.dropFromIndex([]string{c.MessageID})

		e.transport.RoomCast(c.Room, event.MessageDeleted{MessageID: c.MessageID, Type: string(domain.KindRoom)})
		return nil

	default:
		return errors.Reject(errors.ErrValidation, "Unknown message type")
	}
}

func (e *Engine) handleOpenPrivateChat(c event.OpenPrivateChat) error {
	nickname, err := e.nicknameOf(c.Session)
	if err != nil {
		return err
	}

	chatID := domain.ConversationID(nickname, c.OtherUser)
	history, err := e.messages.History(domain.KindPrivate, chatID)
	if err != nil {
		return err
	}
	e.transport.Unicast(c.Session, event.PrivateChatHistory{
		OtherUser: c.OtherUser,
		Messages:  e.payloads(history),
	})
	return nil
}

func (e *Engine) handleSearch(c event.SearchMessages) error {
	if _, err := e.nicknameOf(c.Session); err != nil {
		return err
	}
	if e.index == nil {
		return errors.Reject(errors.ErrValidation, "Search is not available")
	}
	if _, ok := e.rooms.Get(c.Room); !ok {
		return errors.Reject(errors.ErrNotFound, "Unknown room")
	}

	ids, err := e.index.Search(context.Background(), c.Room, c.Query)
	if err != nil {
		return err
	}
	e.transport.Unicast(c.Session, event.SearchResults{
		Room:       c.Room,
		Query:      c.Query,
		MessageIDs: ids,
	})
	return nil
}

func (e *Engine) handleSweep() {
	now := e.clock()
	removed, err := e.messages.Sweep(now.Add(-e.retention))
	if err != nil {
		e.log.Error("Retention sweep failed", "err", err)
		return
	}
	e.dropFromIndex(removed)
	expired := e.ledger.Sweep(now)
	e.log.Info("Retention sweep completed",
		"messagesRemoved", len(removed), "kicksExpired", expired)
}

func (e *Engine) handleInspect(c event.Inspect) {
	now := e.clock()
	rows := make([][]string, 0)
	for _, name := range e.rooms.Names() {
		room, ok := e.rooms.Get(name)
		if !ok {
			continue
		}
		count, err := e.messages.SequenceLen(domain.KindRoom, name)
		if err != nil {
			e.log.Warn("Failed to count room messages", "room", name, "err", err)
		}
		bans, kicks := e.ledger.CountsFor(name, now)
		rows = append(rows, []string{
			name,
			room.Owner,
			strconv.Itoa(len(room.Members())),
			strconv.FormatBool(room.HasSecret()),
			strconv.Itoa(count),
			strconv.Itoa(bans),
			strconv.Itoa(kicks),
		})
	}

	select {
	case c.Reply <- rows:
	default:
		e.log.Warn("Inspector reply dropped, receiver not ready")
	}
}

// detachFromRoom removes the session from its current room, updates the
// transport group, and re-broadcasts the room's presence to the members
// left behind. No-op for sessions outside any room.
func (e *Engine) detachFromRoom(session *domain.Session) {
	roomName := session.CurrentRoom
	if roomName == "" {
		return
	}
	if room, ok := e.rooms.Get(roomName); ok {
		room.RemoveMember(session.ID)
		e.transport.LeaveGroup(session.ID, roomName)
		e.transport.RoomCast(roomName, e.presence(room))
	}
	session.CurrentRoom = ""
}

func (e *Engine) presence(room *domain.Room) event.UpdateUsers {
	return projection.RoomPresence(room, e.directory, e.ledger, e.clock())
}

func (e *Engine) nicknameOf(id domain.SessionID) (string, error) {
	nickname, ok := e.directory.NicknameOf(id)
	if !ok {
		return "", errors.Reject(errors.ErrValidation, "Set a nickname first")
	}
	return nickname, nil
}

// banIdentity picks the identity a ban is keyed on per the configured
// policy.
func (e *Engine) banIdentity(sessionID domain.SessionID, nickname string) string {
	if e.ledger.Policy() == moderation.BanByNickname {
		return nickname
	}
	return string(sessionID)
}

// moderate runs the message body through language detection and the
// profanity censor.
func (e *Engine) moderate(body string) (string, string) {
	lang := ""
	if info := whatlanggo.Detect(body); info.IsReliable() {
		lang = info.Lang.Iso6391()
	}
	if e.censor != nil {
		censored, masked := e.censor.Apply(body)
		if masked {
			e.log.Debug("Masked forbidden words in message body")
		}
		body = censored
	}
	return body, lang
}

func (e *Engine) dropFromIndex(messageIDs []string) {
	if e.index == nil {
		return
	}
	for _, id := range messageIDs {
		if err := e.index.Remove(id); err != nil {
			e.log.Warn("Failed to deindex message", "messageId", id, "err", err)
		}
	}
}

func (e *Engine) payload(msg domain.Message) event.MessagePayload {
	return event.MessagePayload{
		Type:          string(msg.Kind),
		From:          msg.From,
		To:            msg.To,
		Message:       msg.Body,
		Timestamp:     msg.CreatedAt.UnixMilli(),
		FormattedTime: formatClock(msg.CreatedAt),
		MessageID:     msg.ID.String(),
		ReplyTo:       msg.ReplyTo,
		Lang:          msg.Lang,
	}
}

func (e *Engine) payloads(msgs []domain.Message) []event.MessagePayload {
	return lo.Map(msgs, func(msg domain.Message, _ int) event.MessagePayload {
		return e.payload(msg)
	})
}

func (e *Engine) systemLine(text string) event.MessageToClient {
	return event.MessageToClient{
		Message: fmt.Sprintf("[%s] System: %s", formatClock(e.clock()), text),
	}
}

func formatClock(t time.Time) string {
	return t.Format("3:04:05 PM")
}
