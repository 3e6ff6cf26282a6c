package ws

import (
	"encoding/json"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
)

// Inbound payloads. Room names must not contain ':' and nicknames must
// not contain ':' or '_', so that storage keys and conversation ids stay
// unambiguous.
type setNicknamePayload struct {
	Nickname string `json:"nickname" validate:"required,max=32,excludesall=:_"`
}

type roomMessagePayload struct {
	Room    string `json:"room" validate:"required,max=64,excludes=:"`
	Message string `json:"message" validate:"required"`
	ReplyTo string `json:"replyTo" validate:"omitempty,uuid4"`
}

type createRoomPayload struct {
	Room     string `json:"room" validate:"required,max=64,excludes=:"`
	Password string `json:"password" validate:"omitempty,max=128"`
}

type joinRoomPayload struct {
	Room     string `json:"room" validate:"required,max=64,excludes=:"`
	Password string `json:"password" validate:"omitempty,max=128"`
}

type roomOnlyPayload struct {
	Room string `json:"room" validate:"required,max=64,excludes=:"`
}

type kickUserPayload struct {
	Room     string `json:"room" validate:"required,max=64,excludes=:"`
	UserID   string `json:"userId" validate:"required,max=32"`
	Duration int    `json:"duration" validate:"required,min=1,max=1440"`
}

type moderateUserPayload struct {
	Room   string `json:"room" validate:"required,max=64,excludes=:"`
	UserID string `json:"userId" validate:"required,max=32"`
}

type privateMessagePayload struct {
	To      string `json:"to" validate:"required,max=32"`
	Message string `json:"message" validate:"required"`
	ReplyTo string `json:"replyTo" validate:"omitempty,uuid4"`
}

type deleteMessagePayload struct {
	MessageID string `json:"messageId" validate:"required,uuid4"`
	Type      string `json:"type" validate:"required,oneof=room private"`
	Room      string `json:"room" validate:"required_if=Type room"`
	OtherUser string `json:"otherUser" validate:"required_if=Type private"`
}

type openPrivateChatPayload struct {
	OtherUser string `json:"otherUser" validate:"required,max=32"`
}

type searchMessagesPayload struct {
	Room  string `json:"room" validate:"required,max=64,excludes=:"`
	Query string `json:"query" validate:"required,min=2,max=128"`
}

// Router decodes wire frames, validates payload shape, and hands well
// formed commands to the dispatcher. Semantic checks (permissions, bans,
// name collisions) stay in the engine.
type Router struct {
	log              *slog.Logger
	dispatcher       contract.IDispatcher
	validate         *validator.Validate
	maxContentLength int
}

func NewRouter(log *slog.Logger, dispatcher contract.IDispatcher, maxContentLength int) *Router {
	return &Router{
		log:              log,
		dispatcher:       dispatcher,
		validate:         validator.New(),
		maxContentLength: maxContentLength,
	}
}

// Route turns one raw frame into a command. A returned error never reached
// the engine and should surface to the sender as an error_message.
func (r *Router) Route(id domain.SessionID, raw []byte) error {
	var frame envelope
	if err := json.Unmarshal(raw, &frame); err != nil {
		return errors.Reject(errors.ErrValidation, "Malformed frame")
	}

	switch frame.Event {
	case "set_nickname":
		payload, err := decode[setNicknamePayload](r, frame.Data)
		if err != nil {
			return err
		}
		r.dispatcher.Dispatch(event.SetNickname{Session: id, Nickname: payload.Nickname})

	case "message_to_server":
		payload, err := decode[roomMessagePayload](r, frame.Data)
		if err != nil {
			return err
		}
		if len(payload.Message) > r.maxContentLength {
			return errors.Reject(errors.ErrValidation, "Message too long")
		}
		r.dispatcher.Dispatch(event.PostRoomMessage{
			Session: id, Room: payload.Room, Body: payload.Message, ReplyTo: payload.ReplyTo,
		})

	case "create_room":
		payload, err := decode[createRoomPayload](r, frame.Data)
		if err != nil {
			return err
		}
		r.dispatcher.Dispatch(event.CreateRoom{Session: id, Room: payload.Room, Secret: payload.Password})

	case "join_room":
		payload, err := decode[joinRoomPayload](r, frame.Data)
		if err != nil {
			return err
		}
		r.dispatcher.Dispatch(event.JoinRoom{Session: id, Room: payload.Room, Secret: payload.Password})

	case "delete_room":
		payload, err := decode[roomOnlyPayload](r, frame.Data)
		if err != nil {
			return err
		}
		r.dispatcher.Dispatch(event.DeleteRoom{Session: id, Room: payload.Room})

	case "kick_user":
		payload, err := decode[kickUserPayload](r, frame.Data)
		if err != nil {
			return err
		}
		r.dispatcher.Dispatch(event.KickUser{
			Session: id, Room: payload.Room, Target: payload.UserID, Minutes: payload.Duration,
		})

	case "ban_user":
		payload, err := decode[moderateUserPayload](r, frame.Data)
		if err != nil {
			return err
		}
		r.dispatcher.Dispatch(event.BanUser{Session: id, Room: payload.Room, Target: payload.UserID})

	case "unban_user":
		payload, err := decode[moderateUserPayload](r, frame.Data)
		if err != nil {
			return err
		}
		r.dispatcher.Dispatch(event.UnbanUser{Session: id, Room: payload.Room, Target: payload.UserID})

	case "unkick_user":
		payload, err := decode[moderateUserPayload](r, frame.Data)
		if err != nil {
			return err
		}
		r.dispatcher.Dispatch(event.UnkickUser{Session: id, Room: payload.Room, Target: payload.UserID})

	case "private_message":
		payload, err := decode[privateMessagePayload](r, frame.Data)
		if err != nil {
			return err
		}
		if len(payload.Message) > r.maxContentLength {
			return errors.Reject(errors.ErrValidation, "Message too long")
		}
		r.dispatcher.Dispatch(event.PostPrivateMessage{
			Session: id, To: payload.To, Body: payload.Message, ReplyTo: payload.ReplyTo,
		})

	case "delete_message":
		payload, err := decode[deleteMessagePayload](r, frame.Data)
		if err != nil {
			return err
		}
		r.dispatcher.Dispatch(event.DeleteMessage{
			Session:   id,
			MessageID: payload.MessageID,
			Kind:      domain.Kind(payload.Type),
			Room:      payload.Room,
			OtherUser: payload.OtherUser,
		})

	case "open_private_chat":
		payload, err := decode[openPrivateChatPayload](r, frame.Data)
		if err != nil {
			return err
		}
		r.dispatcher.Dispatch(event.OpenPrivateChat{Session: id, OtherUser: payload.OtherUser})

	case "search_messages":
		payload, err := decode[searchMessagesPayload](r, frame.Data)
		if err != nil {
			return err
		}
		r.dispatcher.Dispatch(event.SearchMessages{Session: id, Room: payload.Room, Query: payload.Query})

	default:
		return errors.Reject(errors.ErrValidation, "Unknown event")
	}
	return nil
}

func decode[T any](r *Router, data json.RawMessage) (T, error) {
	var payload T
	if len(data) == 0 {
		return payload, errors.Reject(errors.ErrValidation, "Missing payload")
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, errors.Reject(errors.ErrValidation, "Malformed payload")
	}
	if err := r.validate.Struct(payload); err != nil {
		r.log.Debug("Payload failed validation", "err", err)
		return payload, errors.Reject(errors.ErrValidation, "Invalid payload")
	}
	return payload, nil
}
