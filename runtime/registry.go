package runtime

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
)

// RoomRegistry owns the set of rooms in creation order. The Lobby exists
// from construction and can never be removed.
type RoomRegistry struct {
	order []string
	rooms map[string]*domain.Room
}

func NewRoomRegistry() *RoomRegistry {
	registry := &RoomRegistry{rooms: make(map[string]*domain.Room)}
	registry.order = append(registry.order, domain.Lobby)
	registry.rooms[domain.Lobby] = domain.NewRoom(domain.Lobby, "", "")
	return registry
}

// List returns the room directory in creation order, the payload of the
// global update_rooms broadcast.
func (r *RoomRegistry) List() []event.RoomInfo {
	infos := make([]event.RoomInfo, 0, len(r.order))
	for _, name := range r.order {
		room := r.rooms[name]
		infos = append(infos, event.RoomInfo{
			Name:        room.Name,
			HasPassword: room.HasSecret(),
			Owner:       room.Owner,
		})
	}
	return infos
}

func (r *RoomRegistry) Get(name string) (*domain.Room, bool) {
	room, ok := r.rooms[name]
	return room, ok
}

// Create registers a new room. The name must be non-empty and free.
func (r *RoomRegistry) Create(name, owner, secretHash string) (*domain.Room, error) {
	if name == "" {
		return nil, errors.Reject(errors.ErrValidation, "Invalid or duplicate room name")
	}
	if _, taken := r.rooms[name]; taken {
		return nil, errors.Reject(errors.ErrValidation, "Invalid or duplicate room name")
	}
	room := domain.NewRoom(name, owner, secretHash)
	r.rooms[name] = room
	r.order = append(r.order, name)
	return room, nil
}

// Delete removes the room from the registry. Ownership and Lobby checks
// belong to the caller.
func (r *RoomRegistry) Delete(name string) {
	delete(r.rooms, name)
	kept := r.order[:0]
	for _, n := range r.order {
		if n != name {
			kept = append(kept, n)
		}
	}
	r.order = kept
}

// Names returns the room names in creation order.
func (r *RoomRegistry) Names() []string {
	return append([]string(nil), r.order...)
}
