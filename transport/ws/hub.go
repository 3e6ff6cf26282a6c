package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"chat-hub/domain"
	"chat-hub/domain/event"
)

// envelope is the wire frame for both directions: an event name plus its
// payload.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Hub tracks connected clients and their room groups, and fans outbound
// events to the right sockets. All methods are safe for concurrent use
// and never block on a slow client: full send buffers drop the frame.
type Hub struct {
	log *slog.Logger

	mu      sync.RWMutex
	clients map[domain.SessionID]*Client
	groups  map[string]map[domain.SessionID]struct{}
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[domain.SessionID]*Client),
		groups:  make(map[string]map[domain.SessionID]struct{}),
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.id] = client
}

func (h *Hub) unregister(id domain.SessionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[id]; ok {
		close(client.send)
		delete(h.clients, id)
	}
	for room, members := range h.groups {
		delete(members, id)
		if len(members) == 0 {
			delete(h.groups, room)
		}
	}
}

func (h *Hub) JoinGroup(id domain.SessionID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[room]
	if !ok {
		members = make(map[domain.SessionID]struct{})
		h.groups[room] = members
	}
	members[id] = struct{}{}
}

func (h *Hub) LeaveGroup(id domain.SessionID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.groups[room]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(h.groups, room)
		}
	}
}

func (h *Hub) Unicast(id domain.SessionID, e event.Outbound) {
	frame, err := encode(e)
	if err != nil {
		h.log.Error("Failed to encode outbound event", "event", e.Name(), "err", err)
		return
	}
	// The lock must cover the send: unregister closes the client's channel
	// under the write lock, so releasing it before enqueue would allow a
	// send on a closed channel.
	h.mu.RLock()
	defer h.mu.RUnlock()
	if client, ok := h.clients[id]; ok {
		client.enqueue(frame)
	}
}

func (h *Hub) RoomCast(room string, e event.Outbound) {
	frame, err := encode(e)
	if err != nil {
		h.log.Error("Failed to encode outbound event", "event", e.Name(), "err", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id := range h.groups[room] {
		if client, ok := h.clients[id]; ok {
			client.enqueue(frame)
		}
	}
}

func (h *Hub) Broadcast(e event.Outbound) {
	frame, err := encode(e)
	if err != nil {
		h.log.Error("Failed to encode outbound event", "event", e.Name(), "err", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		client.enqueue(frame)
	}
}

func encode(e event.Outbound) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Event: e.Name(), Data: data})
}
