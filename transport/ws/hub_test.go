package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-hub/domain"
	"chat-hub/domain/event"
)

func attachClient(hub *Hub, id domain.SessionID) *Client {
	client := &Client{id: id, hub: hub, send: make(chan []byte, 4), log: slog.Default()}
	hub.register(client)
	return client
}

func decodeFrame(t *testing.T, frame []byte) (string, map[string]any) {
	t.Helper()
	var env struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frame, &env))
	payload := make(map[string]any)
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	return env.Event, payload
}

func TestHub_UnicastReachesOnlyTarget(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())
	c1 := attachClient(hub, "s1")
	c2 := attachClient(hub, "s2")

	hub.Unicast("s1", event.ErrorMessage{Message: "nope"})

	req.Len(c1.send, 1)
	req.Empty(c2.send)

	name, payload := decodeFrame(t, <-c1.send)
	req.Equal("error_message", name)
	req.Equal("nope", payload["message"])
}

func TestHub_RoomCastHonorsGroups(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())
	c1 := attachClient(hub, "s1")
	c2 := attachClient(hub, "s2")

	hub.JoinGroup("s1", "arena")
	hub.RoomCast("arena", event.RoomDeleted{Room: "arena"})
	req.Len(c1.send, 1)
	req.Empty(c2.send)

	hub.LeaveGroup("s1", "arena")
	hub.RoomCast("arena", event.RoomDeleted{Room: "arena"})
	req.Len(c1.send, 1)
}

func TestHub_BroadcastReachesEveryone(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())
	c1 := attachClient(hub, "s1")
	c2 := attachClient(hub, "s2")

	hub.Broadcast(event.UpdateRooms{})
	req.Len(c1.send, 1)
	req.Len(c2.send, 1)
}

func TestHub_UnicastDuringUnregisterDoesNotPanic(t *testing.T) {
	for i := 0; i < 200; i++ {
		hub := NewHub(slog.Default())
		attachClient(hub, "s1")

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.Unicast("s1", event.ErrorMessage{Message: "ping"})
		}()
		go func() {
			defer wg.Done()
			hub.unregister("s1")
		}()
		wg.Wait()
	}
}

func TestHub_FullBufferDropsFrameInsteadOfBlocking(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())
	client := &Client{id: "s1", hub: hub, send: make(chan []byte, 1), log: slog.Default()}
	hub.register(client)

	hub.Unicast("s1", event.ErrorMessage{Message: "first"})
	hub.Unicast("s1", event.ErrorMessage{Message: "dropped"})

	req.Len(client.send, 1)
	_, payload := decodeFrame(t, <-client.send)
	req.Equal("first", payload["message"])
}
