package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same-origin policy is left to a fronting proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket connection. The read pump turns inbound frames
// into commands; the write pump drains the send buffer.
type Client struct {
	id     domain.SessionID
	hub    *Hub
	router *Router
	conn   *websocket.Conn
	send   chan []byte
	log    *slog.Logger
}

// ServeWS upgrades an HTTP request, assigns the connection its session id
// and starts both pumps.
func ServeWS(log *slog.Logger, hub *Hub, router *Router, dispatcher contract.IDispatcher, sendBuffer int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("Websocket upgrade failed", "err", err)
			return
		}

		client := &Client{
			id:     domain.SessionID(uuid.NewString()),
			hub:    hub,
			router: router,
			conn:   conn,
			send:   make(chan []byte, sendBuffer),
			log:    log,
		}
		hub.register(client)
		dispatcher.Dispatch(event.Connect{Session: client.id})

		go client.writePump()
		go client.readPump(dispatcher)
	}
}

// enqueue hands a frame to the write pump without blocking. A client that
// cannot keep up loses frames rather than stalling the hub.
func (c *Client) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
		c.log.Warn("Send buffer full, dropping frame", "session", c.id)
	}
}

func (c *Client) readPump(dispatcher contract.IDispatcher) {
	defer func() {
		dispatcher.Dispatch(event.Disconnect{Session: c.id})
		c.hub.unregister(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("Websocket read failed", "session", c.id, "err", err)
			}
			return
		}
		if err := c.router.Route(c.id, raw); err != nil {
			c.sendError(err)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendError reports a frame rejected before it ever reached the engine.
func (c *Client) sendError(err error) {
	payload, marshalErr := json.Marshal(event.ErrorMessage{Message: err.Error()})
	if marshalErr != nil {
		return
	}
	frame, marshalErr := json.Marshal(envelope{Event: event.ErrorMessage{}.Name(), Data: payload})
	if marshalErr != nil {
		return
	}
	c.enqueue(frame)
}
