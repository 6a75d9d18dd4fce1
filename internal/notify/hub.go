package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

// Message is what a websocket client receives.
type Message struct {
	Event      string    `json:"event"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type clientCommand struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

type connection struct {
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan []byte
	rooms  map[string]bool
}

// Hub fans events out to the websocket connections of this process. A user
// may hold several connections; each receives an event once no matter how
// many of its rooms the event targets.
type Hub struct {
	mu          sync.RWMutex
	connections map[*connection]struct{}
	log         *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[*connection]struct{}),
		log:         log.With(zap.String("component", "hub")),
	}
}

// Emit implements Emitter by broadcasting to the audience's rooms.
func (h *Hub) Emit(_ context.Context, event Event) error {
	data, err := json.Marshal(Message{
		Event:      event.Name,
		Payload:    event.Payload,
		OccurredAt: event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.Name, err)
	}

	h.Broadcast(event.Audience.Rooms(), data)
	return nil
}

// Broadcast delivers data to every connection subscribed to any of rooms.
// Slow clients whose buffer is full miss the message.
func (h *Hub) Broadcast(rooms []string, data []byte) {
	if len(rooms) == 0 {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.connections {
		if !c.inAny(rooms) {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.log.Warn("Client too slow, skipping message", zap.String("user_id", c.userID.String()))
		}
	}
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// ServeWS registers conn, joins it to rooms and blocks until the client goes away.
func (h *Hub) ServeWS(conn *websocket.Conn, userID uuid.UUID, rooms []string) {
	c := &connection{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		rooms:  make(map[string]bool, len(rooms)),
	}
	for _, room := range rooms {
		c.rooms[room] = true
	}

	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c]; ok {
		delete(h.connections, c)
		close(c.send)
	}
}

func (c *connection) inAny(rooms []string) bool {
	for _, room := range rooms {
		if c.rooms[room] {
			return true
		}
	}
	return false
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("Websocket closed unexpectedly", zap.Error(err))
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(msg, &cmd); err != nil {
			continue
		}

		// Clients may only follow property rooms; user and landlord rooms are
		// assigned from the token.
		if !isPropertyRoom(cmd.Room) {
			continue
		}

		switch cmd.Type {
		case "subscribe":
			h.mu.Lock()
			c.rooms[cmd.Room] = true
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			delete(c.rooms, cmd.Room)
			h.mu.Unlock()
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func isPropertyRoom(room string) bool {
	id, ok := strings.CutPrefix(room, "property_")
	if !ok {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
