package ws

import (
	"encoding/json"
	"time"

	"tasklists/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096

	sendBuffer = 64
)

// Client is one websocket connection of a user.
type Client struct {
	UserID int64
	Conn   *websocket.Conn
	Send   chan []byte

	hub *Hub
}

func NewClient(userID int64, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		hub:    hub,
	}
}

// Run registers the client, greets it with a ready message and blocks
// until the connection goes away.
func (c *Client) Run() {
	c.hub.Register(c)
	c.trySend(controlMessage(MsgReady))

	go c.writePump()
	c.readPump()
}

// readPump only services control frames and pings; subscribers do not
// send commands.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "user_id", c.UserID, "error", err)
			}
			return
		}

		var in struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(msg, &in) == nil && in.Type == MsgPing {
			c.trySend(controlMessage(MsgPong))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write error", "user_id", c.UserID, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues msg unless the buffer is full or the client is gone.
func (c *Client) trySend(msg []byte) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c.UserID][c]; !ok {
		return
	}
	select {
	case c.Send <- msg:
	default:
	}
}

func controlMessage(typ string) []byte {
	b, _ := json.Marshal(map[string]string{"type": typ})
	return b
}
