package realtime

import (
	"encoding/json"
	"time"

	"kanban_board/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 16
)

// Client is one websocket subscribed to a user's auth events.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Hub    *Hub

	send chan []byte
	done chan struct{}
}

func NewClient(userID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Hub:    hub,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// Run registers the client, announces readiness and blocks until the socket is gone.
func (c *Client) Run() {
	c.Hub.register(c)
	go c.writePump()

	ready, _ := json.Marshal(Message{Type: MsgReady, UserID: c.UserID})
	c.trySend(ready)

	c.readPump()
	<-c.done
}

func (c *Client) trySend(msg []byte) {
	c.Hub.mu.RLock()
	defer c.Hub.mu.RUnlock()
	if _, ok := c.Hub.clients[c.UserID][c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// readPump only answers pings; subscribers never push state.
func (c *Client) readPump() {
	defer c.Hub.unregister(c)

	c.Conn.SetReadLimit(1024)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("realtime read error", "user_id", c.UserID, "error", err)
			}
			return
		}
		var m Message
		if json.Unmarshal(raw, &m) == nil && m.Type == MsgPing {
			pong, _ := json.Marshal(Message{Type: MsgPong})
			c.trySend(pong)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
		close(c.done)
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("realtime write error", "user_id", c.UserID, "error", err)
				c.Hub.unregister(c)
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Hub.unregister(c)
				return
			}
		}
	}
}
