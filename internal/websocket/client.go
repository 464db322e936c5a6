package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
)

// Client is one open portal tab
type Client struct {
	ID     string
	UserID string
	View   View
	conn   *websocket.Conn
	hub    *Hub
	send   chan []byte

	// mu guards send against sends after close.
	mu     sync.Mutex
	closed bool
}

// IncomingMessage is what a tab may send: "ping" or "refresh".
type IncomingMessage struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

func NewClient(userID string, view View, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		View:   view,
		conn:   conn,
		hub:    hub,
		send:   make(chan []byte, 16),
	}
}

// ReadPump pumps messages from the WebSocket connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("❌ WebSocket read error for %s: %v", c.UserID, err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("⚠️ Ignoring malformed message from %s: %v", c.UserID, err)
			continue
		}

		switch msg.Type {
		case "ping":
			c.push(Envelope{Type: "pong", View: c.View, Timestamp: time.Now().Format(time.RFC3339)})
		case "refresh":
			log.Printf("🔄 Tab %s asked to refresh %s", c.ID, c.View)
			c.hub.requestRefresh(c.View, c.UserID)
		default:
			log.Printf("⚠️ Unknown message type %q from %s", msg.Type, c.UserID)
		}
	}
}

// push queues a reply for this tab only, dropping it if the tab is slow
// or already disconnected.
func (c *Client) push(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("❌ Failed to encode %s reply: %v", env.Type, err)
		return
	}
	c.enqueue(data)
}

// enqueue reports false when the tab is closed or its buffer is full.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close ends the write pump. Safe to call more than once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
