package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// View names a dashboard whose snapshots a tab can subscribe to.
type View string

const (
	ViewUser   View = "user"
	ViewDriver View = "driver"
	ViewAdmin  View = "admin"
)

// Hub maintains open portal tabs and fans view snapshots out to them
type Hub struct {
	// Registered clients (client ID -> Client)
	clients map[string]*Client

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Called when a tab asks for an immediate refresh of its view
	onRefresh func(view View, userID string)

	mu sync.RWMutex
}

// Message is one snapshot for every tab subscribed to View. An empty
// UserID reaches every subscriber of the view.
type Message struct {
	View   View
	UserID string
	Data   interface{}
}

// Envelope is what a tab receives.
type Envelope struct {
	Type      string      `json:"type"`
	View      View        `json:"view"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// OnRefresh installs the handler for client "refresh" messages. Call it
// before Run.
func (h *Hub) OnRefresh(fn func(view View, userID string)) {
	h.onRefresh = fn
}

// Run is the hub's main loop; it returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				client.close()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			log.Printf("✅ [WEBSOCKET] Tab CONNECTED")
			log.Printf("   User ID: %s", client.UserID)
			log.Printf("   View: %s", client.View)
			log.Printf("   Total connected tabs: %d", total)
			log.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				client.close()
				log.Printf("🔴 [WEBSOCKET] Tab DISCONNECTED: %s (%s), %d remaining", client.UserID, client.View, len(h.clients))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) deliver(message *Message) {
	data, err := json.Marshal(Envelope{
		Type:      "view_update",
		View:      message.View,
		Timestamp: time.Now().Format(time.RFC3339),
		Data:      message.Data,
	})
	if err != nil {
		log.Printf("❌ Failed to marshal view update: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		if client.View != message.View {
			continue
		}
		if message.UserID != "" && client.UserID != message.UserID {
			continue
		}
		if !client.enqueue(data) {
			client.close()
			delete(h.clients, id)
			log.Printf("⚠️ Tab buffer full, disconnecting: %s", id)
		}
	}
}

// Publish queues a snapshot for the tabs of one user on one view. It
// never blocks the caller; a full queue drops the snapshot since the next
// refresh supersedes it.
func (h *Hub) Publish(view View, userID string, data interface{}) {
	select {
	case h.broadcast <- &Message{View: view, UserID: userID, Data: data}:
	default:
		log.Printf("⚠️ Broadcast queue full, dropping %s update", view)
	}
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Subscribers counts the tabs open on view.
func (h *Hub) Subscribers(view View) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, client := range h.clients {
		if client.View == view {
			n++
		}
	}
	return n
}

// join registers client unless the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) requestRefresh(view View, userID string) {
	if h.onRefresh != nil {
		h.onRefresh(view, userID)
	}
}
