package websocket

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"swms-portal/internal/guard"
	"swms-portal/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The portal is served from the same host; CORS is enforced by the router.
		return true
	},
}

// viewAllowed reports whether a role may watch a view.
func viewAllowed(role models.Role, view View) bool {
	switch view {
	case ViewAdmin:
		return role == models.RoleAdmin
	case ViewDriver:
		return role == models.RoleDriver
	case ViewUser:
		return true
	}
	return false
}

// HandleWebSocket upgrades a guarded request to a view subscription. The
// route guard has already put the user in the context.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := guard.UserFromContext(r.Context())
		if !ok {
			log.Println("❌ No user in context for WebSocket connection")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		view := View(r.URL.Query().Get("view"))
		if !viewAllowed(user.Role, view) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("❌ WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(user.ID, view, conn, hub)
		if !hub.join(client) {
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()

		log.Printf("✅ WebSocket connection established for user: %s (%s)", user.Email, view)
	}
}
