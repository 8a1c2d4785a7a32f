package app

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// liveHub fans the sample stream out to connected websocket clients. Slow or
// gone clients are dropped on their first failed write; the browser
// reconnects.
type liveHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newLiveHub() *liveHub {
	return &liveHub{clients: make(map[*websocket.Conn]struct{})}
}

// HandleLiveWS upgrades the connection and keeps it registered until the
// client disconnects. Inbound messages are discarded; the stream is one-way.
func (h *liveHub) HandleLiveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("live: websocket upgrade error: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	log.Printf("live: client connected (%d total)", n)

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("live: websocket error: %v", err)
			}
			return
		}
	}
}

// Broadcast writes one JSON payload to every connected client.
func (h *liveHub) Broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("live: dropping client: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}
