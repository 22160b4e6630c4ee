package websocket

import (
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans live session events (countdown ticks, marked scans) out to the
// presenters watching a given attendance session.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	mu         sync.RWMutex
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.SessionID]; !ok {
		h.clients[client.SessionID] = make(map[*Client]bool)
	}
	h.clients[client.SessionID][client] = true
	log.Printf("Presenter registered for session %s", client.SessionID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sessionClients, ok := h.clients[client.SessionID]; ok {
		if _, ok := sessionClients[client]; ok {
			delete(sessionClients, client)
			close(client.send)
			if len(sessionClients) == 0 {
				delete(h.clients, client.SessionID)
			}
			log.Printf("Presenter unregistered from session %s", client.SessionID)
		}
	}
}

func (h *Hub) PublishEvent(sessionID uuid.UUID, eventData []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if sessionClients, ok := h.clients[sessionID]; ok {
		for client := range sessionClients {
			select {
			case client.send <- eventData:
			default:
				log.Printf("WARN: Presenter send buffer for session %s is full. Dropping message.", sessionID)
			}
		}
	}
}
