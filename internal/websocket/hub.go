package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Message is the envelope pushed to browsers
type Message struct {
	Type     string      `json:"type"`
	ClientID string      `json:"clientId,omitempty"`
	Payload  interface{} `json:"payload,omitempty"`
}

// Hub maintains the set of active connections and fans messages out to them
type Hub struct {
	// Connected clients; the value is the loading client id they follow ("" for none)
	clients map[*Client]string

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	// Messages for every connection
	broadcast chan []byte

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[*Client]string),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = ""
			h.mu.Unlock()
			log.Printf("🔌 WS connected: %s", client.ConnID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("📴 WS disconnected: %s", client.ConnID)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow consumer, drop the frame rather than block the hub
				}
			}
			h.mu.RUnlock()
		}
	}
}

// subscribe points a connection at one loading client's updates
func (h *Hub) subscribe(c *Client, clientID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	h.clients[c] = clientID
	return true
}

// SendToClient delivers a message to every connection following clientID.
// It returns the number of connections reached.
func (h *Hub) SendToClient(clientID string, message Message) int {
	message.ClientID = clientID
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for client, following := range h.clients {
		if following != clientID {
			continue
		}
		select {
		case client.send <- jsonMsg:
			sent++
		default:
		}
	}
	return sent
}

// Broadcast queues a message for every connection
func (h *Hub) Broadcast(message Message) {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}
	select {
	case h.broadcast <- jsonMsg:
	default:
		log.Printf("⚠️ WS broadcast queue full, dropping %s", message.Type)
	}
}

// Count returns the number of open connections
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
