// internal/websocket/hub.go
package websocket

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/data"
)

// Hub maintains the set of active dashboard clients and broadcasts live
// sensor updates and alerts to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	log        *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.log.Debugf("websocket client registered: %s", client.conn.RemoteAddr())
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Debugf("websocket client unregistered: %s", client.conn.RemoteAddr())
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client is blocked or gone, drop it.
					h.log.Warnf("websocket client %s send buffer full, removing", client.conn.RemoteAddr())
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// RegisterClient hands a new client to the hub's run loop.
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// BroadcastUpdate pushes one accepted sensor update to all clients.
func (h *Hub) BroadcastUpdate(u data.Update) {
	h.broadcastEnvelope("data", u)
}

// BroadcastAlert pushes a threshold alert to all clients.
func (h *Hub) BroadcastAlert(a data.Alert) {
	h.broadcastEnvelope("alert", a)
}

func (h *Hub) broadcastEnvelope(kind string, payload interface{}) {
	messageBytes, err := json.Marshal(map[string]interface{}{"type": kind, "payload": payload})
	if err != nil {
		h.log.Errorf("marshalling %s broadcast: %v", kind, err)
		return
	}
	h.broadcast <- messageBytes
}
