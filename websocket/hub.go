package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/goblin987/legendary-meme/types"
)

// Hub interface defines the methods for managing WebSocket connections.
// Channels are player session IDs, import job IDs, or "all".
type Hub interface {
	Run()
	BroadcastState(channel string, state *types.PlayerState)
	BroadcastProgress(channel, msgType, status, message string, progress float64)
	RegisterClient(client *Client)
	UnregisterClient(client *Client)
}

// hub maintains the set of active clients and broadcasts messages to them
type hub struct {
	// Registered clients mapped by channel
	clients map[string]map[*Client]bool

	broadcast  chan types.EventMessage
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() Hub {
	return &hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan types.EventMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main event loop
func (h *hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.channel] == nil {
				h.clients[client.channel] = make(map[*Client]bool)
			}
			h.clients[client.channel][client] = true
			h.mu.Unlock()
			log.Printf("WebSocket client connected on channel %s", client.channel)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.channel]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.channel)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("WebSocket client disconnected from channel %s", client.channel)

		case message := <-h.broadcast:
			h.mu.Lock()
			h.deliver(message.Channel, message)
			if message.Channel != "all" {
				// "all" subscribers see every channel's events
				h.deliver("all", message)
			}
			h.mu.Unlock()
		}
	}
}

// deliver sends a message to every client of one channel, dropping clients
// whose send buffer is full. Callers hold the write lock.
func (h *hub) deliver(channel string, message types.EventMessage) {
	clients, ok := h.clients[channel]
	if !ok {
		return
	}
	for client := range clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(clients, client)
		}
	}
	if len(clients) == 0 {
		delete(h.clients, channel)
	}
}

// BroadcastState pushes a player state transition to a session's clients
func (h *hub) BroadcastState(channel string, state *types.PlayerState) {
	h.enqueue(types.EventMessage{
		Channel:   channel,
		Type:      "state",
		Player:    state,
		Timestamp: time.Now(),
	})
}

// BroadcastProgress pushes an import progress update to a job's clients
func (h *hub) BroadcastProgress(channel, msgType, status, message string, progress float64) {
	h.enqueue(types.EventMessage{
		Channel:   channel,
		Type:      msgType,
		Status:    status,
		Message:   message,
		Progress:  progress,
		Timestamp: time.Now(),
	})
}

func (h *hub) enqueue(msg types.EventMessage) {
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("WebSocket broadcast channel full, dropping message for %s", msg.Channel)
	}
}

// RegisterClient registers a new client with the hub
func (h *hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient unregisters a client from the hub
func (h *hub) UnregisterClient(client *Client) {
	h.unregister <- client
}
