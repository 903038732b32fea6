package websocket

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pyhumph/jriit-cms-sub001/internal/event"
)

// Hub fans recycle-bin lifecycle events out to connected operator consoles.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Event bus to listen for events
	bus event.Bus

	// Closed when Run returns.
	done chan struct{}
}

func NewHub(bus event.Bus) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		bus:        bus,
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	events, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case e, ok := <-events:
			if !ok {
				return
			}
			message, err := json.Marshal(e)
			if err != nil {
				slog.Error("failed to marshal event", "error", err)
				continue
			}
			h.broadcast(message)
		}
	}
}

func (h *Hub) broadcast(message []byte) {
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Slow consoles are dropped rather than stalling the hub.
			close(client.send)
			delete(h.clients, client)
		}
	}
}
