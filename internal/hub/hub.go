// Package hub fans catalog change events out to Server-Sent Events clients.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"nutriapp/internal/service"

	"github.com/google/uuid"
)

// KeepAliveInterval is how often idle SSE connections get a comment line
const KeepAliveInterval = 30 * time.Second

// Client represents a connected SSE client
type Client struct {
	id     string
	events chan []byte
}

// Hub manages SSE client connections
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan interface{}
	done       chan struct{}
}

// New creates a new Hub
func New() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan interface{}, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop and returns when ctx is cancelled,
// disconnecting every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("SSE client connected: %s (total: %d)", client.id, n)

		case client := <-h.unregister:
			h.remove(client)

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("Failed to marshal event: %v", err)
				continue
			}
			msg := FormatEvent("", data)

			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.events <- msg:
				default:
					log.Printf("SSE client %s is slow, skipping message", client.id)
				}
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.events)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.events)
	}
	n := len(h.clients)
	h.mu.Unlock()
	log.Printf("SSE client disconnected: %s (total: %d)", client.id, n)
}

// Broadcast sends an event to all connected clients
func (h *Hub) Broadcast(event interface{}) {
	select {
	case h.broadcast <- event:
	default:
		log.Println("Broadcast channel full, dropping event")
	}
}

// Forward relays every event published on bus to the connected clients
// until ctx is cancelled
func (h *Hub) Forward(ctx context.Context, bus *service.EventBus) {
	events := make(chan service.Event, 64)
	bus.Subscribe(events)
	defer bus.Unsubscribe(events)

	for {
		select {
		case ev := <-events:
			h.Broadcast(ev)
		case <-ctx.Done():
			return
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP handles SSE connections
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := PrepareSSE(w)
	if !ok {
		return
	}

	client := &Client{
		id:     uuid.NewString(),
		events: make(chan []byte, 64),
	}

	select {
	case h.register <- client:
	case <-h.done:
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	case <-r.Context().Done():
		return
	}
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
	}()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.events:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// PrepareSSE sets the event stream headers and lifts the write deadline.
// It writes an error response and returns false when w cannot stream.
func PrepareSSE(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Streams outlive the server write timeout. Writers without deadline
	// support (such as test recorders) simply keep the default.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
	return flusher, true
}

// FormatEvent frames data as one SSE message, named when event is set
func FormatEvent(event string, data []byte) []byte {
	if event == "" {
		return []byte(fmt.Sprintf("data: %s\n\n", data))
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event, data))
}
