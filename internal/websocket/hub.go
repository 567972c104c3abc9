package websocket

import (
	"errors"
	"sync"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/dafibh/envelope/envelope-backend/internal/events"
	"github.com/rs/zerolog/log"
)

var (
	// ErrClientClosed is returned when attempting to send to a closed client
	ErrClientClosed = errors.New("client is closed")
	// ErrSlowClient is returned when a client's outbox is full
	ErrSlowClient = errors.New("client outbox is full")
)

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	Subscribed(kind domain.EntityKind) bool
	Send(data []byte) error
	Close() error
}

// Ensure Hub implements events.EventPublisher
var _ events.EventPublisher = (*Hub)(nil)

// Hub tracks connected WebSocket clients of the ledger event stream.
// It is safe for concurrent use.
type Hub struct {
	clients map[string]ClientInterface
	mu      sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]ClientInterface),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID()] = client

	log.Debug().
		Str("client_id", client.ID()).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.clients[client.ID()]; exists {
		delete(h.clients, client.ID())
		log.Debug().
			Str("client_id", client.ID()).
			Msg("WebSocket client unregistered")
	}
}

// Publish implements events.EventPublisher by broadcasting to every client
func (h *Hub) Publish(event events.Event) {
	h.Broadcast(event)
}

// Broadcast sends an event to every client subscribed to its entity kind.
// Clients that cannot keep up are dropped.
func (h *Hub) Broadcast(event events.Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	targets := make([]ClientInterface, 0, len(h.clients))
	for _, client := range h.clients {
		if client.Subscribed(event.Entity) {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	for _, client := range targets {
		go h.deliver(client, data)
	}

	log.Debug().
		Str("event_type", event.Type).
		Int("client_count", len(targets)).
		Msg("Broadcast event")
}

func (h *Hub) deliver(client ClientInterface, data []byte) {
	err := client.Send(data)
	switch {
	case err == nil:
	case errors.Is(err, ErrSlowClient):
		log.Warn().Str("client_id", client.ID()).Msg("Dropping slow WebSocket client")
		h.Unregister(client)
		_ = client.Close()
	default:
		log.Debug().Err(err).Str("client_id", client.ID()).Msg("Failed to send to client")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
