package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/dafibh/envelope/envelope-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler streams ledger events to connected clients
type WebSocketHandler struct {
	hub            *websocket.Hub
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, allowedOrigins []string) *WebSocketHandler {
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients send no Origin
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// parseEntityFilter reads a comma-separated list of entity kinds; empty means all
func parseEntityFilter(raw string) ([]domain.EntityKind, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	known := make(map[domain.EntityKind]bool, len(domain.EntityKinds))
	for _, kind := range domain.EntityKinds {
		known[kind] = true
	}

	var kinds []domain.EntityKind
	for _, part := range strings.Split(raw, ",") {
		kind := domain.EntityKind(strings.TrimSpace(part))
		if !known[kind] {
			return nil, fmt.Errorf("unknown entity %q", kind)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// HandleWS handles WebSocket connection requests at GET /api/v1/ws.
// The optional entities query parameter limits the stream, e.g. ?entities=account,transaction
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	entities, err := parseEntityFilter(c.QueryParam("entities"))
	if err != nil {
		return fieldError(c, "entities", err.Error())
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, h.hub, entities)
	h.hub.Register(client)

	log.Info().
		Str("client_id", client.ID()).
		Int("entity_filters", len(entities)).
		Int("clients", h.hub.ClientCount()).
		Msg("WebSocket client connected")

	go client.Serve()

	return nil
}
