package websocket

import (
	"sync"
	"time"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must be below pongWait
	maxMessageSize = 512
	outboxSize     = 256
)

// Client is one subscriber of the ledger event stream. A client with no
// entity filter receives every event.
type Client struct {
	id       string
	conn     *websocket.Conn
	hub      *Hub
	entities map[domain.EntityKind]struct{}
	outbox   chan []byte

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewClient creates a client subscribed to the given entity kinds (all when empty)
func NewClient(conn *websocket.Conn, hub *Hub, entities []domain.EntityKind) *Client {
	c := &Client{
		id:     uuid.New().String(),
		conn:   conn,
		hub:    hub,
		outbox: make(chan []byte, outboxSize),
	}
	if len(entities) > 0 {
		c.entities = make(map[domain.EntityKind]struct{}, len(entities))
		for _, kind := range entities {
			c.entities[kind] = struct{}{}
		}
	}
	return c
}

func (c *Client) ID() string {
	return c.id
}

// Subscribed reports whether events about kind should reach this client
func (c *Client) Subscribed(kind domain.EntityKind) bool {
	if c.entities == nil {
		return true
	}
	_, ok := c.entities[kind]
	return ok
}

// Send queues a frame for the writer. It never blocks; a full outbox
// yields ErrSlowClient.
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.outbox <- data:
		return nil
	default:
		return ErrSlowClient
	}
}

// Close is idempotent and safe for concurrent use
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.outbox)
		c.mu.Unlock()

		err = c.conn.Close()
	})
	return err
}

// Serve runs the writer in its own goroutine and reads until the peer goes
// away, then unregisters the client.
func (c *Client) Serve() {
	go c.writeLoop()
	c.readLoop()
}

// readLoop only services control frames; inbound data frames are discarded
func (c *Client) readLoop() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client_id", c.id).Msg("WebSocket unexpected close")
			}
			return
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case frame, ok := <-c.outbox:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Warn().Err(err).Str("client_id", c.id).Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
