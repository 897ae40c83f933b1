package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/farsisub/domain/entities"
	"github.com/satriahrh/farsisub/domain/repositories"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Overlays only send control frames.
	maxMessageSize = 4 * 1024

	// Subtitles buffered per client before it is considered too slow.
	clientBuffer = 16
)

var upgrader = websocket.Upgrader{
	// Browser sources (OBS) connect from file:// and localhost origins
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub fans subtitles out to connected overlay clients.
// New clients receive the latest subtitle; slow clients are disconnected.
type Hub struct {
	// Registered clients.
	clients map[*Client]struct{}

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Encoded subtitles to send to every client.
	broadcast chan []byte

	mu     sync.RWMutex
	latest []byte
	count  int

	done   chan struct{}
	logger *zap.Logger
}

var _ repositories.SubtitlePublisher = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, clientBuffer),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's main loop and disconnects every client when ctx ends
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			h.logger.Info("WebSocket hub stopped")
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.setCount(len(h.clients))

			h.mu.RLock()
			latest := h.latest
			h.mu.RUnlock()
			if latest != nil {
				client.send <- latest
			}
			h.logger.Info("Client registered", zap.String("clientID", client.id))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
				h.logger.Info("Client unregistered", zap.String("clientID", client.id))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					h.remove(client)
					h.logger.Warn("Dropping slow client", zap.String("clientID", client.id))
				}
			}
		}
	}
}

// remove must only be called from Run
func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.setCount(len(h.clients))
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// Publish implements repositories.SubtitlePublisher. It never waits on clients.
func (h *Hub) Publish(ctx context.Context, subtitle *entities.Subtitle) error {
	data, err := json.Marshal(NewSubtitleMessage(subtitle))
	if err != nil {
		return fmt.Errorf("encode subtitle message: %w", err)
	}

	h.mu.Lock()
	h.latest = data
	h.mu.Unlock()

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("Broadcast queue full, subtitle only stored as latest",
			zap.String("subtitleID", subtitle.ID))
	}
	return nil
}

// ClientCount returns the number of connected overlays
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte

	id     string
	logger *zap.Logger
}

// HandleWebSocket upgrades the request and registers the overlay client
func HandleWebSocket(hub *Hub, c echo.Context, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, clientBuffer),
		id:     uuid.NewString(),
		logger: logger,
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return nil
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump keeps the read deadline fresh and detects disconnects
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
