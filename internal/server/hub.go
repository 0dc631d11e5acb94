package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gridspire/arena-server-go/internal/config"
	"github.com/gridspire/arena-server-go/internal/game"
)

const clientSendBuffer = 64

type broadcastMsg struct {
	matchID string
	payload []byte
}

// Hub fans engine notifications out to websocket subscribers. Clients
// subscribe to a single match; the Run loop owns all client maps so no
// locking is needed.
type Hub struct {
	logger   *zap.Logger
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader

	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg

	clients map[*Client]bool
	matches map[string]map[*Client]bool
	count   atomic.Int64
}

// NewHub prepares a hub for the given websocket settings. Zero values fall
// back to the configuration defaults.
func NewHub(cfg config.WebSocketConfig, logger *zap.Logger) *Hub {
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = 1024
	}
	if cfg.WriteBufferSize <= 0 {
		cfg.WriteBufferSize = 1024
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	return &Hub{
		logger: logger,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg, 256),
		clients:    make(map[*Client]bool),
		matches:    make(map[string]map[*Client]bool),
	}
}

// Run processes subscriptions and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			if h.matches[client.matchID] == nil {
				h.matches[client.matchID] = make(map[*Client]bool)
			}
			h.matches[client.matchID][client] = true
			h.count.Store(int64(len(h.clients)))
			h.logger.Debug("websocket client connected",
				zap.String("match_id", client.matchID),
				zap.String("player_id", client.playerID),
				zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			h.dropClient(client)

		case msg := <-h.broadcast:
			for client := range h.matches[msg.matchID] {
				select {
				case client.send <- msg.payload:
				default:
					h.dropClient(client)
				}
			}

		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
			}
			h.clients = make(map[*Client]bool)
			h.matches = make(map[string]map[*Client]bool)
			h.count.Store(0)
			return
		}
	}
}

func (h *Hub) dropClient(client *Client) {
	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	if subs := h.matches[client.matchID]; subs != nil {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.matches, client.matchID)
		}
	}
	close(client.send)
	h.count.Store(int64(len(h.clients)))
}

// Notify queues an engine notification for the match's subscribers. The
// engine calls this from its own goroutine, so the send never blocks.
func (h *Hub) Notify(n game.MatchNotification) {
	payload, err := json.Marshal(n)
	if err != nil {
		h.logger.Error("failed to encode notification", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- broadcastMsg{matchID: n.MatchID, payload: payload}:
	default:
		h.logger.Warn("notification dropped, broadcast queue full",
			zap.String("match_id", n.MatchID),
			zap.String("type", n.Type))
	}
}

// ClientCount reports the number of connected websocket clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Client is one websocket subscriber bound to a match.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	matchID  string
	playerID string
}

// readPump drains the connection. The stream is one-way; inbound frames
// only serve the pong handler that keeps the connection alive.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	pongWait := 2 * c.hub.cfg.PingInterval
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS upgrades the request and subscribes the client to a match's
// event stream. Subscribing to a match that does not exist yet is allowed
// so spectators can connect before the match starts.
func (h *Handler) ServeWS(c *gin.Context) {
	matchID := c.Query("match_id")
	if matchID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "match_id query parameter is required"})
		return
	}

	conn, err := h.hub.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:      h.hub,
		conn:     conn,
		send:     make(chan []byte, clientSendBuffer),
		matchID:  matchID,
		playerID: c.Query("player_id"),
	}
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}
