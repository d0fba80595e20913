package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/NomadCrew/neoevents/logger"
	"github.com/NomadCrew/neoevents/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// Hub fans stream messages out to every connected map client.
type Hub struct {
	log          *zap.SugaredLogger
	connections  map[string]*Connection // connection id -> connection
	mu           sync.RWMutex
	shutdownOnce sync.Once
	sendBuffer   int
}

// Connection represents a single map client.
type Connection struct {
	ID     string
	Conn   *websocket.Conn
	sendCh chan types.StreamMessage
	mu     sync.Mutex
	closed bool
}

// HubConfig contains configuration options for the Hub and its handler.
type HubConfig struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
	SendBuffer   int
}

// DefaultHubConfig returns sensible defaults for Hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		PingInterval: 30 * time.Second,
		WriteTimeout: 10 * time.Second,
		SendBuffer:   64,
	}
}

// NewHub creates a new WebSocket hub.
func NewHub(cfg ...HubConfig) *Hub {
	config := DefaultHubConfig()
	if len(cfg) > 0 {
		config = cfg[0]
	}
	if config.SendBuffer <= 0 {
		config.SendBuffer = DefaultHubConfig().SendBuffer
	}

	return &Hub{
		log:         logger.GetLogger().Named("websocket_hub"),
		connections: make(map[string]*Connection),
		sendBuffer:  config.SendBuffer,
	}
}

// Register adds a connection and returns its handle.
func (h *Hub) Register(conn *websocket.Conn) *Connection {
	connection := &Connection{
		ID:     uuid.NewString(),
		Conn:   conn,
		sendCh: make(chan types.StreamMessage, h.sendBuffer),
	}

	h.mu.Lock()
	h.connections[connection.ID] = connection
	count := len(h.connections)
	h.mu.Unlock()

	h.log.Infow("WebSocket connection registered",
		"connectionID", connection.ID,
		"connections", count)
	return connection
}

// Unregister removes a connection and closes it.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	conn, ok := h.connections[id]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.connections, id)
	h.mu.Unlock()

	h.closeConnection(conn, "unregistered")
}

func (h *Hub) closeConnection(conn *Connection, reason string) {
	conn.mu.Lock()
	if conn.closed {
		conn.mu.Unlock()
		return
	}
	conn.closed = true
	close(conn.sendCh)
	conn.mu.Unlock()

	if conn.Conn != nil {
		_ = conn.Conn.Close(websocket.StatusNormalClosure, reason)
	}

	h.log.Infow("WebSocket connection closed",
		"connectionID", conn.ID,
		"reason", reason)
}

// Broadcast queues msg for every connection. Connections whose buffer is
// full miss the message.
func (h *Hub) Broadcast(msg types.StreamMessage) {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.connections))
	for _, c := range h.connections {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if !c.enqueue(msg) {
			h.log.Warnw("Connection send buffer full, dropping message",
				"connectionID", c.ID,
				"type", msg.Type)
		}
	}
}

// BroadcastSnapshot sends a snapshot to every client.
func (h *Hub) BroadcastSnapshot(s types.Snapshot) {
	h.Broadcast(types.StreamMessage{Type: types.StreamMessageSnapshot, Snapshot: &s})
}

// Alert sends a user-visible alert to every client and logs it.
func (h *Hub) Alert(_ context.Context, message string) {
	h.log.Warnw("User alert", "message", message, "connections", h.GetConnectionCount())
	h.Broadcast(types.StreamMessage{Type: types.StreamMessageAlert, Alert: message})
}

// GetConnectionCount returns the number of active connections.
func (h *Hub) GetConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Shutdown closes every connection.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(func() {
		h.mu.Lock()
		connections := make([]*Connection, 0, len(h.connections))
		for _, conn := range h.connections {
			connections = append(connections, conn)
		}
		h.connections = make(map[string]*Connection)
		h.mu.Unlock()

		for _, conn := range connections {
			h.closeConnection(conn, "server shutdown")
		}
	})

	h.log.Info("WebSocket hub shutdown complete")
	return nil
}

func (c *Connection) enqueue(msg types.StreamMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.sendCh <- msg:
		return true
	default:
		return false
	}
}

// SendChannel returns the outbound queue, closed when the connection closes.
func (c *Connection) SendChannel() <-chan types.StreamMessage {
	return c.sendCh
}

// IsClosed returns whether the connection is closed.
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
