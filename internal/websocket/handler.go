package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/NomadCrew/neoevents/config"
	"github.com/NomadCrew/neoevents/logger"
	"github.com/NomadCrew/neoevents/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// SnapshotProvider returns the current map view.
type SnapshotProvider interface {
	Snapshot() types.Snapshot
}

// Handler upgrades map clients to the stream.
type Handler struct {
	log            *zap.SugaredLogger
	hub            *Hub
	snapshots      SnapshotProvider
	pingInterval   time.Duration
	writeTimeout   time.Duration
	allowedOrigins []string
	isDevelopment  bool
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, snapshots SnapshotProvider, serverCfg *config.ServerConfig) *Handler {
	hubCfg := DefaultHubConfig()
	return &Handler{
		log:            logger.GetLogger().Named("websocket_handler"),
		hub:            hub,
		snapshots:      snapshots,
		pingInterval:   hubCfg.PingInterval,
		writeTimeout:   hubCfg.WriteTimeout,
		allowedOrigins: serverCfg.AllowedOrigins,
		isDevelopment:  serverCfg.Environment == config.EnvDevelopment,
	}
}

// getAcceptOptions allows every origin in development and only the
// configured ones otherwise.
func (h *Handler) getAcceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionContextTakeover,
	}
	if h.isDevelopment || containsWildcard(h.allowedOrigins) {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = h.allowedOrigins
	}
	return opts
}

// ClientMessage represents a message from the client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client message types.
const (
	MessageTypePing     = "ping"
	MessageTypePong     = "pong"
	MessageTypeSnapshot = "snapshot"
)

// HandleWebSocket upgrades the request, sends the current snapshot and then
// streams every subsequent change until the client goes away.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, h.getAcceptOptions())
	if err != nil {
		h.log.Errorw("Failed to accept WebSocket connection", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	connection := h.hub.Register(conn)
	defer h.hub.Unregister(connection.ID)

	if err := h.sendSnapshot(ctx, conn); err != nil {
		h.log.Errorw("Failed to send initial snapshot",
			"connectionID", connection.ID,
			"error", err)
		return
	}

	errCh := make(chan error, 3)
	go func() { errCh <- h.readLoop(ctx, conn) }()
	go func() { errCh <- h.writeLoop(ctx, conn, connection) }()
	go func() { errCh <- h.pingLoop(ctx, conn) }()

	err = <-errCh
	if err != nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure && websocket.CloseStatus(err) != websocket.StatusGoingAway {
		h.log.Warnw("WebSocket connection error",
			"connectionID", connection.ID,
			"error", err)
	}
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return err
		}

		switch msg.Type {
		case MessageTypePing:
			if err := h.write(ctx, conn, map[string]string{"type": MessageTypePong}); err != nil {
				return err
			}
		case MessageTypeSnapshot:
			if err := h.sendSnapshot(ctx, conn); err != nil {
				return err
			}
		default:
			h.log.Debugw("Unknown message type from client", "type", msg.Type)
		}
	}
}

func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, connection *Connection) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-connection.SendChannel():
			if !ok {
				return nil
			}
			if err := h.write(ctx, conn, msg); err != nil {
				return err
			}
		}
	}
}

func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, h.writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

func (h *Handler) sendSnapshot(ctx context.Context, conn *websocket.Conn) error {
	s := h.snapshots.Snapshot()
	return h.write(ctx, conn, types.StreamMessage{Type: types.StreamMessageSnapshot, Snapshot: &s})
}

func (h *Handler) write(ctx context.Context, conn *websocket.Conn, v interface{}) error {
	writeCtx, cancel := context.WithTimeout(ctx, h.writeTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, v)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
