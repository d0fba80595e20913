package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NomadCrew/neoevents/config"
	"github.com/NomadCrew/neoevents/logger"
	"github.com/NomadCrew/neoevents/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func init() {
	logger.IsTest = true
	gin.SetMode(gin.TestMode)
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub()
	a := hub.Register(nil)
	b := hub.Register(nil)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, hub.GetConnectionCount())

	hub.BroadcastSnapshot(types.Snapshot{Total: 3})

	for _, c := range []*Connection{a, b} {
		select {
		case msg := <-c.SendChannel():
			assert.Equal(t, types.StreamMessageSnapshot, msg.Type)
			require.NotNil(t, msg.Snapshot)
			assert.Equal(t, 3, msg.Snapshot.Total)
		default:
			t.Fatal("expected a queued snapshot")
		}
	}
}

func TestHub_Alert(t *testing.T) {
	hub := NewHub()
	c := hub.Register(nil)

	hub.Alert(context.Background(), "no location")

	msg := <-c.SendChannel()
	assert.Equal(t, types.StreamMessageAlert, msg.Type)
	assert.Equal(t, "no location", msg.Alert)
}

func TestHub_FullBufferDropsMessage(t *testing.T) {
	hub := NewHub(HubConfig{SendBuffer: 1})
	c := hub.Register(nil)

	hub.Alert(context.Background(), "first")
	hub.Alert(context.Background(), "second")

	assert.Equal(t, "first", (<-c.SendChannel()).Alert)
	select {
	case msg := <-c.SendChannel():
		t.Fatalf("unexpected message %v", msg)
	default:
	}
}

func TestHub_UnregisterClosesChannel(t *testing.T) {
	hub := NewHub()
	c := hub.Register(nil)

	hub.Unregister(c.ID)
	hub.Unregister(c.ID)

	assert.True(t, c.IsClosed())
	assert.Equal(t, 0, hub.GetConnectionCount())
	_, ok := <-c.SendChannel()
	assert.False(t, ok)

	hub.Alert(context.Background(), "after close")
}

func TestHub_Shutdown(t *testing.T) {
	hub := NewHub()
	a := hub.Register(nil)
	b := hub.Register(nil)

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))

	assert.True(t, a.IsClosed())
	assert.True(t, b.IsClosed())
	assert.Equal(t, 0, hub.GetConnectionCount())
}

type staticSnapshots struct {
	snap types.Snapshot
}

func (s staticSnapshots) Snapshot() types.Snapshot { return s.snap }

func TestHandler_StreamsSnapshots(t *testing.T) {
	hub := NewHub()
	user := types.Coordinates{Lat: 43.26, Lng: -2.93}
	h := NewHandler(hub, staticSnapshots{snap: types.Snapshot{User: &user, Filter: types.FilterAll, Total: 0}},
		&config.ServerConfig{Environment: config.EnvDevelopment})

	r := gin.New()
	r.GET("/v1/ws", h.HandleWebSocket)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/v1/ws", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	var first types.StreamMessage
	require.NoError(t, wsjson.Read(ctx, conn, &first))
	assert.Equal(t, types.StreamMessageSnapshot, first.Type)
	require.NotNil(t, first.Snapshot)
	assert.Equal(t, user, *first.Snapshot.User)

	require.Eventually(t, func() bool { return hub.GetConnectionCount() == 1 }, time.Second, 10*time.Millisecond)
	hub.Alert(ctx, "location denied")

	var alert types.StreamMessage
	require.NoError(t, wsjson.Read(ctx, conn, &alert))
	assert.Equal(t, types.StreamMessageAlert, alert.Type)
	assert.Equal(t, "location denied", alert.Alert)

	require.NoError(t, wsjson.Write(ctx, conn, ClientMessage{Type: MessageTypePing}))
	var pong map[string]string
	require.NoError(t, wsjson.Read(ctx, conn, &pong))
	assert.Equal(t, MessageTypePong, pong["type"])
}
