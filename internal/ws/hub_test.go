package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tasklists/internal/domain"
	"tasklists/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesOnlyOwner(t *testing.T) {
	hub := NewHub()
	a1 := NewClient(1, nil, hub)
	a2 := NewClient(1, nil, hub)
	b := NewClient(2, nil, hub)
	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b)

	n := hub.Publish(1, domain.Event{Type: domain.EventListCreated, ListID: 7})
	assert.Equal(t, 2, n)
	assert.Len(t, a1.Send, 1)
	assert.Len(t, a2.Send, 1)
	assert.Empty(t, b.Send)

	var ev domain.Event
	require.NoError(t, json.Unmarshal(<-a1.Send, &ev))
	assert.Equal(t, domain.EventListCreated, ev.Type)
	assert.Equal(t, int64(7), ev.ListID)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	assert.Equal(t, 0, hub.Publish(99, domain.Event{Type: domain.EventTaskDeleted}))
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	c := NewClient(1, nil, hub)
	hub.Register(c)

	for i := 0; i < sendBuffer; i++ {
		require.Equal(t, 1, hub.Publish(1, domain.Event{Type: domain.EventTaskUpdated}))
	}
	assert.Equal(t, 0, hub.Publish(1, domain.Event{Type: domain.EventTaskUpdated}))
	assert.Equal(t, 0, hub.Connections(1))

	// drain; the channel is closed after the buffered messages
	for range c.Send {
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := NewClient(1, nil, hub)
	hub.Register(c)
	assert.Equal(t, 1, hub.Connections(1))

	hub.Unregister(c)
	hub.Unregister(c)
	assert.Equal(t, 0, hub.Connections(1))

	_, open := <-c.Send
	assert.False(t, open)
}

func TestHubClose(t *testing.T) {
	hub := NewHub()
	hub.Register(NewClient(1, nil, hub))
	hub.Register(NewClient(2, nil, hub))

	hub.Close()
	assert.Equal(t, 0, hub.Connections(1))
	assert.Equal(t, 0, hub.Connections(2))
}

func newWSServer(t *testing.T) (*httptest.Server, *Hub, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth, err := service.NewAuthService("ws-secret")
	require.NoError(t, err)

	hub := NewHub()
	r := gin.New()
	r.GET("/ws", HandleWS(hub, auth, ""))

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return srv, hub, auth
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readType(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var obj map[string]any
	require.NoError(t, json.Unmarshal(msg, &obj))
	return obj
}

func TestHandleWSStreamsOwnEvents(t *testing.T) {
	srv, hub, auth := newWSServer(t)

	tokenA, err := auth.GenerateToken(&domain.User{ID: 1, Email: "a@x.com"})
	require.NoError(t, err)
	tokenB, err := auth.GenerateToken(&domain.User{ID: 2, Email: "b@x.com"})
	require.NoError(t, err)

	connA := dial(t, srv, tokenA)
	connB := dial(t, srv, tokenB)

	// ready is queued after registration
	assert.Equal(t, MsgReady, readType(t, connA)["type"])
	assert.Equal(t, MsgReady, readType(t, connB)["type"])

	hub.Publish(1, domain.Event{Type: domain.EventTaskCreated, ListID: 3, TaskID: 9})

	got := readType(t, connA)
	assert.Equal(t, string(domain.EventTaskCreated), got["type"])
	assert.EqualValues(t, 9, got["task_id"])

	require.NoError(t, connB.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = connB.ReadMessage()
	assert.Error(t, err, "user 2 must not see user 1 events")
}

func TestHandleWSPingPong(t *testing.T) {
	srv, _, auth := newWSServer(t)

	token, err := auth.GenerateToken(&domain.User{ID: 5, Email: "p@x.com"})
	require.NoError(t, err)

	conn := dial(t, srv, token)
	assert.Equal(t, MsgReady, readType(t, conn)["type"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, MsgPong, readType(t, conn)["type"])
}

func TestHandleWSRejectsBadToken(t *testing.T) {
	srv, _, _ := newWSServer(t)

	for _, token := range []string{"", "garbage"} {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}
