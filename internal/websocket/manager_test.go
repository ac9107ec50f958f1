package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/skillzone-api/internal/utils"
)

func dial(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func newTestServer(t *testing.T) (*Manager, *utils.JWTService, *httptest.Server) {
	t.Helper()
	jwtService := utils.NewJWTService("secret")
	manager := NewManager()
	srv := httptest.NewServer(manager.NewServer("", jwtService).Handler)
	t.Cleanup(func() {
		manager.Shutdown()
		srv.Close()
	})
	return manager, jwtService, srv
}

func TestServeWSRejectsInvalidToken(t *testing.T) {
	_, _, srv := newTestServer(t)

	_, resp, err := dial(t, srv, "garbage")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPublishDeliversToUserConnections(t *testing.T) {
	manager, jwtService, srv := newTestServer(t)
	userID := uuid.New()
	token, err := jwtService.GenerateToken(userID)
	require.NoError(t, err)

	conn, _, err := dial(t, srv, token)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, EventConnected, readEvent(t, conn).Type)
	assert.True(t, manager.Connected(userID))

	manager.Publish(uuid.New(), EventNewMessage, map[string]string{"body": "not for you"})
	manager.Publish(userID, EventBarterUpdated, map[string]string{"status": "Accepted"})

	event := readEvent(t, conn)
	assert.Equal(t, EventBarterUpdated, event.Type)
	assert.Equal(t, userID.String(), event.UserID)
	assert.JSONEq(t, `{"status":"Accepted"}`, string(event.Payload))
}

func TestPingGetsPong(t *testing.T) {
	_, jwtService, srv := newTestServer(t)
	token, err := jwtService.GenerateToken(uuid.New())
	require.NoError(t, err)

	conn, _, err := dial(t, srv, token)
	require.NoError(t, err)
	defer conn.Close()
	readEvent(t, conn)

	require.NoError(t, conn.WriteJSON(Event{Type: EventPing}))
	assert.Equal(t, EventPong, readEvent(t, conn).Type)
}

func TestDisconnectRemovesClient(t *testing.T) {
	manager, jwtService, srv := newTestServer(t)
	userID := uuid.New()
	token, err := jwtService.GenerateToken(userID)
	require.NoError(t, err)

	conn, _, err := dial(t, srv, token)
	require.NoError(t, err)
	readEvent(t, conn)
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return !manager.Connected(userID) }, 2*time.Second, 10*time.Millisecond)
}
