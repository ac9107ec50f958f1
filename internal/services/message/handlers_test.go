package message

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/skillzone-api/internal/middleware"
	"github.com/rajivgeraev/skillzone-api/internal/utils"
	"github.com/rajivgeraev/skillzone-api/internal/validator"
	"github.com/rajivgeraev/skillzone-api/internal/websocket"
)

func TestMessageEndpoints(t *testing.T) {
	f := newFixture(t)
	jwtService := utils.NewJWTService("test-secret")
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	NewHandler(f.svc, jwtService, validator.New()).SetupRoutes(app)

	aliceToken, err := jwtService.GenerateToken(f.alice.ID)
	require.NoError(t, err)
	bobToken, err := jwtService.GenerateToken(f.bob.ID)
	require.NoError(t, err)

	do := func(method, path, token, body string, out any) int {
		t.Helper()
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		if out != nil {
			data, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(data, out))
		}
		return resp.StatusCode
	}

	toBob := "/api/messages/" + f.bob.ID.String()
	toAlice := "/api/messages/" + f.alice.ID.String()

	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPost, toBob, "", `{"body":"hi"}`, nil))
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, toBob, aliceToken, `{"body":""}`, nil))
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/api/messages/not-a-uuid", aliceToken, `{"body":"hi"}`, nil))

	assert.Equal(t, http.StatusCreated, do(http.MethodPost, toBob, aliceToken, `{"body":"hi bob"}`, nil))
	assert.Equal(t, http.StatusCreated, do(http.MethodPost, toBob, aliceToken, `{"body":"are you free?"}`, nil))

	var inbox Inbox
	require.Equal(t, http.StatusOK, do(http.MethodGet, "/api/messages/inbox", bobToken, "", &inbox))
	require.Len(t, inbox.Messages, 2)
	assert.Equal(t, "are you free?", inbox.Messages[0].Body)
	assert.Equal(t, 2, inbox.Unread)

	var conv Conversation
	require.Equal(t, http.StatusOK, do(http.MethodGet, toAlice, bobToken, "", &conv))
	require.NotNil(t, conv.With)
	assert.Equal(t, f.alice.ID, conv.With.ID)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "hi bob", conv.Messages[0].Body)
	assert.True(t, conv.Messages[0].IsRead)

	inbox = Inbox{}
	require.Equal(t, http.StatusOK, do(http.MethodGet, "/api/messages/inbox", bobToken, "", &inbox))
	assert.Equal(t, 0, inbox.Unread)

	// Алиса узнает о прочтении через websocket
	var read bool
	for _, e := range f.events.events {
		if e.userID == f.alice.ID && e.eventType == websocket.EventMessagesRead {
			read = true
		}
	}
	assert.True(t, read)
}
