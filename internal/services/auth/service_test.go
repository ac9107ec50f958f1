package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/config"
	"github.com/rajivgeraev/skillzone-api/internal/db/memory"
	"github.com/rajivgeraev/skillzone-api/internal/middleware"
	"github.com/rajivgeraev/skillzone-api/internal/utils"
	"github.com/rajivgeraev/skillzone-api/internal/validator"
)

func newService(t *testing.T, admins ...int64) (*Service, *utils.JWTService) {
	t.Helper()
	cfg := &config.Config{
		AppEnv:           "production",
		TelegramBotToken: "bot-token",
		JWTSecret:        "test-secret",
		AdminTelegramIDs: admins,
	}
	jwtService := utils.NewJWTService(cfg.JWTSecret)
	return NewService(cfg, memory.New(), jwtService), jwtService
}

// stubInitData подменяет проверку подписи заранее разобранными данными
func stubInitData(svc *Service, user initdata.User) {
	svc.verify = func(raw string) (initdata.InitData, error) {
		if raw == "bad" {
			return initdata.InitData{}, ErrInvalidInitData
		}
		return initdata.InitData{User: user}, nil
	}
}

func TestLoginRejectsUnsignedInitData(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "query_id=1&hash=abc")
	assert.ErrorIs(t, err, ErrInvalidInitData)

	_, err = svc.Login(ctx, "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestLoginCreatesUserOnce(t *testing.T) {
	svc, jwtService := newService(t)
	stubInitData(svc, initdata.User{ID: 7, FirstName: "Bob", LastName: "Stone", Username: "bob"})
	ctx := context.Background()

	first, err := svc.Login(ctx, "ok")
	require.NoError(t, err)
	assert.Equal(t, "Bob Stone", first.User.FullName)
	assert.False(t, first.User.IsAdmin)

	userID, err := jwtService.ExtractUserID(first.Token)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, userID)

	second, err := svc.Login(ctx, "ok")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	me, err := svc.Me(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "bob", me.Username)
}

func TestLoginGrantsAdmin(t *testing.T) {
	svc, _ := newService(t, 42)
	stubInitData(svc, initdata.User{ID: 42, FirstName: "Root"})

	session, err := svc.Login(context.Background(), "ok")
	require.NoError(t, err)
	assert.True(t, session.User.IsAdmin)
}

func TestLoginRequiresTelegramUser(t *testing.T) {
	svc, _ := newService(t)
	stubInitData(svc, initdata.User{})

	_, err := svc.Login(context.Background(), "ok")
	assert.ErrorIs(t, err, ErrInvalidInitData)
}

func TestAuthEndpoints(t *testing.T) {
	svc, jwtService := newService(t)
	stubInitData(svc, initdata.User{ID: 7, FirstName: "Bob", Username: "bob"})
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	NewHandler(svc, jwtService, validator.New()).SetupRoutes(app)

	post := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/telegram", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	assert.Equal(t, http.StatusBadRequest, post(`{}`).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, post(`{"init_data":"bad"}`).StatusCode)

	resp := post(`{"init_data":"ok"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var session Session
	require.NoError(t, json.Unmarshal(data, &session))
	require.NotEmpty(t, session.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
