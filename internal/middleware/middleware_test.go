package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/utils"
)

func doRequest(t *testing.T, app *fiber.App, path, authorization string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]string{}
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &body))
	}
	return resp.StatusCode, body
}

func TestAuthMiddleware(t *testing.T) {
	jwtService := utils.NewJWTService("test-secret")
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	me := func(c fiber.Ctx) error {
		userID, err := RequireUserID(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": userID.String()})
	}
	// fiber выполняет middleware из хвоста аргументов раньше обработчика
	app.Get("/me", me, AuthMiddleware(jwtService))

	status, body := doRequest(t, app, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Missing authorization header", body["error"])

	status, body = doRequest(t, app, "/me", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid authorization header format", body["error"])

	status, body = doRequest(t, app, "/me", "Bearer broken")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid or expired token", body["error"])

	userID := uuid.New()
	token, err := jwtService.GenerateToken(userID)
	require.NoError(t, err)
	status, body = doRequest(t, app, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, userID.String(), body["id"])
}

func TestOptionalAuth(t *testing.T) {
	jwtService := utils.NewJWTService("test-secret")
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	whoami := func(c fiber.Ctx) error {
		userID, ok := UserID(c)
		if !ok {
			return c.JSON(fiber.Map{"id": "anonymous"})
		}
		return c.JSON(fiber.Map{"id": userID.String()})
	}
	app.Get("/", whoami, OptionalAuth(jwtService))

	_, body := doRequest(t, app, "/", "")
	assert.Equal(t, "anonymous", body["id"])

	_, body = doRequest(t, app, "/", "Bearer broken")
	assert.Equal(t, "anonymous", body["id"])

	userID := uuid.New()
	token, err := jwtService.GenerateToken(userID)
	require.NoError(t, err)
	_, body = doRequest(t, app, "/", "Bearer "+token)
	assert.Equal(t, userID.String(), body["id"])
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/state", func(c fiber.Ctx) error { return apperrors.ErrNotAccepted })
	app.Get("/storage", func(c fiber.Ctx) error { return apperrors.Storage(errors.New("connection reset")) })
	app.Get("/fiber", func(c fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "teapot") })
	app.Get("/plain", func(c fiber.Ctx) error { return errors.New("boom") })

	status, body := doRequest(t, app, "/state", "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "not_accepted", body["code"])
	assert.Equal(t, apperrors.ErrNotAccepted.Message, body["error"])

	// детали сбоя хранилища наружу не попадают
	status, body = doRequest(t, app, "/storage", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "storage_error", body["code"])
	assert.NotContains(t, body["error"], "connection reset")

	status, body = doRequest(t, app, "/fiber", "")
	assert.Equal(t, http.StatusTeapot, status)
	assert.Equal(t, "teapot", body["error"])

	status, _ = doRequest(t, app, "/plain", "")
	assert.Equal(t, http.StatusInternalServerError, status)
}
