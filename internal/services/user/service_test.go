package user

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/db/memory"
	"github.com/rajivgeraev/skillzone-api/internal/middleware"
	"github.com/rajivgeraev/skillzone-api/internal/models"
)

func seed(t *testing.T) (*memory.Store, models.User, models.User) {
	t.Helper()
	store := memory.New()
	alice := models.User{ID: uuid.New(), Username: "alice", FullName: "Alice Smith"}
	bob := models.User{ID: uuid.New(), Username: "bob", FullName: "Bob Stone"}
	store.PutUser(alice)
	store.PutUser(bob)

	skill := models.Skill{ID: uuid.New(), UserID: &bob.ID, Name: "Woodworking"}
	require.NoError(t, store.CreateSkill(context.Background(), &skill))
	return store, alice, bob
}

func TestListUsers(t *testing.T) {
	store, _, bob := seed(t)
	svc := NewService(store)
	ctx := context.Background()

	users, err := svc.ListUsers(ctx, "wood")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, bob.ID, users[0].ID)

	users, err = svc.ListUsers(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	users, err = svc.ListUsers(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestGetUserDetail(t *testing.T) {
	store, alice, bob := seed(t)
	svc := NewService(store)
	ctx := context.Background()

	detail, err := svc.GetUserDetail(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", detail.User.Username)
	require.Len(t, detail.Skills, 1)
	assert.Equal(t, "Woodworking", detail.Skills[0].Name)
	assert.Nil(t, detail.Rating.Average)

	detail, err = svc.GetUserDetail(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Skills)

	_, err = svc.GetUserDetail(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserEndpoints(t *testing.T) {
	store, _, bob := seed(t)
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	NewHandler(NewService(store)).SetupRoutes(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/users?q=stone", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var list struct {
		Users []models.User `json:"users"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Equal(t, 1, list.Count)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/users/"+bob.ID.String(), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	var detail Detail
	require.NoError(t, json.Unmarshal(data, &detail))
	assert.Equal(t, bob.ID, detail.User.ID)
	assert.Len(t, detail.Skills, 1)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/users/"+uuid.NewString(), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
