package cloudinary

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/skillzone-api/internal/config"
	"github.com/rajivgeraev/skillzone-api/internal/middleware"
	"github.com/rajivgeraev/skillzone-api/internal/utils"
)

func testConfig() config.CloudinaryConfig {
	return config.CloudinaryConfig{
		CloudName:    "demo",
		APIKey:       "key",
		APISecret:    "secret",
		UploadPreset: "skillzone",
		UploadFolder: "skillzone/avatars",
	}
}

func fixedService(cfg config.CloudinaryConfig) *CloudinaryService {
	svc := NewCloudinaryService(cfg)
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	return svc
}

func TestUploadParams(t *testing.T) {
	userID := uuid.New()
	svc := fixedService(testConfig())

	params, err := svc.UploadParams(userID)
	require.NoError(t, err)
	assert.Equal(t, "1700000000", params.Timestamp)
	assert.Equal(t, "skillzone/avatars", params.Folder)
	assert.Equal(t, "skillzone", params.UploadPreset)
	assert.Equal(t, "avatar_"+userID.String()+"_1700000000", params.PublicID)
	assert.Equal(t, "key", params.APIKey)
	assert.Equal(t, "demo", params.CloudName)

	_, err = hex.DecodeString(params.Signature)
	assert.NoError(t, err)
	assert.NotEmpty(t, params.Signature)

	again, err := svc.UploadParams(userID)
	require.NoError(t, err)
	assert.Equal(t, params.Signature, again.Signature)

	other := testConfig()
	other.APISecret = "another"
	changed, err := fixedService(other).UploadParams(userID)
	require.NoError(t, err)
	assert.NotEqual(t, params.Signature, changed.Signature)
}

func TestUploadParamsNotConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.APISecret = ""

	_, err := fixedService(cfg).UploadParams(uuid.New())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestUploadParamsEndpoint(t *testing.T) {
	jwtService := utils.NewJWTService("test-secret")
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	NewHandler(fixedService(testConfig()), jwtService).SetupRoutes(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/upload/params", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	userID := uuid.New()
	token, err := jwtService.GenerateToken(userID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/upload/params", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var params UploadParams
	require.NoError(t, json.Unmarshal(data, &params))
	assert.Equal(t, "avatar_"+userID.String()+"_1700000000", params.PublicID)
}
