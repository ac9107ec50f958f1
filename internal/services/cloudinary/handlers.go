package cloudinary

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillzone-api/internal/middleware"
	"github.com/rajivgeraev/skillzone-api/internal/utils"
)

// Handler отдает клиенту параметры загрузки
type Handler struct {
	svc        *CloudinaryService
	jwtService *utils.JWTService
}

// NewHandler создает обработчики API загрузки
func NewHandler(svc *CloudinaryService, jwtService *utils.JWTService) *Handler {
	return &Handler{svc: svc, jwtService: jwtService}
}

// GenerateUploadParams возвращает подписанные параметры для загрузки аватара
func (h *Handler) GenerateUploadParams(c fiber.Ctx) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	params, err := h.svc.UploadParams(userID)
	if err != nil {
		return err
	}
	return c.JSON(params)
}

// SetupRoutes настраивает маршруты для API загрузки
func (h *Handler) SetupRoutes(app *fiber.App) {
	app.Get("/api/upload/params", h.GenerateUploadParams, middleware.AuthMiddleware(h.jwtService))
}
