package barter

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillzone-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API обменов
func (h *Handler) SetupRoutes(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.jwtService)

	api := app.Group("/api/barters")
	api.Post("/", h.CreateBarter, auth)
	api.Get("/", h.GetMyBarters, auth)
	// /completed регистрируется раньше /:id
	api.Get("/completed", h.GetCompletedBarters, auth)
	api.Get("/:id", h.GetBarter, auth)
	api.Put("/:id/status", h.UpdateBarterStatus, auth)
	api.Post("/:id/respond", h.RespondToBarter, auth)
	api.Post("/:id/complete", h.ConfirmCompletion, auth)

	admin := app.Group("/api/admin/barters")
	admin.Get("/", h.GetBartersByStatus, auth)
	admin.Post("/approve", h.ApproveBarters, auth)
	admin.Post("/:id/approve", h.ApproveBarter, auth)
}
