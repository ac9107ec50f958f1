package auth

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillzone-api/internal/middleware"
)

// SetupRoutes регистрирует маршруты в Fiber
func (h *Handler) SetupRoutes(app *fiber.App) {
	app.Post("/api/auth/telegram", h.TelegramAuth)
	app.Get("/api/profile", h.Profile, middleware.AuthMiddleware(h.jwtService))
}
