package skill

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillzone-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API навыков
func (h *Handler) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/skills")

	// Список доступен без авторизации, но с токеном свои навыки возвращаются отдельно
	api.Get("/", h.GetSkills, middleware.OptionalAuth(h.jwtService))
	api.Post("/", h.AddSkill, middleware.AuthMiddleware(h.jwtService))
}
