package feedback

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillzone-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для отзывов и рейтинга
func (h *Handler) SetupRoutes(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.jwtService)

	app.Post("/api/barters/:id/feedback", h.SubmitFeedback, auth)
	app.Get("/api/barters/:id/feedback", h.GetBarterFeedback, auth)

	// Публичный маршрут
	app.Get("/api/users/:id/rating", h.GetUserRating)
}
