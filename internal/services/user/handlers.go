package user

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillzone-api/internal/db"
	"github.com/rajivgeraev/skillzone-api/internal/validator"
)

// Handler обслуживает публичное API пользователей
type Handler struct {
	svc *Service
}

// NewHandler создает обработчики API пользователей
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GetUsers ищет пользователей по параметру q
func (h *Handler) GetUsers(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	users, err := h.svc.ListUsers(ctx, c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"users": users,
		"count": len(users),
	})
}

// GetUser возвращает карточку пользователя
func (h *Handler) GetUser(c fiber.Ctx) error {
	userID, err := validator.ParamUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	detail, err := h.svc.GetUserDetail(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(detail)
}

// SetupRoutes настраивает публичные маршруты пользователей
func (h *Handler) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/users")
	api.Get("/", h.GetUsers)
	api.Get("/:id", h.GetUser)
}
