package message

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillzone-api/internal/db"
	"github.com/rajivgeraev/skillzone-api/internal/middleware"
	"github.com/rajivgeraev/skillzone-api/internal/utils"
	"github.com/rajivgeraev/skillzone-api/internal/validator"
)

// Handler обслуживает HTTP API сообщений
type Handler struct {
	svc        *Service
	jwtService *utils.JWTService
	validator  *validator.Validator
}

// NewHandler создает обработчики API сообщений
func NewHandler(svc *Service, jwtService *utils.JWTService, v *validator.Validator) *Handler {
	return &Handler{svc: svc, jwtService: jwtService, validator: v}
}

type sendRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}

// GetInbox возвращает входящие сообщения
func (h *Handler) GetInbox(c fiber.Ctx) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	inbox, err := h.svc.Inbox(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(inbox)
}

// GetConversation возвращает переписку с пользователем
func (h *Handler) GetConversation(c fiber.Ctx) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}
	otherID, err := validator.ParamUUID(c, "userId")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	conv, err := h.svc.Conversation(ctx, userID, otherID)
	if err != nil {
		return err
	}
	return c.JSON(conv)
}

// SendMessage отправляет сообщение пользователю
func (h *Handler) SendMessage(c fiber.Ctx) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}
	recipientID, err := validator.ParamUUID(c, "userId")
	if err != nil {
		return err
	}

	var req sendRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	m, err := h.svc.SendMessage(ctx, userID, recipientID, req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": m,
	})
}

// SetupRoutes настраивает маршруты для API сообщений
func (h *Handler) SetupRoutes(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.jwtService)

	api := app.Group("/api/messages")
	api.Get("/inbox", h.GetInbox, auth)
	api.Get("/:userId", h.GetConversation, auth)
	api.Post("/:userId", h.SendMessage, auth)
}
