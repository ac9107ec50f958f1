package auth

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillzone-api/internal/db"
	"github.com/rajivgeraev/skillzone-api/internal/middleware"
	"github.com/rajivgeraev/skillzone-api/internal/utils"
	"github.com/rajivgeraev/skillzone-api/internal/validator"
)

// Handler обслуживает HTTP API авторизации
type Handler struct {
	svc        *Service
	jwtService *utils.JWTService
	validator  *validator.Validator
}

// NewHandler создает обработчики API авторизации
func NewHandler(svc *Service, jwtService *utils.JWTService, v *validator.Validator) *Handler {
	return &Handler{svc: svc, jwtService: jwtService, validator: v}
}

type telegramAuthRequest struct {
	InitData string `json:"init_data" validate:"required"`
}

// TelegramAuth проверяет initData, создает JWT и возвращает его
func (h *Handler) TelegramAuth(c fiber.Ctx) error {
	var req telegramAuthRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	session, err := h.svc.Login(ctx, req.InitData)
	if errors.Is(err, ErrInvalidInitData) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid Telegram data"})
	}
	if err != nil {
		return err
	}
	return c.JSON(session)
}

// Profile возвращает профиль текущего пользователя
func (h *Handler) Profile(c fiber.Ctx) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	user, err := h.svc.Me(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}
