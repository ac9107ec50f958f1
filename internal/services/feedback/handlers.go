package feedback

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/db"
	"github.com/rajivgeraev/skillzone-api/internal/middleware"
	"github.com/rajivgeraev/skillzone-api/internal/utils"
	"github.com/rajivgeraev/skillzone-api/internal/validator"
)

// Handler обслуживает HTTP API отзывов и рейтинга
type Handler struct {
	svc        *Service
	jwtService *utils.JWTService
	validator  *validator.Validator
}

// NewHandler создает обработчики API отзывов
func NewHandler(svc *Service, jwtService *utils.JWTService, v *validator.Validator) *Handler {
	return &Handler{svc: svc, jwtService: jwtService, validator: v}
}

type submitRequest struct {
	Rating  *float64 `json:"rating" validate:"required"`
	Comment string   `json:"comment" validate:"max=2000"`
}

// SubmitFeedback сохраняет отзыв текущего пользователя
func (h *Handler) SubmitFeedback(c fiber.Ctx) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}
	barterID, err := validator.ParamUUID(c, "id")
	if err != nil {
		return err
	}

	var req submitRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	fb, err := h.svc.SubmitFeedback(ctx, barterID, userID, *req.Rating, req.Comment)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"feedback": fb,
		"message":  "Отзыв сохранен",
	})
}

// GetBarterFeedback возвращает отзывы по обмену и отзыв текущего пользователя
func (h *Handler) GetBarterFeedback(c fiber.Ctx) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}
	barterID, err := validator.ParamUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	items, err := h.svc.ListBarterFeedback(ctx, barterID, userID)
	if err != nil {
		return err
	}

	mine, err := h.svc.GetMyFeedback(ctx, barterID, userID)
	if err != nil && !apperrors.IsKind(err, apperrors.KindNotFound) {
		return err
	}

	return c.JSON(fiber.Map{
		"feedback":    items,
		"my_feedback": mine,
		"count":       len(items),
	})
}

// GetUserRating возвращает рейтинг пользователя
func (h *Handler) GetUserRating(c fiber.Ctx) error {
	userID, err := validator.ParamUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	summary, err := h.svc.RatingSummary(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(summary)
}
