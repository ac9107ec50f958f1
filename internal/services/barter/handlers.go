package barter

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/db"
	"github.com/rajivgeraev/skillzone-api/internal/middleware"
	"github.com/rajivgeraev/skillzone-api/internal/models"
	"github.com/rajivgeraev/skillzone-api/internal/utils"
	"github.com/rajivgeraev/skillzone-api/internal/validator"
)

// Handler обслуживает HTTP API обменов
type Handler struct {
	svc        *Service
	jwtService *utils.JWTService
	validator  *validator.Validator
}

// NewHandler создает обработчики API обменов
func NewHandler(svc *Service, jwtService *utils.JWTService, v *validator.Validator) *Handler {
	return &Handler{svc: svc, jwtService: jwtService, validator: v}
}

type createBarterRequest struct {
	SkillFromID string `json:"skill_from_id" validate:"required,uuid"`
	SkillToID   string `json:"skill_to_id" validate:"required,uuid"`
	UserToID    string `json:"user_to_id" validate:"required,uuid"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,barter_status"`
}

type respondRequest struct {
	Decision string `json:"decision" validate:"required,decision"`
}

type approveManyRequest struct {
	BarterIDs []string `json:"barter_ids" validate:"required,min=1,dive,uuid"`
}

// CreateBarter создает предложение обмена от имени текущего пользователя
func (h *Handler) CreateBarter(c fiber.Ctx) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	var req createBarterRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	b, err := h.svc.CreateBarter(ctx,
		uuid.MustParse(req.SkillFromID), uuid.MustParse(req.SkillToID), userID, uuid.MustParse(req.UserToID))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"barter":  b,
		"message": "Предложение обмена успешно создано",
	})
}

// GetMyBarters возвращает обмены текущего пользователя
func (h *Handler) GetMyBarters(c fiber.Ctx) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	status, err := statusQuery(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	barters, err := h.svc.ListMyBarters(ctx, userID, c.Query("type", "all"), status)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"barters": barters,
		"count":   len(barters),
	})
}

// GetCompletedBarters возвращает завершенные обмены пользователя с его отзывами
func (h *Handler) GetCompletedBarters(c fiber.Ctx) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	barters, err := h.svc.ListCompletedBarters(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"barters": barters,
		"count":   len(barters),
	})
}

// GetBarter возвращает обмен по ID
func (h *Handler) GetBarter(c fiber.Ctx) error {
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

	b, err := h.svc.GetBarter(ctx, barterID, userID)
	if err != nil {
		return err
	}
	return c.JSON(b)
}

// UpdateBarterStatus переводит обмен в статус из тела запроса
func (h *Handler) UpdateBarterStatus(c fiber.Ctx) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}
	barterID, err := validator.ParamUUID(c, "id")
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	b, err := h.svc.UpdateStatus(ctx, barterID, userID, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "barter": b})
}

// RespondToBarter принимает или отклоняет обмен
func (h *Handler) RespondToBarter(c fiber.Ctx) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}
	barterID, err := validator.ParamUUID(c, "id")
	if err != nil {
		return err
	}

	var req respondRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	b, err := h.svc.RespondToBarter(ctx, barterID, userID, models.Decision(req.Decision))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "barter": b})
}

// ConfirmCompletion подтверждает завершение обмена текущим пользователем
func (h *Handler) ConfirmCompletion(c fiber.Ctx) error {
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

	b, err := h.svc.ConfirmCompletion(ctx, barterID, userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "barter": b})
}

// GetBartersByStatus возвращает обмены в статусе (по умолчанию Pending) для администратора
func (h *Handler) GetBartersByStatus(c fiber.Ctx) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	status := models.BarterPending
	if raw := c.Query("status"); raw != "" {
		parsed, ok := models.ParseBarterStatus(raw)
		if !ok {
			return apperrors.ErrInvalidStatus
		}
		status = parsed
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	barters, err := h.svc.ListBartersByStatus(ctx, userID, status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"barters": barters,
		"count":   len(barters),
	})
}

// ApproveBarter одобряет обмен администратором
func (h *Handler) ApproveBarter(c fiber.Ctx) error {
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

	b, err := h.svc.AdminApprove(ctx, barterID, userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "barter": b})
}

// ApproveBarters одобряет несколько обменов сразу
func (h *Handler) ApproveBarters(c fiber.Ctx) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	var req approveManyRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(req.BarterIDs))
	for _, raw := range req.BarterIDs {
		ids = append(ids, uuid.MustParse(raw))
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	approved, err := h.svc.AdminApproveMany(ctx, userID, ids)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"barters":  approved,
		"approved": len(approved),
	})
}

func statusQuery(c fiber.Ctx) (*models.BarterStatus, error) {
	raw := c.Query("status", "all")
	if raw == "all" {
		return nil, nil
	}
	status, ok := models.ParseBarterStatus(raw)
	if !ok {
		return nil, apperrors.ErrInvalidStatus
	}
	return &status, nil
}
