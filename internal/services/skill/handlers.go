package skill

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/skillzone-api/internal/db"
	"github.com/rajivgeraev/skillzone-api/internal/middleware"
	"github.com/rajivgeraev/skillzone-api/internal/utils"
	"github.com/rajivgeraev/skillzone-api/internal/validator"
)

// Handler обслуживает HTTP API навыков
type Handler struct {
	svc        *Service
	jwtService *utils.JWTService
	validator  *validator.Validator
}

// NewHandler создает обработчики API навыков
func NewHandler(svc *Service, jwtService *utils.JWTService, v *validator.Validator) *Handler {
	return &Handler{svc: svc, jwtService: jwtService, validator: v}
}

type addSkillRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"max=1000"`
}

// GetSkills ищет навыки по параметру q
func (h *Handler) GetSkills(c fiber.Ctx) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	var viewer *uuid.UUID
	if userID, ok := middleware.UserID(c); ok {
		viewer = &userID
	}

	catalog, err := h.svc.ListSkills(ctx, viewer, c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(catalog)
}

// AddSkill добавляет навык текущему пользователю
func (h *Handler) AddSkill(c fiber.Ctx) error {
	userID, err := middleware.RequireUserID(c)
	if err != nil {
		return err
	}

	var req addSkillRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	skill, err := h.svc.AddSkill(ctx, userID, req.Name, req.Description)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"skill":   skill,
		"message": "Навык добавлен",
	})
}
