package validator

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/models"
)

// Validator - обертка над go-playground/validator с правилами предметной области
type Validator struct {
	validate *validator.Validate
}

// New создает валидатор. Имена полей в ошибках берутся из json-тегов
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("не удалось зарегистрировать правило %q: %v", tag, err))
		}
	}
	mustRegister("barter_status", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseBarterStatus(fl.Field().String())
		return ok
	})
	mustRegister("decision", func(fl validator.FieldLevel) bool {
		d := models.Decision(fl.Field().String())
		return d == models.DecisionAccept || d == models.DecisionReject
	})

	return &Validator{validate: v}
}

// Validate проверяет структуру и возвращает ошибку валидации приложения
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("field '%s': %s", fe.Field(), errorMessage(fe)))
	}
	sort.Strings(msgs)

	return apperrors.Validation("invalid_request", strings.Join(msgs, "; "))
}

// Bind разбирает тело запроса в dst и проверяет его
func (v *Validator) Bind(c fiber.Ctx, dst interface{}) error {
	if err := c.Bind().Body(dst); err != nil {
		return apperrors.Wrap(err, apperrors.KindValidation, "invalid_body", "invalid request body")
	}
	return v.Validate(dst)
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "barter_status":
		return "must be a valid barter status"
	case "decision":
		return "must be accept or reject"
	default:
		return fmt.Sprintf("invalid value (failed on '%s' tag)", fe.Tag())
	}
}

// ParamUUID читает UUID из параметра маршрута
func ParamUUID(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid_id", fmt.Sprintf("parameter '%s' must be a valid UUID", name))
	}
	return id, nil
}
