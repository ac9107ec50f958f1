package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/logger"
)

// ErrorHandler отдает ошибки приложения в виде {"error": ..., "code": ...} с подходящим HTTP-статусом
func ErrorHandler(c fiber.Ctx, err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		status := appErr.Kind.HTTPStatus()
		if status >= fiber.StatusInternalServerError {
			logger.With(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).WithError(err).Error("Ошибка обработки запроса")
			return c.Status(status).JSON(fiber.Map{"error": "Внутренняя ошибка сервера", "code": appErr.Code})
		}
		return c.Status(status).JSON(fiber.Map{"error": appErr.Message, "code": appErr.Code})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	logger.With(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).WithError(err).Error("Необработанная ошибка")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Внутренняя ошибка сервера"})
}
