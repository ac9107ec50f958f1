package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/skillzone-api/internal/utils"
)

const userIDKey = "userID"

// bearerToken извлекает токен из заголовка Authorization
func bearerToken(c fiber.Ctx) (string, bool) {
	parts := strings.Split(c.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware создаёт middleware для проверки JWT
func AuthMiddleware(jwtService *utils.JWTService) fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		userID, err := jwtService.ExtractUserID(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		// Добавляем userID в контекст
		c.Locals(userIDKey, userID.String())

		return c.Next()
	}
}

// OptionalAuth добавляет userID в контекст, если передан валидный токен, и пропускает запрос без него
func OptionalAuth(jwtService *utils.JWTService) fiber.Handler {
	return func(c fiber.Ctx) error {
		if tokenString, ok := bearerToken(c); ok {
			if userID, err := jwtService.ExtractUserID(tokenString); err == nil {
				c.Locals(userIDKey, userID.String())
			}
		}
		return c.Next()
	}
}

// UserID возвращает ID авторизованного пользователя из контекста запроса
func UserID(c fiber.Ctx) (uuid.UUID, bool) {
	raw, ok := c.Locals(userIDKey).(string)
	if !ok || raw == "" {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// RequireUserID возвращает ID пользователя или ошибку 401
func RequireUserID(c fiber.Ctx) (uuid.UUID, error) {
	userID, ok := UserID(c)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Пользователь не авторизован")
	}
	return userID, nil
}
