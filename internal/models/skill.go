package models

import (
	"time"

	"github.com/google/uuid"
)

// SkillNameMaxLength - максимальная длина названия навыка
const SkillNameMaxLength = 25

// Skill представляет навык, который пользователь может преподать
type Skill struct {
	ID          uuid.UUID  `json:"id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	// Дополнительные поля для API
	Owner *User `json:"owner,omitempty"`
}

// OwnedBy проверяет владельца навыка. Навыки без владельца не принадлежат никому
func (s *Skill) OwnedBy(userID uuid.UUID) bool {
	return s.UserID != nil && *s.UserID == userID
}
