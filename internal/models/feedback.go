package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 0.0
	MaxRating = 5.0
)

// Feedback представляет отзыв участника о завершенном обмене
type Feedback struct {
	ID        uuid.UUID `json:"id"`
	BarterID  uuid.UUID `json:"barter_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RatingSummary - агрегированный рейтинг пользователя
type RatingSummary struct {
	UserID  uuid.UUID `json:"user_id"`
	Average *float64  `json:"average_rating"`
	Count   int       `json:"count"`
}
