package models

import (
	"time"

	"github.com/google/uuid"
)

// BarterStatus представляет статус обмена навыками
type BarterStatus string

const (
	BarterPending       BarterStatus = "Pending"
	BarterAdminApproved BarterStatus = "Admin Approved"
	BarterAccepted      BarterStatus = "Accepted"
	BarterRejected      BarterStatus = "Rejected"
	BarterCompleted     BarterStatus = "Completed"
)

// BarterStatuses перечисляет все допустимые статусы в порядке жизненного цикла
var BarterStatuses = []BarterStatus{
	BarterPending,
	BarterAdminApproved,
	BarterAccepted,
	BarterRejected,
	BarterCompleted,
}

// ParseBarterStatus преобразует строку в статус. Второе значение false, если строка неизвестна
func ParseBarterStatus(s string) (BarterStatus, bool) {
	switch BarterStatus(s) {
	case BarterPending, BarterAdminApproved, BarterAccepted, BarterRejected, BarterCompleted:
		return BarterStatus(s), true
	}
	return "", false
}

// IsTerminal сообщает, что из статуса больше нет переходов
func (s BarterStatus) IsTerminal() bool {
	return s == BarterRejected || s == BarterCompleted
}

// Decision - ответ получателя на одобренный обмен
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// Barter представляет предложение обмена навыками между двумя пользователями
type Barter struct {
	ID              uuid.UUID    `json:"id"`
	Status          BarterStatus `json:"status"`
	SkillFromID     uuid.UUID    `json:"skill_from_id"`
	SkillToID       uuid.UUID    `json:"skill_to_id"`
	UserFromID      uuid.UUID    `json:"user_from_id"`
	UserToID        uuid.UUID    `json:"user_to_id"`
	AdminID         *uuid.UUID   `json:"admin_id,omitempty"`
	CompletedByFrom bool         `json:"completed_by_from"`
	CompletedByTo   bool         `json:"completed_by_to"`
	DateRequested   time.Time    `json:"date_requested"`
	DateResponded   *time.Time   `json:"date_responded,omitempty"`

	// Дополнительные поля для API
	SkillFrom  *Skill    `json:"skill_from,omitempty"`
	SkillTo    *Skill    `json:"skill_to,omitempty"`
	UserFrom   *User     `json:"user_from,omitempty"`
	UserTo     *User     `json:"user_to,omitempty"`
	MyFeedback *Feedback `json:"my_feedback,omitempty"`
}

// IsParticipant проверяет, является ли пользователь одной из сторон обмена
func (b *Barter) IsParticipant(userID uuid.UUID) bool {
	return userID == b.UserFromID || userID == b.UserToID
}

// Counterpart возвращает вторую сторону обмена
func (b *Barter) Counterpart(userID uuid.UUID) uuid.UUID {
	if userID == b.UserFromID {
		return b.UserToID
	}
	return b.UserFromID
}

// BarterFilter задает выборку обменов пользователя
type BarterFilter struct {
	UserID uuid.UUID
	Type   string // all, incoming, outgoing
	Status *BarterStatus
}
