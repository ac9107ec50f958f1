package barter

import (
	"time"

	"github.com/google/uuid"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/models"
)

// Функции переходов меняют обмен только при успехе. При ошибке обмен остается прежним

func setStatus(b *models.Barter, status models.BarterStatus, now time.Time) {
	b.Status = status
	b.DateResponded = &now
}

// approve переводит обмен из Pending в Admin Approved
func approve(b *models.Barter, adminID uuid.UUID, now time.Time) error {
	if b.Status != models.BarterPending {
		return apperrors.ErrNotPending
	}
	b.AdminID = &adminID
	setStatus(b, models.BarterAdminApproved, now)
	return nil
}

// respond применяет решение получателя к одобренному обмену
func respond(b *models.Barter, actorID uuid.UUID, decision models.Decision, now time.Time) error {
	var target models.BarterStatus
	switch decision {
	case models.DecisionAccept:
		target = models.BarterAccepted
	case models.DecisionReject:
		target = models.BarterRejected
	default:
		return apperrors.ErrInvalidDecision
	}

	if actorID != b.UserToID {
		return apperrors.ErrNotReceiver
	}
	if b.Status != models.BarterAdminApproved {
		return apperrors.ErrNotAdminApproved
	}

	setStatus(b, target, now)
	return nil
}

// confirm отмечает подтверждение завершения одной из сторон.
// Когда подтвердили обе стороны, обмен становится Completed. Возвращает false, если ничего не изменилось
func confirm(b *models.Barter, actorID uuid.UUID, now time.Time) (bool, error) {
	if !b.IsParticipant(actorID) {
		return false, apperrors.ErrNotParticipant
	}

	switch b.Status {
	case models.BarterCompleted:
		return false, nil
	case models.BarterAccepted:
	case models.BarterPending, models.BarterAdminApproved, models.BarterRejected:
		return false, apperrors.ErrNotAccepted
	default:
		return false, apperrors.ErrInvalidStatus
	}

	changed := false
	if actorID == b.UserFromID && !b.CompletedByFrom {
		b.CompletedByFrom = true
		changed = true
	}
	if actorID == b.UserToID && !b.CompletedByTo {
		b.CompletedByTo = true
		changed = true
	}

	if b.CompletedByFrom && b.CompletedByTo {
		setStatus(b, models.BarterCompleted, now)
		changed = true
	}
	return changed, nil
}
