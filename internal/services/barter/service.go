package barter

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/logger"
	"github.com/rajivgeraev/skillzone-api/internal/metrics"
	"github.com/rajivgeraev/skillzone-api/internal/models"
	"github.com/rajivgeraev/skillzone-api/internal/websocket"
)

// Repository - хранилище, необходимое сервису обменов
type Repository interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetSkill(ctx context.Context, skillID uuid.UUID) (*models.Skill, error)
	CreateBarter(ctx context.Context, b *models.Barter) error
	GetBarter(ctx context.Context, barterID uuid.UUID) (*models.Barter, error)
	UpdateBarter(ctx context.Context, barterID uuid.UUID, mutate func(*models.Barter) error) (*models.Barter, error)
	ListBarters(ctx context.Context, filter models.BarterFilter) ([]models.Barter, error)
	ListBartersByStatus(ctx context.Context, status models.BarterStatus) ([]models.Barter, error)
	GetFeedback(ctx context.Context, barterID, userID uuid.UUID) (*models.Feedback, error)
}

// Publisher доставляет события пользователям в реальном времени
type Publisher interface {
	Publish(userID uuid.UUID, eventType websocket.EventType, payload any)
}

// Service реализует жизненный цикл обмена навыками
type Service struct {
	repo   Repository
	events Publisher
	now    func() time.Time
}

// NewService создает сервис обменов. events может быть nil
func NewService(repo Repository, events Publisher) *Service {
	return &Service{repo: repo, events: events, now: time.Now}
}

func (s *Service) notify(b *models.Barter) {
	metrics.BarterTransition(string(b.Status))
	if s.events == nil {
		return
	}
	s.events.Publish(b.UserFromID, websocket.EventBarterUpdated, b)
	s.events.Publish(b.UserToID, websocket.EventBarterUpdated, b)
}

// requireAdmin проверяет, что пользователь существует и является администратором
func (s *Service) requireAdmin(ctx context.Context, userID uuid.UUID) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return apperrors.ErrNotAdmin
		}
		return err
	}
	if !user.IsAdmin {
		return apperrors.ErrNotAdmin
	}
	return nil
}

// CreateBarter создает предложение обмена навыка skillFrom (владелец userFrom) на навык skillTo (владелец userTo)
func (s *Service) CreateBarter(ctx context.Context, skillFromID, skillToID, userFromID, userToID uuid.UUID) (*models.Barter, error) {
	if userFromID == userToID {
		return nil, apperrors.ErrSelfBarter
	}

	for _, userID := range []uuid.UUID{userFromID, userToID} {
		if _, err := s.repo.GetUser(ctx, userID); err != nil {
			return nil, err
		}
	}

	skillFrom, err := s.repo.GetSkill(ctx, skillFromID)
	if err != nil {
		return nil, err
	}
	skillTo, err := s.repo.GetSkill(ctx, skillToID)
	if err != nil {
		return nil, err
	}
	if !skillFrom.OwnedBy(userFromID) || !skillTo.OwnedBy(userToID) {
		return nil, apperrors.ErrSkillOwnership
	}

	b := &models.Barter{
		ID:            uuid.New(),
		Status:        models.BarterPending,
		SkillFromID:   skillFromID,
		SkillToID:     skillToID,
		UserFromID:    userFromID,
		UserToID:      userToID,
		DateRequested: s.now().UTC(),
	}
	if err := s.repo.CreateBarter(ctx, b); err != nil {
		return nil, err
	}

	logger.With(logrus.Fields{
		"barter_id": b.ID,
		"user_from": userFromID,
		"user_to":   userToID,
	}).Info("Создано предложение обмена")

	metrics.BarterTransition(string(b.Status))
	b.SkillFrom, b.SkillTo = skillFrom, skillTo
	return b, nil
}

// AdminApprove одобряет обмен в статусе Pending
func (s *Service) AdminApprove(ctx context.Context, barterID, adminID uuid.UUID) (*models.Barter, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	b, err := s.repo.UpdateBarter(ctx, barterID, func(b *models.Barter) error {
		return approve(b, adminID, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}

	logger.With(logrus.Fields{"barter_id": b.ID, "admin_id": adminID}).Info("Обмен одобрен администратором")
	s.notify(b)
	return b, nil
}

// AdminApproveMany одобряет несколько обменов. Обмены не в статусе Pending пропускаются
func (s *Service) AdminApproveMany(ctx context.Context, adminID uuid.UUID, barterIDs []uuid.UUID) ([]models.Barter, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	approved := make([]models.Barter, 0, len(barterIDs))
	for _, id := range barterIDs {
		b, err := s.repo.UpdateBarter(ctx, id, func(b *models.Barter) error {
			return approve(b, adminID, s.now().UTC())
		})
		switch {
		case err == nil:
			s.notify(b)
			approved = append(approved, *b)
		case errors.Is(err, apperrors.ErrNotPending), errors.Is(err, apperrors.ErrBarterNotFound):
			logger.With(logrus.Fields{"barter_id": id}).Debug("Обмен пропущен при массовом одобрении")
		default:
			return approved, err
		}
	}

	logger.With(logrus.Fields{"admin_id": adminID, "count": len(approved)}).Info("Массовое одобрение обменов")
	return approved, nil
}

// RespondToBarter принимает или отклоняет одобренный обмен от имени получателя
func (s *Service) RespondToBarter(ctx context.Context, barterID, actorID uuid.UUID, decision models.Decision) (*models.Barter, error) {
	if decision != models.DecisionAccept && decision != models.DecisionReject {
		return nil, apperrors.ErrInvalidDecision
	}

	b, err := s.repo.UpdateBarter(ctx, barterID, func(b *models.Barter) error {
		return respond(b, actorID, decision, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}

	logger.With(logrus.Fields{"barter_id": b.ID, "status": b.Status}).Info("Получатель ответил на обмен")
	s.notify(b)
	return b, nil
}

// ConfirmCompletion фиксирует подтверждение завершения от участника.
// Обмен становится Completed, когда подтвердили обе стороны
func (s *Service) ConfirmCompletion(ctx context.Context, barterID, actorID uuid.UUID) (*models.Barter, error) {
	var changed bool
	b, err := s.repo.UpdateBarter(ctx, barterID, func(b *models.Barter) error {
		var err error
		changed, err = confirm(b, actorID, s.now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		logger.With(logrus.Fields{
			"barter_id":         b.ID,
			"user_id":           actorID,
			"completed_by_from": b.CompletedByFrom,
			"completed_by_to":   b.CompletedByTo,
			"status":            b.Status,
		}).Info("Подтверждение завершения обмена")
		s.notify(b)
	}
	return b, nil
}

// UpdateStatus переводит обмен в статус, заданный строкой, вызывая соответствующую операцию
func (s *Service) UpdateStatus(ctx context.Context, barterID, actorID uuid.UUID, status string) (*models.Barter, error) {
	target, ok := models.ParseBarterStatus(status)
	if !ok {
		return nil, apperrors.ErrInvalidStatus
	}

	switch target {
	case models.BarterPending:
		return nil, apperrors.ErrCannotReturnToPend
	case models.BarterAdminApproved:
		return s.AdminApprove(ctx, barterID, actorID)
	case models.BarterAccepted:
		return s.RespondToBarter(ctx, barterID, actorID, models.DecisionAccept)
	case models.BarterRejected:
		return s.RespondToBarter(ctx, barterID, actorID, models.DecisionReject)
	case models.BarterCompleted:
		return s.ConfirmCompletion(ctx, barterID, actorID)
	}
	return nil, apperrors.ErrInvalidStatus
}

// GetBarter возвращает обмен участнику или администратору
func (s *Service) GetBarter(ctx context.Context, barterID, actorID uuid.UUID) (*models.Barter, error) {
	b, err := s.repo.GetBarter(ctx, barterID)
	if err != nil {
		return nil, err
	}

	if !b.IsParticipant(actorID) {
		if err := s.requireAdmin(ctx, actorID); err != nil {
			return nil, apperrors.ErrNotParticipant
		}
	}

	s.enrich(ctx, b)
	return b, nil
}

// ListMyBarters возвращает обмены пользователя. kind - all, incoming или outgoing
func (s *Service) ListMyBarters(ctx context.Context, userID uuid.UUID, kind string, status *models.BarterStatus) ([]models.Barter, error) {
	switch kind {
	case "", "all":
		kind = "all"
	case "incoming", "outgoing":
	default:
		return nil, apperrors.Validation("invalid_type", "type must be all, incoming or outgoing")
	}

	barters, err := s.repo.ListBarters(ctx, models.BarterFilter{UserID: userID, Type: kind, Status: status})
	if err != nil {
		return nil, err
	}
	for i := range barters {
		s.enrich(ctx, &barters[i])
	}
	return barters, nil
}

// ListCompletedBarters возвращает завершенные обмены пользователя вместе с его отзывами
func (s *Service) ListCompletedBarters(ctx context.Context, userID uuid.UUID) ([]models.Barter, error) {
	completed := models.BarterCompleted
	barters, err := s.ListMyBarters(ctx, userID, "all", &completed)
	if err != nil {
		return nil, err
	}

	for i := range barters {
		fb, err := s.repo.GetFeedback(ctx, barters[i].ID, userID)
		switch {
		case err == nil:
			barters[i].MyFeedback = fb
		case apperrors.IsKind(err, apperrors.KindNotFound):
		default:
			return nil, err
		}
	}
	return barters, nil
}

// ListBartersByStatus возвращает все обмены в статусе. Доступно только администраторам
func (s *Service) ListBartersByStatus(ctx context.Context, actorID uuid.UUID, status models.BarterStatus) ([]models.Barter, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	barters, err := s.repo.ListBartersByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	for i := range barters {
		s.enrich(ctx, &barters[i])
	}
	return barters, nil
}

// enrich подгружает навыки и пользователей обмена. Ошибки не прерывают ответ
func (s *Service) enrich(ctx context.Context, b *models.Barter) {
	if skill, err := s.repo.GetSkill(ctx, b.SkillFromID); err == nil {
		b.SkillFrom = skill
	}
	if skill, err := s.repo.GetSkill(ctx, b.SkillToID); err == nil {
		b.SkillTo = skill
	}
	if user, err := s.repo.GetUser(ctx, b.UserFromID); err == nil {
		b.UserFrom = user
	}
	if user, err := s.repo.GetUser(ctx, b.UserToID); err == nil {
		b.UserTo = user
	} else {
		logger.WithError(err).WithField("barter_id", b.ID).Debug("Не удалось загрузить участника обмена")
	}
}
