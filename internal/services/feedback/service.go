package feedback

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/logger"
	"github.com/rajivgeraev/skillzone-api/internal/metrics"
	"github.com/rajivgeraev/skillzone-api/internal/models"
)

// Repository - хранилище отзывов
type Repository interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetBarter(ctx context.Context, barterID uuid.UUID) (*models.Barter, error)
	UpsertFeedback(ctx context.Context, fb *models.Feedback, check func(*models.Barter) error) (*models.Feedback, bool, error)
	GetFeedback(ctx context.Context, barterID, userID uuid.UUID) (*models.Feedback, error)
	ListFeedbackByBarter(ctx context.Context, barterID uuid.UUID) ([]models.Feedback, error)
	RatingSummary(ctx context.Context, userID uuid.UUID) (models.RatingSummary, error)
}

// Service ведет отзывы по завершенным обменам и считает рейтинг пользователей
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService создает сервис отзывов
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ValidRating сообщает, что оценка конечна и лежит в [0, 5]
func ValidRating(rating float64) bool {
	return !math.IsNaN(rating) && !math.IsInf(rating, 0) &&
		rating >= models.MinRating && rating <= models.MaxRating
}

// eligible проверяет, что пользователь участвовал в обмене и обмен завершен
func eligible(b *models.Barter, userID uuid.UUID) error {
	if !b.IsParticipant(userID) {
		return apperrors.ErrNotParticipant
	}
	if b.Status != models.BarterCompleted {
		return apperrors.ErrNotCompleted
	}
	return nil
}

// SubmitFeedback сохраняет отзыв участника о завершенном обмене.
// Повторный отзыв того же пользователя заменяет оценку и комментарий
func (s *Service) SubmitFeedback(ctx context.Context, barterID, userID uuid.UUID, rating float64, comment string) (*models.Feedback, error) {
	if !ValidRating(rating) {
		return nil, apperrors.ErrInvalidRating
	}

	fb := &models.Feedback{
		ID:        uuid.New(),
		BarterID:  barterID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		UpdatedAt: s.now().UTC(),
	}

	saved, created, err := s.repo.UpsertFeedback(ctx, fb, func(b *models.Barter) error {
		return eligible(b, userID)
	})
	if err != nil {
		return nil, err
	}

	metrics.FeedbackSubmitted(created)
	logger.With(logrus.Fields{
		"barter_id": barterID,
		"user_id":   userID,
		"rating":    rating,
		"created":   created,
	}).Info("Отзыв сохранен")

	return saved, nil
}

// GetMyFeedback возвращает отзыв пользователя по обмену
func (s *Service) GetMyFeedback(ctx context.Context, barterID, userID uuid.UUID) (*models.Feedback, error) {
	return s.repo.GetFeedback(ctx, barterID, userID)
}

// ListBarterFeedback возвращает все отзывы по обмену. Доступно только участникам
func (s *Service) ListBarterFeedback(ctx context.Context, barterID, userID uuid.UUID) ([]models.Feedback, error) {
	b, err := s.repo.GetBarter(ctx, barterID)
	if err != nil {
		return nil, err
	}
	if !b.IsParticipant(userID) {
		return nil, apperrors.ErrNotParticipant
	}
	return s.repo.ListFeedbackByBarter(ctx, barterID)
}

// AverageRating возвращает средний рейтинг по отзывам на обмены, где пользователь - получатель.
// nil, если таких отзывов нет
func (s *Service) AverageRating(ctx context.Context, userID uuid.UUID) (*float64, error) {
	summary, err := s.repo.RatingSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summary.Average, nil
}

// RatingSummary возвращает средний рейтинг и число отзывов существующего пользователя
func (s *Service) RatingSummary(ctx context.Context, userID uuid.UUID) (models.RatingSummary, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return models.RatingSummary{}, err
	}
	return s.repo.RatingSummary(ctx, userID)
}
