package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/models"
)

// UpsertFeedback проверяет обмен через check и создает или обновляет отзыв пользователя в одной транзакции.
// Второе значение true, если отзыв был создан
func (s *Store) UpsertFeedback(ctx context.Context, fb *models.Feedback, check func(*models.Barter) error) (*models.Feedback, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, false, mapError(err, nil, "начало транзакции")
	}
	defer tx.Rollback(ctx)

	b, err := scanBarter(tx.QueryRow(ctx, `
		SELECT `+barterColumns+`
		FROM barters WHERE id = $1
		FOR SHARE
	`, fb.BarterID))
	if err != nil {
		return nil, false, mapError(err, apperrors.ErrBarterNotFound, "получение обмена")
	}

	if err := check(b); err != nil {
		return nil, false, err
	}

	// xmax = 0 только у только что вставленной строки
	var created bool
	err = tx.QueryRow(ctx, `
		INSERT INTO feedback (id, barter_id, user_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (barter_id, user_id) DO UPDATE
		SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at, (xmax = 0)
	`, fb.ID, fb.BarterID, fb.UserID, fb.Rating, fb.Comment, fb.UpdatedAt).Scan(
		&fb.ID, &fb.CreatedAt, &fb.UpdatedAt, &created,
	)
	if err != nil {
		return nil, false, mapError(err, nil, "сохранение отзыва")
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, false, mapError(err, nil, "фиксация транзакции")
	}
	return fb, created, nil
}

// GetFeedback получает отзыв пользователя по обмену
func (s *Store) GetFeedback(ctx context.Context, barterID, userID uuid.UUID) (*models.Feedback, error) {
	var fb models.Feedback
	err := s.pool.QueryRow(ctx, `
		SELECT id, barter_id, user_id, rating, comment, created_at, updated_at
		FROM feedback
		WHERE barter_id = $1 AND user_id = $2
	`, barterID, userID).Scan(
		&fb.ID, &fb.BarterID, &fb.UserID, &fb.Rating, &fb.Comment, &fb.CreatedAt, &fb.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, apperrors.ErrFeedbackNotFound, "получение отзыва")
	}
	return &fb, nil
}

// ListFeedbackByBarter возвращает все отзывы по обмену
func (s *Store) ListFeedbackByBarter(ctx context.Context, barterID uuid.UUID) ([]models.Feedback, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, barter_id, user_id, rating, comment, created_at, updated_at
		FROM feedback
		WHERE barter_id = $1
		ORDER BY created_at ASC
	`, barterID)
	if err != nil {
		return nil, mapError(err, nil, "получение отзывов")
	}
	defer rows.Close()

	var items []models.Feedback
	for rows.Next() {
		var fb models.Feedback
		if err := rows.Scan(
			&fb.ID, &fb.BarterID, &fb.UserID, &fb.Rating, &fb.Comment, &fb.CreatedAt, &fb.UpdatedAt,
		); err != nil {
			return nil, mapError(err, nil, "чтение отзыва")
		}
		items = append(items, fb)
	}
	return items, mapError(rows.Err(), nil, "получение отзывов")
}

// RatingSummary считает средний рейтинг по отзывам на обмены, где пользователь - получатель
func (s *Store) RatingSummary(ctx context.Context, userID uuid.UUID) (models.RatingSummary, error) {
	summary := models.RatingSummary{UserID: userID}
	var count int64

	err := s.pool.QueryRow(ctx, `
		SELECT AVG(f.rating), COUNT(f.id)
		FROM feedback f
		JOIN barters b ON b.id = f.barter_id
		WHERE b.user_to_id = $1
	`, userID).Scan(&summary.Average, &count)
	if err != nil {
		return summary, mapError(err, nil, "расчет рейтинга")
	}

	summary.Count = int(count)
	return summary, nil
}
