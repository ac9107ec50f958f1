package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/models"
)

const barterColumns = `id, status, skill_from_id, skill_to_id, user_from_id, user_to_id, admin_id,
	completed_by_from, completed_by_to, date_requested, date_responded`

func scanBarter(row rowScanner) (*models.Barter, error) {
	var b models.Barter
	var status string

	err := row.Scan(
		&b.ID, &status, &b.SkillFromID, &b.SkillToID, &b.UserFromID, &b.UserToID, &b.AdminID,
		&b.CompletedByFrom, &b.CompletedByTo, &b.DateRequested, &b.DateResponded,
	)
	if err != nil {
		return nil, err
	}

	parsed, ok := models.ParseBarterStatus(status)
	if !ok {
		return nil, fmt.Errorf("неизвестный статус обмена %q", status)
	}
	b.Status = parsed
	return &b, nil
}

func collectBarters(rows pgx.Rows) ([]models.Barter, error) {
	defer rows.Close()

	var barters []models.Barter
	for rows.Next() {
		b, err := scanBarter(rows)
		if err != nil {
			return nil, err
		}
		barters = append(barters, *b)
	}
	return barters, rows.Err()
}

// CreateBarter сохраняет новое предложение обмена
func (s *Store) CreateBarter(ctx context.Context, b *models.Barter) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO barters (id, status, skill_from_id, skill_to_id, user_from_id, user_to_id,
		                     completed_by_from, completed_by_to, date_requested)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, b.ID, string(b.Status), b.SkillFromID, b.SkillToID, b.UserFromID, b.UserToID,
		b.CompletedByFrom, b.CompletedByTo, b.DateRequested)

	return mapError(err, nil, "создание обмена")
}

// GetBarter получает обмен по ID
func (s *Store) GetBarter(ctx context.Context, barterID uuid.UUID) (*models.Barter, error) {
	b, err := scanBarter(s.pool.QueryRow(ctx, `
		SELECT `+barterColumns+`
		FROM barters WHERE id = $1
	`, barterID))
	if err != nil {
		return nil, mapError(err, apperrors.ErrBarterNotFound, "получение обмена")
	}
	return b, nil
}

// UpdateBarter блокирует строку обмена, применяет mutate и сохраняет результат в одной транзакции.
// Если mutate возвращает ошибку, транзакция откатывается и строка не меняется
func (s *Store) UpdateBarter(ctx context.Context, barterID uuid.UUID, mutate func(*models.Barter) error) (*models.Barter, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, mapError(err, nil, "начало транзакции")
	}
	defer tx.Rollback(ctx)

	// FOR UPDATE сериализует одновременные подтверждения обеих сторон
	b, err := scanBarter(tx.QueryRow(ctx, `
		SELECT `+barterColumns+`
		FROM barters WHERE id = $1
		FOR UPDATE
	`, barterID))
	if err != nil {
		return nil, mapError(err, apperrors.ErrBarterNotFound, "блокировка обмена")
	}

	if err := mutate(b); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE barters
		SET status = $1, admin_id = $2, completed_by_from = $3, completed_by_to = $4, date_responded = $5
		WHERE id = $6
	`, string(b.Status), b.AdminID, b.CompletedByFrom, b.CompletedByTo, b.DateResponded, b.ID)
	if err != nil {
		return nil, mapError(err, nil, "обновление обмена")
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, mapError(err, nil, "фиксация транзакции")
	}
	return b, nil
}

// ListBarters возвращает обмены пользователя. Получатель видит обмен только после одобрения администратором
func (s *Store) ListBarters(ctx context.Context, filter models.BarterFilter) ([]models.Barter, error) {
	var where string
	switch filter.Type {
	case "incoming":
		where = `user_to_id = $1 AND status <> 'Pending'`
	case "outgoing":
		where = `user_from_id = $1`
	default:
		where = `(user_from_id = $1 OR (user_to_id = $1 AND status <> 'Pending'))`
	}

	args := []any{filter.UserID}
	if filter.Status != nil {
		where += ` AND status = $2`
		args = append(args, string(*filter.Status))
	}

	var query strings.Builder
	query.WriteString(`SELECT ` + barterColumns + ` FROM barters WHERE `)
	query.WriteString(where)
	query.WriteString(` ORDER BY date_requested DESC`)

	rows, err := s.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, mapError(err, nil, "получение обменов")
	}

	barters, err := collectBarters(rows)
	return barters, mapError(err, nil, "чтение обменов")
}

// ListBartersByStatus возвращает все обмены в заданном статусе (для администраторов)
func (s *Store) ListBartersByStatus(ctx context.Context, status models.BarterStatus) ([]models.Barter, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+barterColumns+`
		FROM barters
		WHERE status = $1
		ORDER BY date_requested ASC
	`, string(status))
	if err != nil {
		return nil, mapError(err, nil, "получение обменов по статусу")
	}

	barters, err := collectBarters(rows)
	return barters, mapError(err, nil, "чтение обменов")
}
