package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/skillzone-api/internal/models"
)

const messageColumns = `id, sender_id, recipient_id, body, is_read, created_at`

func collectMessages(rows pgx.Rows) ([]models.Message, error) {
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Body, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CreateMessage сохраняет сообщение
func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (`+messageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.SenderID, m.RecipientID, m.Body, m.IsRead, m.CreatedAt)

	return mapError(err, nil, "сохранение сообщения")
}

// ListInbox возвращает входящие сообщения пользователя, новые первыми
func (s *Store) ListInbox(ctx context.Context, userID uuid.UUID) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, mapError(err, nil, "получение входящих")
	}

	messages, err := collectMessages(rows)
	return messages, mapError(err, nil, "чтение сообщений")
}

// ListConversation возвращает переписку двух пользователей в хронологическом порядке
func (s *Store) ListConversation(ctx context.Context, userID, otherID uuid.UUID) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at ASC
	`, userID, otherID)
	if err != nil {
		return nil, mapError(err, nil, "получение переписки")
	}

	messages, err := collectMessages(rows)
	return messages, mapError(err, nil, "чтение сообщений")
}

// MarkConversationRead помечает прочитанными сообщения от sender к recipient
func (s *Store) MarkConversationRead(ctx context.Context, senderID, recipientID uuid.UUID) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE messages
		SET is_read = TRUE
		WHERE sender_id = $1 AND recipient_id = $2 AND is_read = FALSE
	`, senderID, recipientID)
	if err != nil {
		return 0, mapError(err, nil, "отметка прочтения")
	}
	return tag.RowsAffected(), nil
}

// CountUnread возвращает число непрочитанных входящих сообщений
func (s *Store) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND is_read = FALSE
	`, userID).Scan(&count)
	if err != nil {
		return 0, mapError(err, nil, "подсчет непрочитанных")
	}
	return int(count), nil
}
