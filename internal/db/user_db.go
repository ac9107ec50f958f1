package db

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/models"
)

const userColumns = `id, username, first_name, last_name, full_name, avatar_url, is_admin, created_at, updated_at`

// scanUser читает пользователя, заменяя NULL пустыми строками
func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var username, firstName, lastName, fullName, avatarURL pgtype.Text

	err := row.Scan(
		&user.ID, &username, &firstName, &lastName, &fullName, &avatarURL,
		&user.IsAdmin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Username = username.String
	user.FirstName = firstName.String
	user.LastName = lastName.String
	user.FullName = fullName.String
	user.AvatarURL = avatarURL.String

	return &user, nil
}

// GetUser получает пользователя по ID
func (s *Store) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE id = $1
	`, userID))
	if err != nil {
		return nil, mapError(err, apperrors.ErrUserNotFound, "получение пользователя")
	}
	return user, nil
}

// ListUsers ищет пользователей по имени, логину или названию навыка
func (s *Store) ListUsers(ctx context.Context, query string) ([]models.User, error) {
	var rows pgx.Rows
	var err error

	if query == "" {
		rows, err = s.pool.Query(ctx, `
			SELECT `+userColumns+`
			FROM users
			ORDER BY username ASC NULLS LAST, created_at ASC
		`)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT `+userColumns+`
			FROM users u
			WHERE u.username ILIKE $1
			   OR u.full_name ILIKE $1
			   OR EXISTS (SELECT 1 FROM skills s WHERE s.user_id = u.id AND s.name ILIKE $1)
			ORDER BY u.username ASC NULLS LAST, u.created_at ASC
		`, likePattern(query))
	}
	if err != nil {
		return nil, mapError(err, nil, "поиск пользователей")
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err, nil, "чтение пользователя")
		}
		users = append(users, *user)
	}
	return users, mapError(rows.Err(), nil, "поиск пользователей")
}

// UpsertTelegramUser создает нового пользователя через Telegram или обновляет существующего
func (s *Store) UpsertTelegramUser(ctx context.Context, p models.TelegramProfile, grantAdmin bool) (*models.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, mapError(err, nil, "начало транзакции")
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT user_id FROM telegram_users WHERE telegram_id = $1
	`, p.TelegramID).Scan(&userID)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		userID = uuid.New()
		fullName := strings.TrimSpace(p.FirstName + " " + p.LastName)

		_, err = tx.Exec(ctx, `
			INSERT INTO users (id, username, first_name, last_name, full_name, avatar_url, is_admin)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, userID, p.Username, p.FirstName, p.LastName, fullName, p.PhotoURL, grantAdmin)
		if err != nil {
			return nil, mapError(err, nil, "создание пользователя")
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO telegram_users (id, user_id, telegram_id, username, first_name, last_name,
			                            photo_url, is_premium, language_code, raw_data)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, uuid.New(), userID, p.TelegramID, p.Username, p.FirstName, p.LastName,
			p.PhotoURL, p.IsPremium, p.LanguageCode, p.RawData)
		if err != nil {
			return nil, mapError(err, nil, "создание Telegram пользователя")
		}

	case err != nil:
		return nil, mapError(err, nil, "поиск Telegram пользователя")

	default:
		// Профиль в users не перезаписываем: пользователь мог изменить его сам
		_, err = tx.Exec(ctx, `
			UPDATE telegram_users
			SET username = $1, first_name = $2, last_name = $3, photo_url = $4,
			    is_premium = $5, language_code = $6, raw_data = $7, updated_at = NOW()
			WHERE telegram_id = $8
		`, p.Username, p.FirstName, p.LastName, p.PhotoURL, p.IsPremium, p.LanguageCode, p.RawData, p.TelegramID)
		if err != nil {
			return nil, mapError(err, nil, "обновление Telegram пользователя")
		}

		_, err = tx.Exec(ctx, `
			UPDATE users SET is_admin = is_admin OR $1, updated_at = NOW() WHERE id = $2
		`, grantAdmin, userID)
		if err != nil {
			return nil, mapError(err, nil, "обновление пользователя")
		}
	}

	user, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		return nil, mapError(err, apperrors.ErrUserNotFound, "получение пользователя")
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, mapError(err, nil, "фиксация транзакции")
	}
	return user, nil
}
