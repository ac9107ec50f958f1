package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/models"
)

func scanSkill(row rowScanner) (*models.Skill, error) {
	var skill models.Skill
	var description pgtype.Text

	if err := row.Scan(&skill.ID, &skill.UserID, &skill.Name, &description, &skill.CreatedAt); err != nil {
		return nil, err
	}
	skill.Description = description.String
	return &skill, nil
}

func collectSkills(rows pgx.Rows) ([]models.Skill, error) {
	defer rows.Close()

	var skills []models.Skill
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		skills = append(skills, *skill)
	}
	return skills, rows.Err()
}

// CreateSkill сохраняет новый навык
func (s *Store) CreateSkill(ctx context.Context, skill *models.Skill) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO skills (id, user_id, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, skill.ID, skill.UserID, skill.Name, skill.Description).Scan(&skill.CreatedAt)

	return mapError(err, nil, "создание навыка")
}

// GetSkill получает навык по ID
func (s *Store) GetSkill(ctx context.Context, skillID uuid.UUID) (*models.Skill, error) {
	skill, err := scanSkill(s.pool.QueryRow(ctx, `
		SELECT id, user_id, name, description, created_at
		FROM skills WHERE id = $1
	`, skillID))
	if err != nil {
		return nil, mapError(err, apperrors.ErrSkillNotFound, "получение навыка")
	}
	return skill, nil
}

// SearchSkills ищет навыки по названию, описанию и имени владельца
func (s *Store) SearchSkills(ctx context.Context, query string) ([]models.Skill, error) {
	var rows pgx.Rows
	var err error

	if query == "" {
		rows, err = s.pool.Query(ctx, `
			SELECT id, user_id, name, description, created_at
			FROM skills
			ORDER BY created_at DESC
		`)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT s.id, s.user_id, s.name, s.description, s.created_at
			FROM skills s
			LEFT JOIN users u ON u.id = s.user_id
			WHERE s.name ILIKE $1
			   OR s.description ILIKE $1
			   OR u.username ILIKE $1
			   OR u.full_name ILIKE $1
			ORDER BY s.created_at DESC
		`, likePattern(query))
	}
	if err != nil {
		return nil, mapError(err, nil, "поиск навыков")
	}

	skills, err := collectSkills(rows)
	return skills, mapError(err, nil, "чтение навыков")
}

// ListSkillsByUser возвращает навыки пользователя
func (s *Store) ListSkillsByUser(ctx context.Context, userID uuid.UUID) ([]models.Skill, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, name, description, created_at
		FROM skills
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, mapError(err, nil, "получение навыков пользователя")
	}

	skills, err := collectSkills(rows)
	return skills, mapError(err, nil, "чтение навыков")
}
