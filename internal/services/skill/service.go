package skill

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/logger"
	"github.com/rajivgeraev/skillzone-api/internal/models"
)

// Repository - хранилище навыков
type Repository interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	CreateSkill(ctx context.Context, skill *models.Skill) error
	SearchSkills(ctx context.Context, query string) ([]models.Skill, error)
	ListSkillsByUser(ctx context.Context, userID uuid.UUID) ([]models.Skill, error)
}

// Service ведет каталог навыков
type Service struct {
	repo Repository
}

// NewService создает сервис навыков
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Catalog - результат поиска навыков, разделенный на свои и чужие
type Catalog struct {
	MySkills []models.Skill `json:"my_skills"`
	Skills   []models.Skill `json:"skills"`
}

// AddSkill добавляет навык пользователю
func (s *Service) AddSkill(ctx context.Context, ownerID uuid.UUID, name, description string) (*models.Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ErrSkillNameRequired
	}
	if utf8.RuneCountInString(name) > models.SkillNameMaxLength {
		return nil, apperrors.ErrSkillNameTooLong
	}

	if _, err := s.repo.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}

	skill := &models.Skill{
		ID:          uuid.New(),
		UserID:      &ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if err := s.repo.CreateSkill(ctx, skill); err != nil {
		return nil, err
	}

	logger.With(logrus.Fields{"skill_id": skill.ID, "user_id": ownerID}).Info("Добавлен навык")
	return skill, nil
}

// ListSkills ищет навыки. Если viewer задан, его навыки возвращаются отдельно
func (s *Service) ListSkills(ctx context.Context, viewer *uuid.UUID, query string) (*Catalog, error) {
	skills, err := s.repo.SearchSkills(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{MySkills: []models.Skill{}, Skills: []models.Skill{}}
	owners := make(map[uuid.UUID]*models.User)

	for _, skill := range skills {
		if skill.UserID != nil {
			skill.Owner = s.owner(ctx, owners, *skill.UserID)
		}
		if viewer != nil && skill.OwnedBy(*viewer) {
			catalog.MySkills = append(catalog.MySkills, skill)
		} else {
			catalog.Skills = append(catalog.Skills, skill)
		}
	}
	return catalog, nil
}

func (s *Service) owner(ctx context.Context, cache map[uuid.UUID]*models.User, userID uuid.UUID) *models.User {
	if user, ok := cache[userID]; ok {
		return user
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		logger.WithError(err).WithField("user_id", userID).Debug("Не удалось загрузить владельца навыка")
	}
	cache[userID] = user
	return user
}

// ListUserSkills возвращает навыки пользователя
func (s *Service) ListUserSkills(ctx context.Context, userID uuid.UUID) ([]models.Skill, error) {
	skills, err := s.repo.ListSkillsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if skills == nil {
		skills = []models.Skill{}
	}
	return skills, nil
}
