package user

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/rajivgeraev/skillzone-api/internal/models"
)

// Repository - хранилище пользователей
type Repository interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, query string) ([]models.User, error)
	ListSkillsByUser(ctx context.Context, userID uuid.UUID) ([]models.Skill, error)
	RatingSummary(ctx context.Context, userID uuid.UUID) (models.RatingSummary, error)
}

// Service - справочник пользователей
type Service struct {
	repo Repository
}

// NewService создает справочник пользователей
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Detail - публичная карточка пользователя
type Detail struct {
	User   *models.User         `json:"user"`
	Skills []models.Skill       `json:"skills"`
	Rating models.RatingSummary `json:"rating"`
}

// ListUsers ищет пользователей по логину, имени или названию навыка
func (s *Service) ListUsers(ctx context.Context, query string) ([]models.User, error) {
	users, err := s.repo.ListUsers(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// GetUserDetail возвращает пользователя с навыками и рейтингом
func (s *Service) GetUserDetail(ctx context.Context, userID uuid.UUID) (*Detail, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	skills, err := s.repo.ListSkillsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if skills == nil {
		skills = []models.Skill{}
	}

	rating, err := s.repo.RatingSummary(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Detail{User: user, Skills: skills, Rating: rating}, nil
}
