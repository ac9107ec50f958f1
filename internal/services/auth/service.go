package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/config"
	"github.com/rajivgeraev/skillzone-api/internal/logger"
	"github.com/rajivgeraev/skillzone-api/internal/models"
	"github.com/rajivgeraev/skillzone-api/internal/utils"
)

// initDataTTL - срок годности подписи Telegram initData
const initDataTTL = 24 * time.Hour

// ErrInvalidInitData возвращается, если initData не прошли проверку подписи
var ErrInvalidInitData = errors.New("invalid telegram init data")

// Repository - хранилище пользователей, необходимое для входа
type Repository interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpsertTelegramUser(ctx context.Context, p models.TelegramProfile, grantAdmin bool) (*models.User, error)
}

// Session - результат успешного входа
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Service выполняет вход через Telegram Mini App
type Service struct {
	cfg        *config.Config
	repo       Repository
	jwtService *utils.JWTService
	verify     func(raw string) (initdata.InitData, error)
}

// NewService создает сервис авторизации
func NewService(cfg *config.Config, repo Repository, jwtService *utils.JWTService) *Service {
	s := &Service{cfg: cfg, repo: repo, jwtService: jwtService}
	s.verify = s.verifyInitData
	return s
}

// verifyInitData проверяет подпись и разбирает initData
func (s *Service) verifyInitData(raw string) (initdata.InitData, error) {
	// В разработке без токена бота подпись проверить нечем
	if s.cfg.TelegramBotToken != "" || !s.cfg.IsDevelopment() {
		if err := initdata.Validate(raw, s.cfg.TelegramBotToken, initDataTTL); err != nil {
			return initdata.InitData{}, errors.Join(ErrInvalidInitData, err)
		}
	}

	data, err := initdata.Parse(raw)
	if err != nil {
		return initdata.InitData{}, errors.Join(ErrInvalidInitData, err)
	}
	return data, nil
}

// Login проверяет initData, создает или обновляет пользователя и выдает JWT
func (s *Service) Login(ctx context.Context, raw string) (*Session, error) {
	if raw == "" {
		return nil, apperrors.Validation("init_data_required", "init_data is required")
	}

	data, err := s.verify(raw)
	if err != nil {
		return nil, err
	}
	if data.User.ID == 0 {
		return nil, ErrInvalidInitData
	}

	rawUser, err := json.Marshal(data.User)
	if err != nil {
		return nil, err
	}

	profile := models.TelegramProfile{
		TelegramID:   data.User.ID,
		Username:     data.User.Username,
		FirstName:    data.User.FirstName,
		LastName:     data.User.LastName,
		PhotoURL:     data.User.PhotoURL,
		IsPremium:    data.User.IsPremium,
		LanguageCode: data.User.LanguageCode,
		RawData:      rawUser,
	}

	user, err := s.repo.UpsertTelegramUser(ctx, profile, s.cfg.IsAdminTelegramID(profile.TelegramID))
	if err != nil {
		return nil, err
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}

	logger.With(logrus.Fields{
		"user_id":     user.ID,
		"telegram_id": profile.TelegramID,
	}).Info("Пользователь вошел через Telegram")

	return &Session{Token: token, User: user}, nil
}

// Me возвращает профиль текущего пользователя
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.repo.GetUser(ctx, userID)
}
