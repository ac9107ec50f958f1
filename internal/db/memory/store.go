// Package memory реализует хранилище приложения в памяти процесса.
// Семантика совпадает с PostgreSQL-хранилищем: изменения обмена сериализуются мьютексом
// и применяются к копии, которая сохраняется только при успехе.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/models"
)

type feedbackKey struct {
	barterID uuid.UUID
	userID   uuid.UUID
}

// Store - хранилище в памяти
type Store struct {
	mu       sync.Mutex
	users    map[uuid.UUID]models.User
	telegram map[int64]uuid.UUID
	skills   map[uuid.UUID]models.Skill
	barters  map[uuid.UUID]models.Barter
	feedback map[feedbackKey]models.Feedback
	messages []models.Message
	now      func() time.Time
}

// New создает пустое хранилище
func New() *Store {
	return &Store{
		users:    make(map[uuid.UUID]models.User),
		telegram: make(map[int64]uuid.UUID),
		skills:   make(map[uuid.UUID]models.Skill),
		barters:  make(map[uuid.UUID]models.Barter),
		feedback: make(map[feedbackKey]models.Feedback),
		now:      time.Now,
	}
}

// PutUser добавляет или заменяет пользователя
func (s *Store) PutUser(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}
	s.users[user.ID] = user
}

// DeleteUser удаляет пользователя вместе с его навыками, обменами, отзывами и сообщениями,
// а у обменов, где он был администратором, очищает ссылку.
// Повторяет ON DELETE CASCADE / SET NULL схемы, чтобы тесты могли проверить каскады без Postgres
func (s *Store) DeleteUser(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, userID)
	for tgID, id := range s.telegram {
		if id == userID {
			delete(s.telegram, tgID)
		}
	}
	for id, skill := range s.skills {
		if skill.OwnedBy(userID) {
			s.deleteSkillLocked(id)
		}
	}
	for id, b := range s.barters {
		switch {
		case b.IsParticipant(userID):
			s.deleteBarterLocked(id)
		case b.AdminID != nil && *b.AdminID == userID:
			b.AdminID = nil
			s.barters[id] = b
		}
	}
	for key := range s.feedback {
		if key.userID == userID {
			delete(s.feedback, key)
		}
	}
	kept := s.messages[:0]
	for _, m := range s.messages {
		if m.SenderID != userID && m.RecipientID != userID {
			kept = append(kept, m)
		}
	}
	s.messages = kept
}

// DeleteSkill удаляет навык и все обмены, которые на него ссылаются.
// Как и DeleteUser, моделирует каскад внешних ключей для тестов
func (s *Store) DeleteSkill(skillID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteSkillLocked(skillID)
}

func (s *Store) deleteSkillLocked(skillID uuid.UUID) {
	delete(s.skills, skillID)
	for id, b := range s.barters {
		if b.SkillFromID == skillID || b.SkillToID == skillID {
			s.deleteBarterLocked(id)
		}
	}
}

func (s *Store) deleteBarterLocked(barterID uuid.UUID) {
	delete(s.barters, barterID)
	for key := range s.feedback {
		if key.barterID == barterID {
			delete(s.feedback, key)
		}
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ---------------- Users ----------------

// GetUser получает пользователя по ID
func (s *Store) GetUser(_ context.Context, userID uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &user, nil
}

// ListUsers ищет пользователей по имени, логину или названию навыка
func (s *Store) ListUsers(_ context.Context, query string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []models.User
	for _, u := range s.users {
		if query == "" || containsFold(u.Username, query) || containsFold(u.FullName, query) || s.hasSkillLocked(u.ID, query) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Username != users[j].Username {
			return users[i].Username < users[j].Username
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (s *Store) hasSkillLocked(userID uuid.UUID, query string) bool {
	for _, skill := range s.skills {
		if skill.OwnedBy(userID) && containsFold(skill.Name, query) {
			return true
		}
	}
	return false
}

// UpsertTelegramUser создает пользователя при первом входе через Telegram
func (s *Store) UpsertTelegramUser(_ context.Context, p models.TelegramProfile, grantAdmin bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if userID, ok := s.telegram[p.TelegramID]; ok {
		user := s.users[userID]
		user.IsAdmin = user.IsAdmin || grantAdmin
		user.UpdatedAt = now
		s.users[userID] = user
		return &user, nil
	}

	user := models.User{
		ID:        uuid.New(),
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		FullName:  strings.TrimSpace(p.FirstName + " " + p.LastName),
		AvatarURL: p.PhotoURL,
		IsAdmin:   grantAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[user.ID] = user
	s.telegram[p.TelegramID] = user.ID
	return &user, nil
}

// ---------------- Skills ----------------

// CreateSkill сохраняет новый навык
func (s *Store) CreateSkill(_ context.Context, skill *models.Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if skill.UserID != nil {
		if _, ok := s.users[*skill.UserID]; !ok {
			return apperrors.ErrUserNotFound
		}
	}
	skill.CreatedAt = s.now()
	s.skills[skill.ID] = *skill
	return nil
}

// GetSkill получает навык по ID
func (s *Store) GetSkill(_ context.Context, skillID uuid.UUID) (*models.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	skill, ok := s.skills[skillID]
	if !ok {
		return nil, apperrors.ErrSkillNotFound
	}
	return &skill, nil
}

// SearchSkills ищет навыки по названию, описанию и имени владельца
func (s *Store) SearchSkills(_ context.Context, query string) ([]models.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var skills []models.Skill
	for _, skill := range s.skills {
		if query == "" || s.skillMatchesLocked(skill, query) {
			skills = append(skills, skill)
		}
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].CreatedAt.After(skills[j].CreatedAt) })
	return skills, nil
}

func (s *Store) skillMatchesLocked(skill models.Skill, query string) bool {
	if containsFold(skill.Name, query) || containsFold(skill.Description, query) {
		return true
	}
	if skill.UserID == nil {
		return false
	}
	owner, ok := s.users[*skill.UserID]
	return ok && (containsFold(owner.Username, query) || containsFold(owner.FullName, query))
}

// ListSkillsByUser возвращает навыки пользователя
func (s *Store) ListSkillsByUser(_ context.Context, userID uuid.UUID) ([]models.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var skills []models.Skill
	for _, skill := range s.skills {
		if skill.OwnedBy(userID) {
			skills = append(skills, skill)
		}
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].CreatedAt.Before(skills[j].CreatedAt) })
	return skills, nil
}
