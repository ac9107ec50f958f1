package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/rajivgeraev/skillzone-api/internal/apperrors"
	"github.com/rajivgeraev/skillzone-api/internal/models"
)

var errConstraint = apperrors.New(apperrors.KindValidation, "constraint_violation", "нарушено ограничение целостности")

func cloneBarter(b models.Barter) models.Barter {
	if b.AdminID != nil {
		id := *b.AdminID
		b.AdminID = &id
	}
	if b.DateResponded != nil {
		t := *b.DateResponded
		b.DateResponded = &t
	}
	b.SkillFrom, b.SkillTo, b.UserFrom, b.UserTo, b.MyFeedback = nil, nil, nil, nil, nil
	return b
}

// CreateBarter сохраняет новое предложение обмена
func (s *Store) CreateBarter(_ context.Context, b *models.Barter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.barters[b.ID]; ok {
		return errConstraint
	}
	_, fromOK := s.skills[b.SkillFromID]
	_, toOK := s.skills[b.SkillToID]
	_, userFromOK := s.users[b.UserFromID]
	_, userToOK := s.users[b.UserToID]
	if !fromOK || !toOK || !userFromOK || !userToOK || b.UserFromID == b.UserToID {
		return errConstraint
	}

	s.barters[b.ID] = cloneBarter(*b)
	return nil
}

// GetBarter получает обмен по ID
func (s *Store) GetBarter(_ context.Context, barterID uuid.UUID) (*models.Barter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.barters[barterID]
	if !ok {
		return nil, apperrors.ErrBarterNotFound
	}
	b = cloneBarter(b)
	return &b, nil
}

// UpdateBarter применяет mutate к копии обмена и сохраняет ее, только если mutate завершился без ошибки
func (s *Store) UpdateBarter(_ context.Context, barterID uuid.UUID, mutate func(*models.Barter) error) (*models.Barter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.barters[barterID]
	if !ok {
		return nil, apperrors.ErrBarterNotFound
	}

	b := cloneBarter(stored)
	if err := mutate(&b); err != nil {
		return nil, err
	}

	s.barters[barterID] = cloneBarter(b)
	return &b, nil
}

func visibleTo(b models.Barter, filter models.BarterFilter) bool {
	incoming := b.UserToID == filter.UserID && b.Status != models.BarterPending
	outgoing := b.UserFromID == filter.UserID

	switch filter.Type {
	case "incoming":
		return incoming
	case "outgoing":
		return outgoing
	default:
		return incoming || outgoing
	}
}

func sortByRequested(barters []models.Barter, desc bool) {
	sort.SliceStable(barters, func(i, j int) bool {
		if desc {
			return barters[i].DateRequested.After(barters[j].DateRequested)
		}
		return barters[i].DateRequested.Before(barters[j].DateRequested)
	})
}

// ListBarters возвращает обмены пользователя. Получатель видит обмен только после одобрения администратором
func (s *Store) ListBarters(_ context.Context, filter models.BarterFilter) ([]models.Barter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var barters []models.Barter
	for _, b := range s.barters {
		if !visibleTo(b, filter) {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		barters = append(barters, cloneBarter(b))
	}
	sortByRequested(barters, true)
	return barters, nil
}

// ListBartersByStatus возвращает все обмены в заданном статусе
func (s *Store) ListBartersByStatus(_ context.Context, status models.BarterStatus) ([]models.Barter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var barters []models.Barter
	for _, b := range s.barters {
		if b.Status == status {
			barters = append(barters, cloneBarter(b))
		}
	}
	sortByRequested(barters, false)
	return barters, nil
}

// ---------------- Feedback ----------------

// UpsertFeedback проверяет обмен через check и создает или обновляет отзыв пользователя.
// Второе значение true, если отзыв был создан
func (s *Store) UpsertFeedback(_ context.Context, fb *models.Feedback, check func(*models.Barter) error) (*models.Feedback, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.barters[fb.BarterID]
	if !ok {
		return nil, false, apperrors.ErrBarterNotFound
	}
	b := cloneBarter(stored)
	if err := check(&b); err != nil {
		return nil, false, err
	}
	if _, ok := s.users[fb.UserID]; !ok {
		return nil, false, errConstraint
	}

	key := feedbackKey{barterID: fb.BarterID, userID: fb.UserID}
	existing, found := s.feedback[key]
	if found {
		existing.Rating = fb.Rating
		existing.Comment = fb.Comment
		existing.UpdatedAt = fb.UpdatedAt
		s.feedback[key] = existing
		*fb = existing
		return fb, false, nil
	}

	fb.CreatedAt = fb.UpdatedAt
	s.feedback[key] = *fb
	return fb, true, nil
}

// GetFeedback получает отзыв пользователя по обмену
func (s *Store) GetFeedback(_ context.Context, barterID, userID uuid.UUID) (*models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fb, ok := s.feedback[feedbackKey{barterID: barterID, userID: userID}]
	if !ok {
		return nil, apperrors.ErrFeedbackNotFound
	}
	return &fb, nil
}

// ListFeedbackByBarter возвращает все отзывы по обмену
func (s *Store) ListFeedbackByBarter(_ context.Context, barterID uuid.UUID) ([]models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []models.Feedback
	for key, fb := range s.feedback {
		if key.barterID == barterID {
			items = append(items, fb)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

// RatingSummary считает средний рейтинг по отзывам на обмены, где пользователь - получатель
func (s *Store) RatingSummary(_ context.Context, userID uuid.UUID) (models.RatingSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := models.RatingSummary{UserID: userID}
	var total float64
	for key, fb := range s.feedback {
		b, ok := s.barters[key.barterID]
		if !ok || b.UserToID != userID {
			continue
		}
		total += fb.Rating
		summary.Count++
	}

	if summary.Count > 0 {
		avg := total / float64(summary.Count)
		summary.Average = &avg
	}
	return summary, nil
}
